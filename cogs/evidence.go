package cogs

import (
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

// isEvidenceURL reports whether evidence is an absolute http(s) link
func isEvidenceURL(evidence string) bool {
	u, err := url.Parse(strings.TrimSpace(evidence))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// evidenceButton renders evidence as a link button, or as a reveal button with id.
// Empty evidence has no button.
func evidenceButton(evidence string, id flow.CustomID) (discordgo.MessageComponent, bool) {
	evidence = strings.TrimSpace(evidence)
	switch {
	case evidence == "":
		return nil, false
	case isEvidenceURL(evidence):
		return utils.CreateLinkButton("View Evidence", evidence), true
	default:
		return utils.CreateButton(id.String(), "Show Evidence", discordgo.SecondaryButton, false, nil), true
	}
}
