package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"pitwall-go/models"
)

// CreateBrandedEmbed creates a basic embed with bot branding
func CreateBrandedEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Pitwall",
		},
	}
}

// Exchange is one quoted statement in a conversation
type Exchange struct {
	Quote   string
	Speaker string
}

// ConversationEmbed renders a multi-quote conversation; ok is false when there is nothing to show
func ConversationEmbed(exchanges []Exchange, year string) (*discordgo.MessageEmbed, bool) {
	if len(exchanges) == 0 {
		return nil, false
	}

	lines := lo.Map(exchanges, func(e Exchange, _ int) string {
		return fmt.Sprintf("\"%s\" - %s", e.Quote, e.Speaker)
	})

	footer := fmt.Sprintf("%d exchange(s)", len(exchanges))
	if year != "" {
		footer += " • " + year
	}

	return &discordgo.MessageEmbed{
		Title:       "Quoted Conversation",
		Description: strings.Join(lines, "\n"),
		Color:       QuoteColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}, true
}

// QuoteEmbed renders a single quote
func QuoteEmbed(quote, author, source, year string) *discordgo.MessageEmbed {
	return OptimizeEmbedPayload(&discordgo.MessageEmbed{
		Title:       quote,
		Description: fmt.Sprintf("%s (%s) \n\nQuoted by %s", source, year, author),
		Color:       QuoteColor,
	})
}

// ReportEmbed renders the opening post of a report thread
func ReportEmbed(targetName string, reporter *discordgo.User, reason, explanation, session string) *discordgo.MessageEmbed {
	return OptimizeEmbedPayload(&discordgo.MessageEmbed{
		Title:       "Report: " + targetName,
		Author:      embedAuthor(reporter),
		Description: fmt.Sprintf("Reason: %s\n\nExplanation: %s\n\nSession: %s", reason, explanation, session),
		Color:       ReportColor,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

// ProtestEmbed renders a protest posted against a report
func ProtestEmbed(targetName string, protester *discordgo.User, reason, explanation string) *discordgo.MessageEmbed {
	return OptimizeEmbedPayload(&discordgo.MessageEmbed{
		Title:       "Protest: " + targetName,
		Author:      embedAuthor(protester),
		Description: fmt.Sprintf("Reason: %s\n\nExplanation: %s", reason, explanation),
		Color:       ProtestColor,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

func embedAuthor(u *discordgo.User) *discordgo.MessageEmbedAuthor {
	if u == nil {
		return nil
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    u.Username,
		IconURL: u.AvatarURL(""),
	}
}

// LevelEmbed renders guild and overall progress for a member
func LevelEmbed(displayName string, target *discordgo.User, stats *models.UserGuildStats, requester string) *discordgo.MessageEmbed {
	guild := GetLevelProgress(stats.GuildXP)
	overall := GetLevelProgress(stats.TotalXP)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s's Level Stats", displayName),
		Color: LevelColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🏰 Guild Stats",
				Value: fmt.Sprintf("**Level:** %d\n**XP:** %s\n**Messages:** %s\n**Progress:** %s",
					stats.GuildLevel, FormatNumber(stats.GuildXP), FormatNumber(stats.GuildMessages), formatProgress(guild)),
				Inline: true,
			},
			{
				Name: "🌟 Overall Stats",
				Value: fmt.Sprintf("**Level:** %d\n**Total XP:** %s\n**Chips:** %s\n**Progress:** %s",
					stats.OverallLevel, FormatNumber(stats.TotalXP), FormatChips(stats.Chips), formatProgress(overall)),
				Inline: true,
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Requested by " + requester},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if target != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")}
	}
	return embed
}

func formatProgress(p LevelProgress) string {
	return fmt.Sprintf("%d/%d XP (%.1f%%)\n%s", p.Current, p.Needed, p.Percent, createProgressBar(p.Current, 0, p.Needed, 10))
}

// BalanceEmbed renders a user's chip balance
func BalanceEmbed(username string, chips int64) *discordgo.MessageEmbed {
	return CreateBrandedEmbed(
		fmt.Sprintf("💰 %s's Balance", username),
		fmt.Sprintf("You currently have **%s** chips", FormatChips(chips)),
		BotColor,
	)
}

// Helper functions
func FormatChips(amount int64) string {
	return FormatNumber(amount)
}

// FormatSignedChips prefixes positive amounts with "+"
func FormatSignedChips(amount int64) string {
	if amount > 0 {
		return "+" + FormatChips(amount)
	}
	return FormatChips(amount)
}

func FormatNumber(num int64) string {
	str := strconv.FormatInt(num, 10)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	// Add commas for thousands
	var result strings.Builder
	result.WriteString(sign)
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(r)
	}

	return result.String()
}

func createProgressBar(current, min, max int64, length int) string {
	if max <= min {
		return strings.Repeat("█", length)
	}

	progress := float64(current-min) / float64(max-min)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}
