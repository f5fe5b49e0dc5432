package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// CreateActionRow creates an action row with buttons
func CreateActionRow(components ...discordgo.MessageComponent) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: components,
	}
}

// CreateButton creates a button component
func CreateButton(customID, label string, style discordgo.ButtonStyle, disabled bool, emoji *discordgo.ComponentEmoji) discordgo.MessageComponent {
	button := discordgo.Button{
		CustomID: customID,
		Label:    label,
		Style:    style,
		Disabled: disabled,
	}

	if emoji != nil {
		button.Emoji = emoji
	}

	return button
}

// CreateLinkButton creates a button that opens url
func CreateLinkButton(label, url string) discordgo.MessageComponent {
	return discordgo.Button{
		Label: label,
		Style: discordgo.LinkButton,
		URL:   url,
	}
}

// CreateUserSelect creates a single-user select menu
func CreateUserSelect(customID, placeholder string) discordgo.MessageComponent {
	one := 1
	return discordgo.SelectMenu{
		MenuType:    discordgo.UserSelectMenu,
		CustomID:    customID,
		Placeholder: placeholder,
		MinValues:   &one,
		MaxValues:   1,
	}
}

// TextField describes one modal text input
type TextField struct {
	CustomID  string
	Label     string
	Style     discordgo.TextInputStyle
	Required  bool
	MaxLength int
}

// BuildModalTextInputs wraps every field in its own action row, in order
func BuildModalTextInputs(fields ...TextField) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(fields))
	for _, f := range fields {
		style := f.Style
		if style == 0 {
			style = discordgo.TextInputShort
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  f.CustomID,
					Label:     f.Label,
					Style:     style,
					Required:  f.Required,
					MaxLength: f.MaxLength,
				},
			},
		})
	}
	return rows
}

// ResponseFlags returns the message flags for a response.
// Every ephemeral reply in the bot goes through here.
func ResponseFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// SendInteractionResponse sends an interaction response with embed and components
func SendInteractionResponse(s Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Components: components,
		Flags:      ResponseFlags(ephemeral),
	}
	if embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{embed}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		BotLogf("DISCORD_API", "SendInteractionResponse failed: %v", err)
	}
	return err
}

// RespondContent replies to an interaction with text and optional components
func RespondContent(s Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent, ephemeral bool) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      ResponseFlags(ephemeral),
		},
	})
	if err != nil {
		BotLogf("DISCORD_API", "RespondContent failed: %v", err)
	}
	return err
}

// RespondEphemeral sends a private text reply
func RespondEphemeral(s Session, i *discordgo.InteractionCreate, content string) error {
	return RespondContent(s, i, content, nil, true)
}

// RespondModal opens a modal in response to a command or component interaction
func RespondModal(s Session, i *discordgo.InteractionCreate, customID, title string, fields ...TextField) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      truncate(title, 45),
			Components: BuildModalTextInputs(fields...),
		},
	})
	if err != nil {
		BotLogf("DISCORD_API", "RespondModal %s failed: %v", customID, err)
	}
	return err
}

// UpdateComponentInteraction updates the message a component is attached to
func UpdateComponentInteraction(s Session, i *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	data := &discordgo.InteractionResponseData{
		Content:    content,
		Components: components,
	}
	if embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{embed}
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

// EditOriginalContent replaces the text of the original response and clears its components
func EditOriginalContent(s Session, i *discordgo.InteractionCreate, content string) error {
	components := []discordgo.MessageComponent{}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	})
	if err != nil {
		BotLogf("DISCORD_API", "EditOriginalContent failed: %v", err)
	}
	return err
}

// EditOriginalInteraction replaces the content, embed and components of the original response
func EditOriginalInteraction(s Session, i *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	edit := &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}
	if embed != nil {
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
	}
	_, err := s.InteractionResponseEdit(i.Interaction, edit)
	return err
}

// UpdateInteractionResponseWithRetry edits the original response, retrying transient failures.
// When the webhook is still valid but every edit failed, the result is posted to the channel instead.
func UpdateInteractionResponseWithRetry(s Session, i *discordgo.InteractionCreate, content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(50*attempt*attempt) * time.Millisecond
			if backoff > 500*time.Millisecond {
				backoff = 500 * time.Millisecond
			}
			time.Sleep(backoff)
		}

		err := EditOriginalInteraction(s, i, content, embed, components)
		if err == nil {
			if attempt > 0 {
				BotLogf("DISCORD_API", "UpdateInteractionResponse succeeded on attempt %d", attempt+1)
			}
			return nil
		}

		lastErr = err
		if isNonRetryableError(err) {
			break
		}
		BotWarnf("DISCORD_API", "UpdateInteractionResponse attempt %d failed: %v", attempt+1, err)
	}

	if !isWebhookExpiredError(lastErr) && i.ChannelID != "" {
		msg := &discordgo.MessageSend{Content: content, Components: components}
		if embed != nil {
			msg.Embeds = []*discordgo.MessageEmbed{embed}
		}
		if _, err := s.ChannelMessageSendComplex(i.ChannelID, msg); err == nil {
			BotLogf("DISCORD_API", "Successfully used direct channel message as fallback")
			return nil
		}
	}

	return fmt.Errorf("interaction response failed with all fallbacks: %w", lastErr)
}

// isNonRetryableError checks if an error should not be retried
func isNonRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Webhook") ||
		strings.Contains(msg, "\"code\": 10015") ||
		strings.Contains(msg, "Unknown interaction") ||
		strings.Contains(msg, "400")
}

// isWebhookExpiredError checks if the error indicates an expired webhook
func isWebhookExpiredError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Unknown Webhook") ||
		strings.Contains(msg, "\"code\": 10015") ||
		strings.Contains(msg, "404") ||
		strings.Contains(msg, "Unknown interaction")
}

// TryEphemeralFollowup attempts to send a small ephemeral notice after the interaction was answered.
func TryEphemeralFollowup(s Session, i *discordgo.InteractionCreate, content string) error {
	params := &discordgo.WebhookParams{Content: content, Flags: ResponseFlags(true)}
	_, err := s.FollowupMessageCreate(i.Interaction, true, params)
	return err
}

// InteractionUser returns the acting user of an interaction in a guild or DM
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i == nil || i.Interaction == nil {
		return nil
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionUserID returns the acting user's id or "" when unknown
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if u := InteractionUser(i); u != nil {
		return u.ID
	}
	return ""
}

// InteractionCustomID returns the custom id of a component click or modal submission
func InteractionCustomID(i *discordgo.InteractionCreate) string {
	if i == nil || i.Interaction == nil {
		return ""
	}
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		return i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return i.ModalSubmitData().CustomID
	}
	return ""
}

// ModalValues flattens the text inputs of a modal submission by custom id
func ModalValues(i *discordgo.InteractionCreate) map[string]string {
	values := map[string]string{}
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionModalSubmit {
		return values
	}
	for _, c := range i.ModalSubmitData().Components {
		var children []discordgo.MessageComponent
		switch row := c.(type) {
		case *discordgo.ActionsRow:
			children = row.Components
		case discordgo.ActionsRow:
			children = row.Components
		}
		for _, child := range children {
			switch in := child.(type) {
			case *discordgo.TextInput:
				values[in.CustomID] = strings.TrimSpace(in.Value)
			case discordgo.TextInput:
				values[in.CustomID] = strings.TrimSpace(in.Value)
			}
		}
	}
	return values
}

// DisplayName returns the member nickname, global name or username, in that order
func DisplayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil && m != nil {
		u = m.User
	}
	if u == nil {
		return "unknown user"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// OptimizeEmbedPayload trims whitespace and drops empty parts of an embed
func OptimizeEmbedPayload(embed *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	if embed == nil {
		return embed
	}

	optimized := &discordgo.MessageEmbed{
		Title:       truncate(strings.TrimSpace(embed.Title), 256),
		Description: truncate(strings.TrimSpace(embed.Description), 4096),
		Color:       embed.Color,
		Timestamp:   embed.Timestamp,
		Author:      embed.Author,
	}

	if embed.Footer != nil && strings.TrimSpace(embed.Footer.Text) != "" {
		optimized.Footer = &discordgo.MessageEmbedFooter{
			Text:    strings.TrimSpace(embed.Footer.Text),
			IconURL: embed.Footer.IconURL,
		}
	}

	if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
		optimized.Thumbnail = embed.Thumbnail
	}

	for _, field := range embed.Fields {
		if field != nil && strings.TrimSpace(field.Name) != "" && strings.TrimSpace(field.Value) != "" {
			optimized.Fields = append(optimized.Fields, &discordgo.MessageEmbedField{
				Name:   strings.TrimSpace(field.Name),
				Value:  strings.TrimSpace(field.Value),
				Inline: field.Inline,
			})
		}
	}

	return optimized
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
