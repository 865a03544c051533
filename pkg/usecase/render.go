package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/service/discord"
)

// Embed accent colors per request status
const (
	colorPending    = 0xED4245
	colorResponding = 0x5865F2
	colorConcluded  = 0x57F287
)

func statusColor(s types.RequestStatus) int {
	switch s.Normalize() {
	case types.RequestStatusResponding:
		return colorResponding
	case types.RequestStatusConcluded:
		return colorConcluded
	default:
		return colorPending
	}
}

// Discord embed limits
const (
	maxFieldLen       = 1024
	maxDescriptionLen = 2048
)

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// buildAlertMessage constructs the alert view posted to the home guild's
// alert channel. The security role is mentioned in the plain-text content
// so the post triggers a notification; interactive controls are attached
// until the request concludes.
func buildAlertMessage(req *model.Request, securityRoleID types.RoleID, originGuildName string) *discord.Message {
	status := req.Status.Normalize()

	embed := &discordgo.MessageEmbed{
		Title: status.Emoji() + " Security Request",
		Color: statusColor(status),
		Footer: &discordgo.MessageEmbedFooter{
			Text: req.ID.String(),
		},
	}
	if req.Details != "" {
		embed.Description = truncate(req.Details, maxDescriptionLen)
	}
	if !req.CreatedAt.IsZero() {
		embed.Timestamp = req.CreatedAt.Format(time.RFC3339)
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "Location",
			Value:  truncate(req.Location, maxFieldLen),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Status",
			Value:  status.String(),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Requester",
			Value:  fmt.Sprintf("<@%s> (%s)", req.RequesterID, req.RequesterName),
			Inline: true,
		},
	)

	// Origin guild (cross-guild requests only)
	if req.External {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Origin",
			Value:  truncate(originGuildName, maxFieldLen),
			Inline: true,
		})
	}

	if req.Contact != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Contact",
			Value:  truncate(req.Contact, maxFieldLen),
			Inline: true,
		})
	}

	if len(req.ResponderIDs) > 0 {
		mentions := make([]string, len(req.ResponderIDs))
		for i, id := range req.ResponderIDs {
			mentions[i] = fmt.Sprintf("<@%s>", id)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Responders",
			Value: truncate(strings.Join(mentions, " "), maxFieldLen),
		})
	}

	if req.Concluded() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Conclusion",
			Value: truncate(fmt.Sprintf("%s (by %s)", req.ConclusionReason, req.ConcludedByName), maxFieldLen),
		})
	}

	msg := &discord.Message{
		Embeds: []*discordgo.MessageEmbed{embed},
		// An empty non-nil component list clears the buttons when the
		// concluded view is written over the live one
		Components: []discordgo.MessageComponent{},
	}

	if !req.Concluded() {
		msg.Content = fmt.Sprintf("<@&%s>", securityRoleID)

		respondID := model.ControlID{Kind: model.ControlKindRespond, RequestID: req.ID, ExternalGuildID: req.ExternalGuildID}
		concludeID := model.ControlID{Kind: model.ControlKindConclude, RequestID: req.ID, ExternalGuildID: req.ExternalGuildID}
		msg.Components = append(msg.Components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Respond",
					Style:    discordgo.PrimaryButton,
					CustomID: respondID.String(),
				},
				discordgo.Button{
					Label:    "Conclude",
					Style:    discordgo.DangerButton,
					CustomID: concludeID.String(),
				},
			},
		})
	}

	return msg
}

// buildOriginMessage constructs the confirmation view posted back to the
// customer guild's designated channel. It mirrors the request status but
// carries no controls; responders are shown as a count because home-guild
// member mentions do not resolve in the customer guild.
func buildOriginMessage(req *model.Request) *discord.Message {
	status := req.Status.Normalize()

	embed := &discordgo.MessageEmbed{
		Title: status.Emoji() + " Security Request",
		Color: statusColor(status),
		Footer: &discordgo.MessageEmbedFooter{
			Text: req.ID.String(),
		},
	}
	if !req.CreatedAt.IsZero() {
		embed.Timestamp = req.CreatedAt.Format(time.RFC3339)
	}

	switch status {
	case types.RequestStatusResponding:
		embed.Description = "The security team is responding to your request."
	case types.RequestStatusConcluded:
		embed.Description = "Your request has been concluded."
	default:
		embed.Description = "Your request has been received. The security team has been notified."
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "Location",
			Value:  truncate(req.Location, maxFieldLen),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Status",
			Value:  status.String(),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Requester",
			Value:  fmt.Sprintf("<@%s>", req.RequesterID),
			Inline: true,
		},
	)

	if req.Details != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Details",
			Value: truncate(req.Details, maxFieldLen),
		})
	}
	if req.Contact != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Contact",
			Value:  truncate(req.Contact, maxFieldLen),
			Inline: true,
		})
	}

	if n := len(req.ResponderIDs); n > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Responders",
			Value:  fmt.Sprintf("%d engaged", n),
			Inline: true,
		})
	}

	if req.Concluded() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Conclusion",
			Value: truncate(fmt.Sprintf("%s (by %s)", req.ConclusionReason, req.ConcludedByName), maxFieldLen),
		})
	}

	return &discord.Message{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{},
	}
}
