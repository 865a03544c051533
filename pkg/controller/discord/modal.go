package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
)

// Static modal custom IDs. Hyphenated so they can never collide with the
// underscore-delimited per-request control identifiers.
const (
	modalFileInternal = "request-file-internal"
	modalFileExternal = "request-file-external"
)

// Text input custom IDs shared by the modals
const (
	fieldLocation = "location"
	fieldDetails  = "details"
	fieldContact  = "contact"
	fieldReason   = "reason"
)

func internalRequestModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: modalFileInternal,
		Title:    "File a security request",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    fieldLocation,
					Label:       "Location",
					Style:       discordgo.TextInputShort,
					Placeholder: "Where is assistance needed?",
					Required:    true,
					MaxLength:   200,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    fieldDetails,
					Label:       "Details",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "What is happening? (optional)",
					MaxLength:   1000,
				},
			}},
		},
	}
}

func externalRequestModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: modalFileExternal,
		Title:    "File a security request",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    fieldLocation,
					Label:       "Location",
					Style:       discordgo.TextInputShort,
					Placeholder: "Where is assistance needed?",
					Required:    true,
					MaxLength:   200,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    fieldDetails,
					Label:       "Details",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "What is happening?",
					Required:    true,
					MaxLength:   1000,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    fieldContact,
					Label:       "Contact",
					Style:       discordgo.TextInputShort,
					Placeholder: "Who should the security team reach out to?",
					Required:    true,
					MaxLength:   200,
				},
			}},
		},
	}
}

func concludeReasonModal(customID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: customID,
		Title:    "Conclude request",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    fieldReason,
					Label:       "Reason",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "How was this resolved?",
					Required:    true,
					MaxLength:   1000,
				},
			}},
		},
	}
}

// modalValue extracts a submitted text input value. The gateway delivers
// modal components as pointers.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			in, ok := comp.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if in.CustomID == customID {
				return strings.TrimSpace(in.Value)
			}
		}
	}
	return ""
}

func (h *Handler) modalFileInternal(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, data discordgo.ModalSubmitInteractionData) {
	if err := h.deferEphemeral(ctx, s, i); err != nil {
		errutil.Handle(ctx, err, "interaction reply failed")
		return
	}

	out, err := h.uc.Request.FileInternal(ctx, actor, modalValue(data, fieldLocation), modalValue(data, fieldDetails))
	if err != nil {
		h.editRejection(ctx, s, i, err)
		return
	}

	msg := "🆘 Your request has been filed and the security team has been alerted."
	if out.Degraded() {
		msg += "\n" + faultNotice(out)
	}
	h.editReply(ctx, s, i, msg)
}

func (h *Handler) modalFileExternal(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, data discordgo.ModalSubmitInteractionData) {
	if err := h.deferEphemeral(ctx, s, i); err != nil {
		errutil.Handle(ctx, err, "interaction reply failed")
		return
	}

	out, err := h.uc.Request.FileExternal(ctx, actor,
		modalValue(data, fieldLocation),
		modalValue(data, fieldDetails),
		modalValue(data, fieldContact))
	if err != nil {
		h.editRejection(ctx, s, i, err)
		return
	}

	msg := "🆘 Your request has been filed and the security team has been alerted."
	if out.Degraded() {
		msg += "\n" + faultNotice(out)
	}
	h.editReply(ctx, s, i, msg)
}

func (h *Handler) modalConcludeReason(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, ctl model.ControlID, data discordgo.ModalSubmitInteractionData) {
	if err := h.deferEphemeral(ctx, s, i); err != nil {
		errutil.Handle(ctx, err, "interaction reply failed")
		return
	}

	reason := modalValue(data, fieldReason)
	if reason == "" {
		h.editReply(ctx, s, i, "A conclusion reason is required.")
		return
	}

	out, err := h.uc.Request.Conclude(ctx, actor, ctl.RequestID, reason)
	if err != nil {
		h.editRejection(ctx, s, i, err)
		return
	}

	msg := "🟢 Request concluded."
	if out.Degraded() {
		msg += "\n" + faultNotice(out)
	}
	h.editReply(ctx, s, i, msg)
}

func (h *Handler) componentRespond(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, ctl model.ControlID) {
	if err := h.deferEphemeral(ctx, s, i); err != nil {
		errutil.Handle(ctx, err, "interaction reply failed")
		return
	}

	out, err := h.uc.Request.Respond(ctx, actor, ctl.RequestID)
	if err != nil {
		h.editRejection(ctx, s, i, err)
		return
	}

	if out.Already {
		h.editReply(ctx, s, i, "You are already responding to this request.")
		return
	}

	msg := "🔵 Marked you as responding."
	if out.Degraded() {
		msg += "\n" + faultNotice(out)
	}
	h.editReply(ctx, s, i, msg)
}
