package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/usecase"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
	"github.com/secmon-lab/argos/pkg/utils/logging"
)

// rejectionMessage translates a use case rejection into the text shown to
// the actor. The second return is false for errors outside the sentinel
// taxonomy, which are surfaced as a generic failure and reported.
func rejectionMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, usecase.ErrCustomerRoleNotConfigured):
		return "Requests are not set up yet: an administrator must configure the customer role with `/config set`.", true
	case errors.Is(err, usecase.ErrSecurityRoleNotConfigured):
		return "Requests are not set up yet: an administrator must configure the security role with `/config set`.", true
	case errors.Is(err, usecase.ErrAlertChannelNotConfigured):
		return "Requests are not set up yet: an administrator must configure the alert channel with `/config set`.", true

	case errors.Is(err, usecase.ErrCustomerRoleRequired):
		return "You need the customer role to file a request.", true
	case errors.Is(err, usecase.ErrSecurityRoleRequired):
		return "Only security team members can do this.", true
	case errors.Is(err, usecase.ErrManagerRequired):
		return "You need administrator permission or the manager role to change the configuration.", true
	case errors.Is(err, usecase.ErrAdminRequired):
		return "You need administrator permission in this server to do this.", true
	case errors.Is(err, usecase.ErrBlacklistNotPermitted):
		return "You are not permitted to manage the blacklist.", true

	case errors.Is(err, usecase.ErrGuildNotRegistered):
		return "This server is not registered. A server administrator can register it with `/setup channel`.", true
	case errors.Is(err, usecase.ErrGuildBlacklisted):
		return "This server is not permitted to file requests.", true
	case errors.Is(err, usecase.ErrWrongChannel):
		return "Requests from this server must be filed in its designated channel.", true
	case errors.Is(err, usecase.ErrRoleNotAllowed):
		return "You do not hold any of the roles permitted to file requests from this server.", true

	case errors.Is(err, usecase.ErrRequestNotFound):
		return "That request no longer exists.", true
	case errors.Is(err, model.ErrMalformedControlID):
		return "That control is not recognized.", true
	case errors.Is(err, usecase.ErrRequestAlreadyConcluded):
		return "This request has already been concluded.", true
	}

	return "Something went wrong. Please try again.", false
}

// faultNotice describes a degraded outcome to the actor. The authoritative
// step succeeded; only secondary deliveries failed.
func faultNotice(out *model.Outcome) string {
	switch {
	case out.HasFault(model.FaultTargetLedger):
		return "⚠️ It was delivered, but could not be recorded for tracking."
	case out.HasFault(model.FaultTargetAlertView):
		return "⚠️ The security team's alert view could not be posted."
	case out.HasFault(model.FaultTargetOriginView):
		return "⚠️ The confirmation in the origin server could not be updated."
	}
	return ""
}

// replyRejection sends the mapped rejection text. Sentinel rejections are
// expected flow and only logged; anything else is captured as an error.
func (h *Handler) replyRejection(ctx context.Context, s Session, i *discordgo.InteractionCreate, err error) {
	msg, known := rejectionMessage(err)
	if known {
		logging.From(ctx).Warn("interaction rejected", "error", err.Error())
	} else {
		errutil.Handle(ctx, err, "interaction failed")
	}
	h.replyEphemeral(ctx, s, i, msg)
}

// editRejection is replyRejection for deferred interactions
func (h *Handler) editRejection(ctx context.Context, s Session, i *discordgo.InteractionCreate, err error) {
	msg, known := rejectionMessage(err)
	if known {
		logging.From(ctx).Warn("interaction rejected", "error", err.Error())
	} else {
		errutil.Handle(ctx, err, "interaction failed")
	}
	h.editReply(ctx, s, i, msg)
}

// replyEphemeral answers the interaction with a message only the actor sees
func (h *Handler) replyEphemeral(ctx context.Context, s Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to respond to interaction"), "interaction reply failed")
	}
}

// deferEphemeral acknowledges the interaction before slower work. The final
// text is delivered with editReply.
func (h *Handler) deferEphemeral(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return goerr.Wrap(err, "failed to defer interaction response")
	}
	return nil
}

// editReply replaces the deferred acknowledgement with the final text
func (h *Handler) editReply(ctx context.Context, s Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}, discordgo.WithContext(ctx))
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to edit interaction response"), "interaction reply failed")
	}
}

// showModal answers the interaction by opening a form
func (h *Handler) showModal(ctx context.Context, s Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	}, discordgo.WithContext(ctx))
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to open modal", goerr.V("custom_id", data.CustomID)), "interaction reply failed")
	}
}
