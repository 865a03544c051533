package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	discordsvc "github.com/secmon-lab/argos/pkg/service/discord"
	"github.com/secmon-lab/argos/pkg/usecase"
	"github.com/secmon-lab/argos/pkg/utils/async"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
	"github.com/secmon-lab/argos/pkg/utils/logging"
)

// Session is the subset of the gateway session the handler answers
// interactions through.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler routes Discord interactions (slash commands, buttons, modals) to
// the use case layer. It resolves a complete actor once per event; the core
// never touches platform payloads.
type Handler struct {
	uc      *usecase.UseCases
	discord discordsvc.Service
}

// NewHandler creates a new interaction handler
func NewHandler(uc *usecase.UseCases, discordSvc discordsvc.Service) *Handler {
	return &Handler{
		uc:      uc,
		discord: discordSvc,
	}
}

// HandleInteraction is the gateway event handler, registered with
// Session.AddHandler. Routing runs off the gateway goroutine; a slow or
// panicking command handler must not stall event dispatch.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := logging.With(context.Background(), logging.Default())
	async.Dispatch(ctx, func(ctx context.Context) error {
		h.dispatch(ctx, s, i)
		return nil
	})
}

func (h *Handler) dispatch(ctx context.Context, s Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, s, i)
	case discordgo.InteractionModalSubmit:
		h.handleModal(ctx, s, i)
	}
}

func (h *Handler) handleCommand(ctx context.Context, s Session, i *discordgo.InteractionCreate) {
	actor, err := h.resolveActor(ctx, i)
	if err != nil {
		h.replyEphemeral(ctx, s, i, "This command only works in a server.")
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "request":
		h.commandRequest(ctx, s, i, actor)
	case "config":
		h.commandConfig(ctx, s, i, actor, data)
	case "setup":
		h.commandSetup(ctx, s, i, actor, data)
	case "blacklist":
		h.commandBlacklist(ctx, s, i, actor, data)
	default:
		logging.From(ctx).Warn("unknown command", "name", data.Name)
	}
}

func (h *Handler) handleComponent(ctx context.Context, s Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	ctl, err := model.ParseControlID(data.CustomID)
	if err != nil {
		logging.From(ctx).Warn("unrecognized component", "custom_id", data.CustomID)
		h.replyEphemeral(ctx, s, i, "That control is not recognized.")
		return
	}

	actor, err := h.resolveActor(ctx, i)
	if err != nil {
		h.replyEphemeral(ctx, s, i, "This control only works in a server.")
		return
	}

	switch ctl.Kind {
	case model.ControlKindRespond:
		h.componentRespond(ctx, s, i, actor, ctl)

	case model.ControlKindConclude:
		// Two-step conclusion: the button opens the reason form and the
		// ledger is untouched until the form is submitted
		reasonID := model.ControlID{
			Kind:            model.ControlKindReason,
			RequestID:       ctl.RequestID,
			ExternalGuildID: ctl.ExternalGuildID,
		}
		h.showModal(ctx, s, i, concludeReasonModal(reasonID.String()))

	default:
		h.replyEphemeral(ctx, s, i, "That control is not recognized.")
	}
}

func (h *Handler) handleModal(ctx context.Context, s Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	actor, err := h.resolveActor(ctx, i)
	if err != nil {
		h.replyEphemeral(ctx, s, i, "This form only works in a server.")
		return
	}

	switch data.CustomID {
	case modalFileInternal:
		h.modalFileInternal(ctx, s, i, actor, data)
		return
	case modalFileExternal:
		h.modalFileExternal(ctx, s, i, actor, data)
		return
	}

	ctl, err := model.ParseControlID(data.CustomID)
	if err != nil || ctl.Kind != model.ControlKindReason {
		logging.From(ctx).Warn("unrecognized modal", "custom_id", data.CustomID)
		h.replyEphemeral(ctx, s, i, "That form is not recognized.")
		return
	}

	h.modalConcludeReason(ctx, s, i, actor, ctl, data)
}

// resolveActor builds the complete actor descriptor from the interaction.
// Fails for interactions outside a guild (direct messages).
func (h *Handler) resolveActor(ctx context.Context, i *discordgo.InteractionCreate) (*model.Actor, error) {
	member := i.Member
	if i.GuildID == "" || member == nil || member.User == nil {
		return nil, goerr.New("interaction outside a guild")
	}

	actor := &model.Actor{
		ID:        types.UserID(member.User.ID),
		Name:      displayName(member),
		GuildID:   types.GuildID(i.GuildID),
		ChannelID: types.ChannelID(i.ChannelID),
		Admin:     member.Permissions&discordgo.PermissionAdministrator != 0,
	}
	for _, roleID := range member.Roles {
		actor.RoleIDs = append(actor.RoleIDs, types.RoleID(roleID))
	}

	if h.discord != nil {
		ownerID, err := h.discord.GuildOwnerID(ctx, actor.GuildID)
		if err != nil {
			errutil.Handle(ctx, err, "failed to resolve guild owner, treating actor as non-owner")
		} else {
			actor.Owner = ownerID == actor.ID
		}
	}

	return actor, nil
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
