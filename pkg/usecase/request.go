package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"github.com/secmon-lab/argos/pkg/service/discord"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
)

// RequestUseCase drives the request lifecycle: filing, responding and
// concluding. The ledger entry is the authoritative step of every
// operation; rendered views are refreshed afterwards and their failures are
// reported as faults on the outcome rather than as errors.
type RequestUseCase struct {
	repo        interfaces.Repository
	config      *ConfigUseCase
	discord     discord.Service
	homeGuildID types.GuildID
}

func NewRequestUseCase(repo interfaces.Repository, config *ConfigUseCase, discordService discord.Service, homeGuildID types.GuildID) *RequestUseCase {
	return &RequestUseCase{
		repo:        repo,
		config:      config,
		discord:     discordService,
		homeGuildID: homeGuildID,
	}
}

// homeConfig loads the home guild's configuration and checks the alert
// destination. Absence of the config or of the security role maps to
// ErrSecurityRoleNotConfigured, a missing channel to
// ErrAlertChannelNotConfigured.
func (uc *RequestUseCase) homeConfig(ctx context.Context) (*model.GuildConfig, error) {
	cfg, err := uc.config.Get(ctx, uc.homeGuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrSecurityRoleNotConfigured, "home guild is not configured",
				goerr.V(GuildIDKey, uc.homeGuildID))
		}
		return nil, err
	}
	if cfg.SecurityRoleID == "" {
		return nil, goerr.Wrap(ErrSecurityRoleNotConfigured, "no security role",
			goerr.V(GuildIDKey, uc.homeGuildID))
	}
	if cfg.AlertChannelID == "" {
		return nil, goerr.Wrap(ErrAlertChannelNotConfigured, "no alert channel",
			goerr.V(GuildIDKey, uc.homeGuildID))
	}
	return cfg, nil
}

// FileInternal files a request from inside the home guild. The requester
// must hold the customer role; the alert post is the delivery step and its
// failure aborts the filing. A ledger write failure after delivery degrades
// the outcome instead of failing it.
func (uc *RequestUseCase) FileInternal(ctx context.Context, actor *model.Actor, location, details string) (*model.Outcome, error) {
	if uc.discord == nil {
		return nil, goerr.New("discord service is not configured")
	}
	if location == "" {
		return nil, goerr.New("location is required")
	}

	cfg, err := uc.config.Get(ctx, actor.GuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrCustomerRoleNotConfigured, "guild is not configured",
				goerr.V(GuildIDKey, actor.GuildID))
		}
		return nil, err
	}
	if cfg.CustomerRoleID == "" {
		return nil, goerr.Wrap(ErrCustomerRoleNotConfigured, "no customer role",
			goerr.V(GuildIDKey, actor.GuildID))
	}
	if !actor.HasRole(cfg.CustomerRoleID) {
		return nil, goerr.Wrap(ErrCustomerRoleRequired, "cannot file request",
			goerr.V("user_id", actor.ID), goerr.V("role_id", cfg.CustomerRoleID))
	}
	if cfg.SecurityRoleID == "" {
		return nil, goerr.Wrap(ErrSecurityRoleNotConfigured, "no security role",
			goerr.V(GuildIDKey, actor.GuildID))
	}
	if cfg.AlertChannelID == "" {
		return nil, goerr.Wrap(ErrAlertChannelNotConfigured, "no alert channel",
			goerr.V(GuildIDKey, actor.GuildID))
	}

	req := model.NewInternalRequest(types.NewRequestID(), actor.ID, actor.Name, location, details)

	msgID, err := uc.discord.PostMessage(ctx, cfg.AlertChannelID, buildAlertMessage(req, cfg.SecurityRoleID, ""))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to post alert message",
			goerr.V(RequestIDKey, req.ID), goerr.V("channel_id", cfg.AlertChannelID))
	}
	req.AlertMessage = model.MessageRef{ChannelID: cfg.AlertChannelID, MessageID: msgID}

	out := &model.Outcome{Request: req}
	if created, err := uc.repo.Request().Create(ctx, req); err != nil {
		out.AddFault(model.FaultTargetLedger, err)
		errutil.Handle(ctx, goerr.Wrap(err, "failed to create ledger entry",
			goerr.V(RequestIDKey, req.ID)), "request delivered but not recorded")
	} else {
		out.Request = created
	}
	return out, nil
}

// FileExternal files a request from a registered customer guild. The origin
// confirmation post is the delivery step; once it succeeds the filing is
// committed and alert or ledger failures degrade the outcome.
func (uc *RequestUseCase) FileExternal(ctx context.Context, actor *model.Actor, location, details, contact string) (*model.Outcome, error) {
	if uc.discord == nil {
		return nil, goerr.New("discord service is not configured")
	}
	if location == "" {
		return nil, goerr.New("location is required")
	}
	if details == "" {
		return nil, goerr.New("details are required")
	}

	reg, err := uc.repo.ExternalGuild().Get(ctx, actor.GuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrGuildNotRegistered, "cannot file request",
				goerr.V(GuildIDKey, actor.GuildID))
		}
		return nil, goerr.Wrap(err, "failed to look up registration", goerr.V(GuildIDKey, actor.GuildID))
	}
	if reg.Blacklisted {
		return nil, goerr.Wrap(ErrGuildBlacklisted, "cannot file request",
			goerr.V(GuildIDKey, actor.GuildID), goerr.V("reason", reg.BlacklistReason))
	}
	if actor.ChannelID != reg.ChannelID {
		return nil, goerr.Wrap(ErrWrongChannel, "cannot file request",
			goerr.V(GuildIDKey, actor.GuildID),
			goerr.V("channel_id", actor.ChannelID),
			goerr.V("designated_channel_id", reg.ChannelID))
	}
	if len(reg.AllowedRoleIDs) > 0 && !reg.HasAllowedRole(actor.RoleIDs) {
		return nil, goerr.Wrap(ErrRoleNotAllowed, "cannot file request",
			goerr.V(GuildIDKey, actor.GuildID), goerr.V("user_id", actor.ID))
	}

	cfg, err := uc.homeConfig(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.ExternalGuild().Touch(ctx, actor.GuildID, time.Now()); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to touch registration",
			goerr.V(GuildIDKey, actor.GuildID)), "failed to refresh guild activity")
	}

	req := model.NewExternalRequest(types.NewRequestID(), actor.GuildID, actor.ID, actor.Name, location, details, contact)

	originID, err := uc.discord.PostMessage(ctx, reg.ChannelID, buildOriginMessage(req))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to post origin confirmation",
			goerr.V(RequestIDKey, req.ID), goerr.V("channel_id", reg.ChannelID))
	}
	req.OriginMessage = model.MessageRef{ChannelID: reg.ChannelID, MessageID: originID}

	out := &model.Outcome{Request: req}

	alertID, err := uc.discord.PostMessage(ctx, cfg.AlertChannelID, buildAlertMessage(req, cfg.SecurityRoleID, reg.Name))
	if err != nil {
		out.AddFault(model.FaultTargetAlertView, err)
		errutil.Handle(ctx, goerr.Wrap(err, "failed to post alert message",
			goerr.V(RequestIDKey, req.ID), goerr.V("channel_id", cfg.AlertChannelID)), "alert view not delivered")
	} else {
		req.AlertMessage = model.MessageRef{ChannelID: cfg.AlertChannelID, MessageID: alertID}
	}

	if created, err := uc.repo.Request().Create(ctx, req); err != nil {
		out.AddFault(model.FaultTargetLedger, err)
		errutil.Handle(ctx, goerr.Wrap(err, "failed to create ledger entry",
			goerr.V(RequestIDKey, req.ID)), "request delivered but not recorded")
	} else {
		out.Request = created
	}
	return out, nil
}

// Respond adds the actor to the request's responder list, promoting a
// pending request to responding. Responding twice is a benign no-op
// reported via Already. Requires the security role in the home guild.
func (uc *RequestUseCase) Respond(ctx context.Context, actor *model.Actor, requestID types.RequestID) (*model.Outcome, error) {
	if uc.discord == nil {
		return nil, goerr.New("discord service is not configured")
	}

	cfg, err := uc.securityConfig(ctx, actor)
	if err != nil {
		return nil, err
	}

	req, already, err := uc.repo.Request().AddResponder(ctx, requestID, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, goerr.Wrap(ErrRequestNotFound, "cannot respond", goerr.V(RequestIDKey, requestID))
		case errors.Is(err, repository.ErrAlreadyConcluded):
			return nil, goerr.Wrap(ErrRequestAlreadyConcluded, "cannot respond", goerr.V(RequestIDKey, requestID))
		default:
			return nil, goerr.Wrap(err, "failed to add responder", goerr.V(RequestIDKey, requestID))
		}
	}

	out := &model.Outcome{Request: req, Already: already}
	if already {
		return out, nil
	}

	uc.refreshViews(ctx, out, cfg.SecurityRoleID)
	return out, nil
}

// Conclude moves the request to its terminal state with a reason. Requires
// the security role in the home guild; a second conclusion fails with
// ErrRequestAlreadyConcluded.
func (uc *RequestUseCase) Conclude(ctx context.Context, actor *model.Actor, requestID types.RequestID, reason string) (*model.Outcome, error) {
	if uc.discord == nil {
		return nil, goerr.New("discord service is not configured")
	}
	if reason == "" {
		return nil, goerr.New("conclusion reason is required", goerr.V(RequestIDKey, requestID))
	}

	cfg, err := uc.securityConfig(ctx, actor)
	if err != nil {
		return nil, err
	}

	req, err := uc.repo.Request().Conclude(ctx, requestID, reason, actor.ID, actor.Name, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, goerr.Wrap(ErrRequestNotFound, "cannot conclude", goerr.V(RequestIDKey, requestID))
		case errors.Is(err, repository.ErrAlreadyConcluded):
			return nil, goerr.Wrap(ErrRequestAlreadyConcluded, "cannot conclude", goerr.V(RequestIDKey, requestID))
		default:
			return nil, goerr.Wrap(err, "failed to conclude request", goerr.V(RequestIDKey, requestID))
		}
	}

	out := &model.Outcome{Request: req}
	uc.refreshViews(ctx, out, cfg.SecurityRoleID)
	return out, nil
}

// Get retrieves a request from the ledger
func (uc *RequestUseCase) Get(ctx context.Context, requestID types.RequestID) (*model.Request, error) {
	req, err := uc.repo.Request().Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrRequestNotFound, "no such request", goerr.V(RequestIDKey, requestID))
		}
		return nil, goerr.Wrap(err, "failed to get request", goerr.V(RequestIDKey, requestID))
	}
	return req, nil
}

// List retrieves requests from the ledger, newest first
func (uc *RequestUseCase) List(ctx context.Context, opts ...interfaces.ListRequestOption) ([]*model.Request, error) {
	reqs, err := uc.repo.Request().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list requests")
	}
	return reqs, nil
}

// securityConfig checks that the actor holds the home guild's security role
// and returns the home configuration
func (uc *RequestUseCase) securityConfig(ctx context.Context, actor *model.Actor) (*model.GuildConfig, error) {
	cfg, err := uc.config.Get(ctx, uc.homeGuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrSecurityRoleNotConfigured, "home guild is not configured",
				goerr.V(GuildIDKey, uc.homeGuildID))
		}
		return nil, err
	}
	if cfg.SecurityRoleID == "" {
		return nil, goerr.Wrap(ErrSecurityRoleNotConfigured, "no security role",
			goerr.V(GuildIDKey, uc.homeGuildID))
	}
	if !actor.HasRole(cfg.SecurityRoleID) {
		return nil, goerr.Wrap(ErrSecurityRoleRequired, "not a security team member",
			goerr.V("user_id", actor.ID), goerr.V("role_id", cfg.SecurityRoleID))
	}
	return cfg, nil
}

// refreshViews re-renders the request's messages after a status change.
// The ledger already holds the new state, so view failures are recorded as
// faults and never undo the transition. A view whose reference was never
// established (an earlier delivery fault) is skipped.
func (uc *RequestUseCase) refreshViews(ctx context.Context, out *model.Outcome, securityRoleID types.RoleID) {
	req := out.Request

	if !req.AlertMessage.IsZero() {
		msg := buildAlertMessage(req, securityRoleID, uc.originGuildName(ctx, req))
		if err := uc.discord.UpdateMessage(ctx, req.AlertMessage.ChannelID, req.AlertMessage.MessageID, msg); err != nil {
			out.AddFault(model.FaultTargetAlertView, err)
			errutil.Handle(ctx, goerr.Wrap(err, "failed to update alert message",
				goerr.V(RequestIDKey, req.ID)), "alert view out of date")
		}
	}

	if req.External && !req.OriginMessage.IsZero() {
		msg := buildOriginMessage(req)
		if err := uc.discord.UpdateMessage(ctx, req.OriginMessage.ChannelID, req.OriginMessage.MessageID, msg); err != nil {
			out.AddFault(model.FaultTargetOriginView, err)
			errutil.Handle(ctx, goerr.Wrap(err, "failed to update origin message",
				goerr.V(RequestIDKey, req.ID)), "origin view out of date")
		}
	}
}

// originGuildName resolves the display name of the request's origin guild
// for rendering, falling back to the raw ID
func (uc *RequestUseCase) originGuildName(ctx context.Context, req *model.Request) string {
	if !req.External {
		return ""
	}
	reg, err := uc.repo.ExternalGuild().Get(ctx, req.ExternalGuildID)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to look up registration",
			goerr.V(GuildIDKey, req.ExternalGuildID)), "failed to resolve origin guild name")
		return req.ExternalGuildID.String()
	}
	return reg.Name
}
