package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/usecase"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
	"github.com/secmon-lab/argos/pkg/utils/logging"
	"github.com/secmon-lab/argos/pkg/utils/safe"
)

// Server is the read-only operations API: the request ledger and the guild
// registry, served as JSON for inspection. All mutations go through Discord.
type Server struct {
	router *chi.Mux
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()
	s := &Server{router: r}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/requests", listRequestsHandler(uc.Request))
		r.Get("/requests/{id}", getRequestHandler(uc.Request))
		r.Get("/guilds", listGuildsHandler(uc.Registry))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, map[string]string{"status": "ok"})
}

// requestResponse is the JSON projection of a ledger entry
type requestResponse struct {
	ID               string     `json:"id"`
	External         bool       `json:"external"`
	RequesterID      string     `json:"requester_id"`
	RequesterName    string     `json:"requester_name"`
	Location         string     `json:"location"`
	Details          string     `json:"details,omitempty"`
	Contact          string     `json:"contact,omitempty"`
	ExternalGuildID  string     `json:"external_guild_id,omitempty"`
	Status           string     `json:"status"`
	ResponderIDs     []string   `json:"responder_ids,omitempty"`
	ConclusionReason string     `json:"conclusion_reason,omitempty"`
	ConcludedBy      string     `json:"concluded_by,omitempty"`
	ConcludedAt      *time.Time `json:"concluded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toRequestResponse(req *model.Request) requestResponse {
	resp := requestResponse{
		ID:               req.ID.String(),
		External:         req.External,
		RequesterID:      req.RequesterID.String(),
		RequesterName:    req.RequesterName,
		Location:         req.Location,
		Details:          req.Details,
		Contact:          req.Contact,
		ExternalGuildID:  req.ExternalGuildID.String(),
		Status:           req.Status.Normalize().String(),
		ConclusionReason: req.ConclusionReason,
		ConcludedBy:      req.ConcludedByName,
		CreatedAt:        req.CreatedAt,
		UpdatedAt:        req.UpdatedAt,
	}
	for _, id := range req.ResponderIDs {
		resp.ResponderIDs = append(resp.ResponderIDs, id.String())
	}
	if !req.ConcludedAt.IsZero() {
		at := req.ConcludedAt
		resp.ConcludedAt = &at
	}
	return resp
}

// listRequestsHandler serves the ledger, newest first. Supports status,
// guild and limit query parameters.
func listRequestsHandler(uc *usecase.RequestUseCase) http.HandlerFunc {
	type response struct {
		Requests []requestResponse `json:"requests"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var opts []interfaces.ListRequestOption

		if v := r.URL.Query().Get("status"); v != "" {
			status, err := types.ParseRequestStatus(v)
			if err != nil {
				http.Error(w, "unknown status filter", http.StatusBadRequest)
				return
			}
			opts = append(opts, interfaces.WithStatus(status))
		}
		if v := r.URL.Query().Get("guild"); v != "" {
			guildID := types.GuildID(v)
			if err := guildID.Validate(); err != nil {
				http.Error(w, "malformed guild ID", http.StatusBadRequest)
				return
			}
			opts = append(opts, interfaces.WithGuild(guildID))
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			opts = append(opts, interfaces.WithLimit(limit))
		}

		reqs, err := uc.List(r.Context(), opts...)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Requests: make([]requestResponse, len(reqs))}
		for i, req := range reqs {
			resp.Requests[i] = toRequestResponse(req)
		}
		respondJSON(w, r, resp)
	}
}

func getRequestHandler(uc *usecase.RequestUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := uc.Get(r.Context(), types.RequestID(chi.URLParam(r, "id")))
		if err != nil {
			if errors.Is(err, usecase.ErrRequestNotFound) {
				http.Error(w, "request not found", http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		respondJSON(w, r, toRequestResponse(req))
	}
}

// listGuildsHandler serves the external guild registry
func listGuildsHandler(uc *usecase.RegistryUseCase) http.HandlerFunc {
	type guildResponse struct {
		GuildID         string    `json:"guild_id"`
		Name            string    `json:"name"`
		ChannelID       string    `json:"channel_id,omitempty"`
		Active          bool      `json:"active"`
		Blacklisted     bool      `json:"blacklisted"`
		BlacklistReason string    `json:"blacklist_reason,omitempty"`
		AllowedRoleIDs  []string  `json:"allowed_role_ids,omitempty"`
		LastAccessedAt  time.Time `json:"last_accessed_at"`
	}
	type response struct {
		Guilds []guildResponse `json:"guilds"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		guilds, err := uc.List(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Guilds: make([]guildResponse, len(guilds))}
		for i, g := range guilds {
			gr := guildResponse{
				GuildID:         g.GuildID.String(),
				Name:            g.Name,
				ChannelID:       g.ChannelID.String(),
				Active:          g.Active,
				Blacklisted:     g.Blacklisted,
				BlacklistReason: g.BlacklistReason,
				LastAccessedAt:  g.LastAccessedAt,
			}
			for _, id := range g.AllowedRoleIDs {
				gr.AllowedRoleIDs = append(gr.AllowedRoleIDs, id.String())
			}
			resp.Guilds[i] = gr
		}
		respondJSON(w, r, resp)
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}
