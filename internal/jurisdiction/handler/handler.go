package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/platform/httputil"
	"depositguard/pkg/requestcontext"
)

// Service defines the jurisdiction operations the HTTP layer needs.
type Service interface {
	Resolve(ctx context.Context, state, city string) (*models.Resolution, error)
	Get(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, error)
}

// Handler serves jurisdiction lookups.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the jurisdiction routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/jurisdictions/resolve", h.handleResolve)
	r.Get("/rule-sets/{ruleSetID}", h.handleGetRuleSet)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	res, err := h.service.Resolve(ctx, q.Get("state"), q.Get("city"))
	if err != nil {
		h.logger.WarnContext(ctx, "jurisdiction resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"state", q.Get("state"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGetRuleSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rid, err := id.ParseRuleSetID(chi.URLParam(r, "ruleSetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rs, err := h.service.Get(ctx, rid)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rs)
}
