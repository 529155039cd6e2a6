package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"depositguard/internal/assist"
	"depositguard/internal/audit"
	"depositguard/internal/cases/models"
	"depositguard/internal/cases/service"
	"depositguard/internal/compliance"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/platform/httputil"
	"depositguard/pkg/requestcontext"
)

// Service defines the case operations the HTTP layer needs.
type Service interface {
	CreateCase(ctx context.Context, in service.CreateCaseInput) (*models.CaseView, error)
	GetCase(ctx context.Context, cid id.CaseID) (*models.CaseView, error)
	ListCases(ctx context.Context) ([]*models.CaseView, error)
	UpdateMoveOutDate(ctx context.Context, cid id.CaseID, expected int64, moveOut time.Time) (*models.CaseView, error)
	UpdateForwardingAddress(ctx context.Context, cid id.CaseID, expected int64, addr models.Address) (*models.CaseView, error)
	AddDeduction(ctx context.Context, cid id.CaseID, expected int64, in service.DeductionInput) (*models.CaseView, error)
	UpdateDeduction(ctx context.Context, cid id.CaseID, did id.DeductionID, expected int64, in service.DeductionInput) (*models.CaseView, error)
	DeleteDeduction(ctx context.Context, cid id.CaseID, did id.DeductionID, expected int64) (*models.CaseView, error)
	SuggestDeductionWording(ctx context.Context, cid id.CaseID, did id.DeductionID) (*assist.Suggestion, error)
	AcceptDeductionWording(ctx context.Context, cid id.CaseID, did id.DeductionID, expected int64, description string) (*models.CaseView, error)
	UpdateChecklistItem(ctx context.Context, cid id.CaseID, iid id.ChecklistItemID, expected int64, completed bool) (*models.CaseView, error)
	AddAttachment(ctx context.Context, cid id.CaseID, expected int64, in service.AttachmentInput) (*models.CaseView, error)
	GenerateDocument(ctx context.Context, cid id.CaseID, expected int64, docType models.DocumentType) (*service.GeneratedDocument, error)
	DocumentURL(ctx context.Context, cid id.CaseID, did id.DocumentID) (*service.DocumentLink, error)
	ComputeReadiness(ctx context.Context, cid id.CaseID) (*compliance.Readiness, error)
	ComputeExposure(ctx context.Context, cid id.CaseID) (*compliance.Exposure, error)
	TransitionStatus(ctx context.Context, cid id.CaseID, expected int64, req models.TransitionRequest) (*models.CaseView, error)
	ListAuditEvents(ctx context.Context, cid id.CaseID) ([]audit.Event, error)
}

// maxUploadBytes leaves headroom over the service's attachment limit for
// multipart framing.
const maxUploadBytes = 11 << 20

// Handler serves the case API. Every mutation requires an If-Match header
// carrying the case version the client last saw; successful responses carry
// the new version in ETag.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the case routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{caseID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/move-out-date", h.handleMoveOutDate)
			r.Put("/forwarding-address", h.handleForwardingAddress)
			r.Post("/deductions", h.handleAddDeduction)
			r.Put("/deductions/{deductionID}", h.handleUpdateDeduction)
			r.Delete("/deductions/{deductionID}", h.handleDeleteDeduction)
			r.Post("/deductions/{deductionID}/suggestion", h.handleSuggestWording)
			r.Post("/deductions/{deductionID}/wording", h.handleAcceptWording)
			r.Put("/checklist/{itemID}", h.handleChecklistItem)
			r.Post("/attachments", h.handleAddAttachment)
			r.Post("/documents", h.handleGenerateDocument)
			r.Get("/documents/{documentID}/url", h.handleDocumentURL)
			r.Get("/readiness", h.handleReadiness)
			r.Get("/exposure", h.handleExposure)
			r.Post("/status", h.handleTransition)
			r.Get("/audit", h.handleAudit)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateCaseRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.CreateCase(ctx, req.input())
	if err != nil {
		h.fail(ctx, w, "create case", err)
		return
	}
	writeCase(w, http.StatusCreated, view)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.service.ListCases(ctx)
	if err != nil {
		h.fail(ctx, w, "list cases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.GetCase(ctx, cid)
	if err != nil {
		h.fail(ctx, w, "get case", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleMoveOutDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MoveOutDateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.UpdateMoveOutDate(ctx, cid, expected, req.moveOut)
	if err != nil {
		h.fail(ctx, w, "update move-out date", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleForwardingAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.UpdateForwardingAddress(ctx, cid, expected, req.Address)
	if err != nil {
		h.fail(ctx, w, "update forwarding address", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleAddDeduction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DeductionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.AddDeduction(ctx, cid, expected, req.input())
	if err != nil {
		h.fail(ctx, w, "add deduction", err)
		return
	}
	writeCase(w, http.StatusCreated, view)
}

func (h *Handler) handleUpdateDeduction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	did, err := id.ParseDeductionID(chi.URLParam(r, "deductionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DeductionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.UpdateDeduction(ctx, cid, did, expected, req.input())
	if err != nil {
		h.fail(ctx, w, "update deduction", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleDeleteDeduction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	did, err := id.ParseDeductionID(chi.URLParam(r, "deductionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.service.DeleteDeduction(ctx, cid, did, expected)
	if err != nil {
		h.fail(ctx, w, "delete deduction", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleSuggestWording(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	did, err := id.ParseDeductionID(chi.URLParam(r, "deductionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sug, err := h.service.SuggestDeductionWording(ctx, cid, did)
	if err != nil {
		h.fail(ctx, w, "suggest deduction wording", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sug)
}

func (h *Handler) handleAcceptWording(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	did, err := id.ParseDeductionID(chi.URLParam(r, "deductionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AcceptWordingRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.AcceptDeductionWording(ctx, cid, did, expected, req.Description)
	if err != nil {
		h.fail(ctx, w, "accept deduction wording", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleChecklistItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	iid, err := id.ParseChecklistItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ChecklistItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.UpdateChecklistItem(ctx, cid, iid, expected, *req.Completed)
	if err != nil {
		h.fail(ctx, w, "update checklist item", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.WarnContext(ctx, "invalid attachment upload",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "attachment could not be read"))
		return
	}
	view, err := h.service.AddAttachment(ctx, cid, expected, service.AttachmentInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		h.fail(ctx, w, "add attachment", err)
		return
	}
	writeCase(w, http.StatusCreated, view)
}

func (h *Handler) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[GenerateDocumentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.GenerateDocument(ctx, cid, expected, req.docType)
	if err != nil {
		h.fail(ctx, w, "generate document", err)
		return
	}
	status := http.StatusCreated
	if out.Reused {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, out)
}

func (h *Handler) handleDocumentURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	did, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	link, err := h.service.DocumentURL(ctx, cid, did)
	if err != nil {
		h.fail(ctx, w, "sign document url", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, link)
}

func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	readiness, err := h.service.ComputeReadiness(ctx, cid)
	if err != nil {
		h.fail(ctx, w, "compute readiness", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, readiness)
}

func (h *Handler) handleExposure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	exposure, err := h.service.ComputeExposure(ctx, cid)
	if err != nil {
		h.fail(ctx, w, "compute exposure", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exposure)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, expected, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.TransitionStatus(ctx, cid, expected, req.transition())
	if err != nil {
		h.fail(ctx, w, "transition status", err)
		return
	}
	writeCase(w, http.StatusOK, view)
}

func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.ListAuditEvents(ctx, cid)
	if err != nil {
		h.fail(ctx, w, "list audit events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// target parses the case id and the expected version for a mutation.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (id.CaseID, int64, bool) {
	cid, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CaseID{}, 0, false
	}
	expected, err := expectedVersion(r)
	if err != nil {
		httputil.WriteError(w, err)
		return id.CaseID{}, 0, false
	}
	return cid, expected, true
}

// expectedVersion reads If-Match. Both quoted and weak forms are accepted
// since the value is always the ETag this API handed out.
func expectedVersion(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "If-Match header with the case version is required")
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "If-Match must be a case version")
	}
	return v, nil
}

func writeCase(w http.ResponseWriter, status int, view *models.CaseView) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(view.Version, 10)))
	httputil.WriteJSON(w, status, view)
}

// fail logs at a level matching the error class and writes the response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUpstream:
		h.logger.ErrorContext(ctx, "case request failed", attrs...)
	default:
		h.logger.WarnContext(ctx, "case request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}
