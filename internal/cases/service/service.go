// Package service implements the case operations: every mutation loads the
// aggregate, checks the caller's expected version, applies the change,
// saves with a compare-and-swap on the version and appends audit events, all
// in one unit of work.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"depositguard/internal/assist"
	"depositguard/internal/audit"
	"depositguard/internal/cases/metrics"
	"depositguard/internal/cases/models"
	"depositguard/internal/documents"
	jmodels "depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/platform/sentinel"
	"depositguard/pkg/platform/tx"
	"depositguard/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, c *models.Case) error
	Get(ctx context.Context, cid id.CaseID) (*models.Case, error)
	ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Case, error)
	Save(ctx context.Context, c *models.Case) error
	FindDocument(ctx context.Context, cid id.CaseID, docType models.DocumentType, version int64) (*models.Document, error)
	InsertDocument(ctx context.Context, doc *models.Document) error
}

// RuleSets is the slice of the jurisdiction service a case needs.
type RuleSets interface {
	Resolve(ctx context.Context, state, city string) (*jmodels.Resolution, error)
	Get(ctx context.Context, rid id.RuleSetID) (*jmodels.RuleSet, error)
	Lock(ctx context.Context, rid id.RuleSetID) error
	Jurisdiction(ctx context.Context, jid id.JurisdictionID) (*jmodels.Jurisdiction, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event) (*audit.Event, error)
	List(ctx context.Context, caseID id.CaseID) ([]audit.Event, error)
}

type Renderer interface {
	Render(ctx context.Context, snap documents.Snapshot, docType models.DocumentType) (*documents.Rendered, error)
}

type ObjectStore interface {
	Put(ctx context.Context, path string, body []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
}

type Improver interface {
	Improve(ctx context.Context, in assist.DeductionContext) (*assist.Suggestion, error)
}

// Service owns the case aggregate.
type Service struct {
	store    Store
	rules    RuleSets
	audit    AuditRecorder
	renderer Renderer
	objects  ObjectStore
	improver Improver
	tx       tx.Transactor
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	urlTTL   time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTransactor(t tx.Transactor) Option {
	return func(s *Service) {
		if t != nil {
			s.tx = t
		}
	}
}

func WithImprover(i Improver) Option {
	return func(s *Service) {
		if i != nil {
			s.improver = i
		}
	}
}

// WithSignedURLTTL sets how long document download links stay valid.
func WithSignedURLTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.urlTTL = d
		}
	}
}

func New(store Store, rules RuleSets, recorder AuditRecorder, renderer Renderer, objects ObjectStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		rules:    rules,
		audit:    recorder,
		renderer: renderer,
		objects:  objects,
		improver: assist.Disabled{},
		tx:       tx.None{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("depositguard/cases"),
		urlTTL:   15 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// start opens a span and returns a finish func that records the outcome.
func (s *Service) start(ctx context.Context, op string, cid id.CaseID) (context.Context, func(error)) {
	began := time.Now()
	ctx, span := s.tracer.Start(ctx, "cases."+op)
	if !cid.IsNil() {
		span.SetAttributes(attribute.String("case_id", cid.String()))
	}
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		s.metrics.ObserveOperation(op, outcome(err), time.Since(began))
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvalidTransition, dErrors.CodeNotFound:
		return "rejected"
	case dErrors.CodeUpstream:
		return "upstream"
	default:
		return "error"
	}
}

// actor returns the authenticated user; every case operation requires one.
func actor(ctx context.Context) (id.UserID, error) {
	uid := requestcontext.UserID(ctx)
	if uid.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return uid, nil
}

// load fetches a case owned by the caller. Cases of other users are
// reported as not found.
func (s *Service) load(ctx context.Context, cid id.CaseID) (*models.Case, error) {
	uid, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Get(ctx, cid)
	if err != nil {
		return nil, translate(err, "case not found")
	}
	if c.OwnerID != uid {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return c, nil
}

func checkVersion(c *models.Case, expected int64) error {
	if c.Version != expected {
		return dErrors.Newf(dErrors.CodeConflict,
			"case was modified concurrently (expected version %d, current %d)", expected, c.Version)
	}
	return nil
}

// change is applied to a loaded case inside mutate. It returns the audit
// events describing what it did.
type change func(ctx context.Context, c *models.Case, now time.Time) ([]audit.Event, error)

// mutate is the single write path for an existing case.
func (s *Service) mutate(ctx context.Context, cid id.CaseID, expected int64, apply change) (*models.CaseView, error) {
	var view *models.CaseView
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.load(ctx, cid)
		if err != nil {
			return err
		}
		if err := checkVersion(c, expected); err != nil {
			return err
		}
		now := requestcontext.Now(ctx).UTC()
		events, err := apply(ctx, c, now)
		if err != nil {
			return err
		}
		c.UpdatedAt = now
		if err := s.store.Save(ctx, c); err != nil {
			return translate(err, "case not found")
		}
		if err := s.record(ctx, c.ID, now, events...); err != nil {
			return err
		}
		view = models.NewCaseView(c, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) record(ctx context.Context, cid id.CaseID, now time.Time, events ...audit.Event) error {
	for _, e := range events {
		e.CaseID = cid
		if e.Timestamp.IsZero() {
			e.Timestamp = now
		}
		if _, err := s.audit.Record(ctx, e); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
	}
	return nil
}

func translate(err error, notFound string) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrStaleVersion):
		return dErrors.New(dErrors.CodeConflict, "case was modified concurrently")
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeConflict, "record already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUpstream, "a downstream service is unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "case store failure")
	}
}
