// Package service resolves jurisdictions and manages versioned rule sets.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/platform/sentinel"
)

type Store interface {
	FindJurisdiction(ctx context.Context, stateCode string, city *string) (*models.Jurisdiction, error)
	FindJurisdictionByID(ctx context.Context, jid id.JurisdictionID) (*models.Jurisdiction, error)
	FindRuleSet(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, error)
	ListRuleSets(ctx context.Context, jid id.JurisdictionID) ([]models.RuleSet, error)
	InsertRuleSet(ctx context.Context, rs *models.RuleSet) error
	LockRuleSet(ctx context.Context, rid id.RuleSetID, at time.Time) error
}

// RuleSetCache holds locked rule sets by ID.
type RuleSetCache interface {
	Get(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, bool)
	Set(ctx context.Context, rs *models.RuleSet)
}

// Service resolves jurisdictions and governs rule-set versions.
type Service struct {
	store  Store
	cache  RuleSetCache
	logger *slog.Logger
	clock  func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithCache(c RuleSetCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func translate(err error, notFound string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.New(dErrors.CodeConflict, "rule set version already published")
	case errors.Is(err, sentinel.ErrImmutable):
		return dErrors.New(dErrors.CodeConflict, "rule set is referenced by a case and cannot be changed")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "jurisdiction store failure")
	}
}
