package service

import (
	"context"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
)

// Current returns the rule set in force for a jurisdiction: the latest
// effective date not in the future, ties broken by version label.
func (s *Service) Current(ctx context.Context, jid id.JurisdictionID) (*models.RuleSet, error) {
	all, err := s.store.ListRuleSets(ctx, jid)
	if err != nil {
		return nil, translate(err, "jurisdiction not found")
	}
	now := s.clock()
	inForce := all[:0]
	for _, rs := range all {
		if !rs.EffectiveDate.After(now) {
			inForce = append(inForce, rs)
		}
	}
	if len(inForce) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no rule set in force for jurisdiction")
	}
	sortRuleSets(inForce)
	current := inForce[len(inForce)-1]
	current.Normalize()
	if err := current.CheckRequired(); err != nil {
		s.logger.ErrorContext(ctx, "corrupt rule set", "rule_set_id", current.ID.String(), "error", err)
		return nil, err
	}
	return &current, nil
}

// Get loads a rule set by ID. Locked rule sets are served from the cache.
func (s *Service) Get(ctx context.Context, rid id.RuleSetID) (*models.RuleSet, error) {
	if s.cache != nil {
		if rs, ok := s.cache.Get(ctx, rid); ok {
			return rs, nil
		}
	}
	rs, err := s.store.FindRuleSet(ctx, rid)
	if err != nil {
		return nil, translate(err, "rule set not found")
	}
	rs.Normalize()
	if err := rs.CheckRequired(); err != nil {
		return nil, err
	}
	if s.cache != nil && rs.IsLocked() {
		s.cache.Set(ctx, rs)
	}
	return rs, nil
}

// Publish inserts a new rule set version for a jurisdiction.
func (s *Service) Publish(ctx context.Context, draft models.RuleSet) (*models.RuleSet, error) {
	if _, err := parseVersion(draft.Version); err != nil {
		return nil, err
	}
	if draft.ReturnDeadlineDays <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "return deadline days must be positive")
	}
	if draft.EffectiveDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "effective date is required")
	}
	if _, err := s.store.FindJurisdictionByID(ctx, draft.JurisdictionID); err != nil {
		return nil, translate(err, "jurisdiction not found")
	}

	rs := draft.Clone()
	rs.ID = id.RuleSetID(uuid.New())
	rs.CreatedAt = s.clock()
	rs.LockedAt = nil
	rs.Normalize()
	if err := s.store.InsertRuleSet(ctx, &rs); err != nil {
		return nil, translate(err, "jurisdiction not found")
	}
	s.logger.InfoContext(ctx, "rule set published",
		"jurisdiction_id", rs.JurisdictionID.String(),
		"rule_set_id", rs.ID.String(),
		"version", rs.Version,
	)
	return &rs, nil
}

// Amend derives a new version from an existing rule set. The source row is
// never modified, whether or not a case has locked it.
func (s *Service) Amend(ctx context.Context, base id.RuleSetID, newVersion string, mutate func(*models.RuleSet)) (*models.RuleSet, error) {
	next, err := parseVersion(newVersion)
	if err != nil {
		return nil, err
	}
	src, err := s.store.FindRuleSet(ctx, base)
	if err != nil {
		return nil, translate(err, "rule set not found")
	}
	if prev, err := semver.NewVersion(src.Version); err == nil && !next.GreaterThan(prev) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "version %s must be greater than %s", newVersion, src.Version)
	}
	draft := src.Clone()
	if mutate != nil {
		mutate(&draft)
	}
	draft.JurisdictionID = src.JurisdictionID
	draft.Version = newVersion
	return s.Publish(ctx, draft)
}

// Lock marks a rule set as referenced by a case. Idempotent.
func (s *Service) Lock(ctx context.Context, rid id.RuleSetID) error {
	if err := s.store.LockRuleSet(ctx, rid, s.clock()); err != nil {
		return translate(err, "rule set not found")
	}
	return nil
}

func parseVersion(label string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(label))
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid version label %q", label)
	}
	return v, nil
}

// sortRuleSets orders by effective date, then semantic version. Labels that do
// not parse sort before those that do and compare lexically among themselves.
func sortRuleSets(list []models.RuleSet) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.Before(b.EffectiveDate)
		}
		va, errA := semver.NewVersion(a.Version)
		vb, errB := semver.NewVersion(b.Version)
		switch {
		case errA == nil && errB == nil:
			return va.LessThan(vb)
		case errA != nil && errB != nil:
			return a.Version < b.Version
		default:
			return errA != nil
		}
	})
}
