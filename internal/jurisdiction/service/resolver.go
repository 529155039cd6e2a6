package service

import (
	"context"
	"errors"
	"strings"

	"depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/platform/sentinel"
)

// StateOnlyMessage accompanies a fallback from an unknown city to its state.
const StateOnlyMessage = "City-specific ordinances are not included"

// Resolve maps (state, city) to the most specific known jurisdiction and the
// rule set currently in force there.
//
// Resolution order:
//  1. exact (state code, city) record, with its stored coverage
//  2. city given but unknown: the state-level record, downgraded to STATE_ONLY
//  3. neither: NotFound
func (s *Service) Resolve(ctx context.Context, state, city string) (*models.Resolution, error) {
	code, ok := models.NormalizeState(state)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown state %q", strings.TrimSpace(state))
	}
	city = strings.Join(strings.Fields(city), " ")

	var (
		j        *models.Jurisdiction
		err      error
		coverage models.CoverageLevel
		message  string
	)
	if city != "" {
		j, err = s.store.FindJurisdiction(ctx, code, &city)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, translate(err, "jurisdiction not found")
		}
	}
	if j != nil {
		coverage = j.Coverage
	} else {
		j, err = s.store.FindJurisdiction(ctx, code, nil)
		if err != nil {
			return nil, translate(err, "no jurisdiction data for "+code)
		}
		coverage = j.Coverage
		if city != "" {
			coverage = models.CoverageStateOnly
			message = StateOnlyMessage
		}
	}

	rs, err := s.Current(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "jurisdiction resolved",
		"state_code", code,
		"jurisdiction_id", j.ID.String(),
		"rule_set_version", rs.Version,
		"coverage", string(coverage),
	)
	return &models.Resolution{
		Jurisdiction: *j,
		RuleSet:      *rs,
		Coverage:     coverage,
		Citations:    rs.Citations,
		Message:      message,
	}, nil
}

// Jurisdiction loads a jurisdiction record by ID.
func (s *Service) Jurisdiction(ctx context.Context, jid id.JurisdictionID) (*models.Jurisdiction, error) {
	j, err := s.store.FindJurisdictionByID(ctx, jid)
	if err != nil {
		return nil, translate(err, "jurisdiction not found")
	}
	return j, nil
}
