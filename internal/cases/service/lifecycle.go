package service

import (
	"context"
	"time"

	"depositguard/internal/audit"
	"depositguard/internal/cases/models"
	"depositguard/internal/compliance"
	jmodels "depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	"depositguard/pkg/requestcontext"
)

// ComputeReadiness evaluates the readiness gate against the stored case.
func (s *Service) ComputeReadiness(ctx context.Context, cid id.CaseID) (r *compliance.Readiness, err error) {
	ctx, finish := s.start(ctx, "compute_readiness", cid)
	defer func() { finish(err) }()

	c, err := s.load(ctx, cid)
	if err != nil {
		return nil, err
	}
	readiness := compliance.EvaluateReadiness(c.ReadinessInput())
	s.metrics.ObserveReadiness(readiness.Score)
	return &readiness, nil
}

// ComputeExposure estimates penalty exposure from the case's locked rule set.
func (s *Service) ComputeExposure(ctx context.Context, cid id.CaseID) (e *compliance.Exposure, err error) {
	ctx, finish := s.start(ctx, "compute_exposure", cid)
	defer func() { finish(err) }()

	c, err := s.load(ctx, cid)
	if err != nil {
		return nil, err
	}
	rs, err := s.rules.Get(ctx, c.RuleSetID)
	if err != nil {
		return nil, err
	}
	exposure := compliance.EstimateExposure(compliance.ExposureInput{
		Deposit:       c.DepositAmount,
		Penalties:     rs.Penalties,
		DaysRemaining: compliance.DaysRemaining(c.DueDate, requestcontext.Now(ctx)),
		Delivery:      c.DeliveryState(),
		Factors:       compliance.FactorsFrom(c.DeductionFacts()),
	}, nil)
	if len(exposure.Unquantified) > 0 {
		s.logger.InfoContext(ctx, "penalty clauses without a recognised multiplier",
			"case_id", cid.String(),
			"rule_set_id", rs.ID.String(),
			"count", len(exposure.Unquantified),
		)
	}
	return &exposure, nil
}

// TransitionStatus moves the case through its lifecycle. Readiness is
// recomputed from the stored case, never taken from the caller.
func (s *Service) TransitionStatus(ctx context.Context, cid id.CaseID, expected int64, req models.TransitionRequest) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "transition_status", cid)
	defer func() { finish(err) }()

	var from models.Status
	view, err = s.mutate(ctx, cid, expected, func(ctx context.Context, c *models.Case, now time.Time) ([]audit.Event, error) {
		var rules *jmodels.RuleSet
		var readiness compliance.Readiness
		if req.To == models.StatusSent && c.Status.CanTransitionTo(models.StatusSent) {
			rs, err := s.rules.Get(ctx, c.RuleSetID)
			if err != nil {
				return nil, err
			}
			rules = rs
			readiness = compliance.EvaluateReadiness(c.ReadinessInput())
		}
		prev, err := c.ApplyTransition(req, rules, readiness, now)
		if err != nil {
			return nil, err
		}
		from = prev
		meta := map[string]string{"from": string(prev), "to": string(c.Status)}
		switch c.Status {
		case models.StatusSent:
			meta["method"] = c.Delivery.Method
			if c.Delivery.TrackingNumber != "" {
				meta["tracking_number"] = c.Delivery.TrackingNumber
			}
		case models.StatusClosed:
			meta["reason"] = c.ClosedReason
		}
		return []audit.Event{{
			Action:      audit.StatusAction(string(c.Status)),
			Description: "Status changed from " + string(prev) + " to " + string(c.Status),
			Metadata:    meta,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementTransition(string(from), string(view.Status))
	s.logger.InfoContext(ctx, "case status changed",
		"case_id", cid.String(),
		"from", string(from),
		"to", string(view.Status),
	)
	return view, nil
}
