package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"depositguard/internal/audit"
	"depositguard/internal/cases/models"
	"depositguard/internal/compliance"
	jmodels "depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
	"depositguard/pkg/requestcontext"
)

type CreateCaseInput struct {
	PropertyID        id.PropertyID
	PropertyAddress   models.Address
	Tenants           []models.Tenant
	LeaseStart        time.Time
	LeaseEnd          time.Time
	MoveOutDate       time.Time
	DepositAmount     money.Amount
	ForwardingAddress *models.Address
}

func (in *CreateCaseInput) normalize() error {
	if err := in.PropertyAddress.Validate("property address"); err != nil {
		return err
	}
	if in.LeaseStart.IsZero() || in.LeaseEnd.IsZero() || in.MoveOutDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "lease start, lease end and move-out date are required")
	}
	in.LeaseStart = compliance.DateOnly(in.LeaseStart)
	in.LeaseEnd = compliance.DateOnly(in.LeaseEnd)
	in.MoveOutDate = compliance.DateOnly(in.MoveOutDate)
	if in.LeaseEnd.Before(in.LeaseStart) {
		return dErrors.New(dErrors.CodeValidation, "lease end must not be before lease start")
	}
	if in.MoveOutDate.Before(in.LeaseStart) {
		return dErrors.New(dErrors.CodeValidation, "move-out date must not be before lease start")
	}
	if !in.DepositAmount.GreaterThan(money.Zero) {
		return dErrors.New(dErrors.CodeValidation, "deposit amount must be positive")
	}
	tenants := make([]models.Tenant, 0, len(in.Tenants))
	for i, t := range in.Tenants {
		t.Name = strings.TrimSpace(t.Name)
		t.Email = strings.TrimSpace(t.Email)
		if t.Name == "" {
			return dErrors.Newf(dErrors.CodeValidation, "tenant %d requires a name", i+1)
		}
		tenants = append(tenants, t)
	}
	in.Tenants = tenants
	if in.ForwardingAddress != nil {
		if err := in.ForwardingAddress.Validate("forwarding address"); err != nil {
			return err
		}
	}
	if uuid.UUID(in.PropertyID) == uuid.Nil {
		in.PropertyID = id.PropertyID(uuid.New())
	}
	return nil
}

// CreateCase opens a case for a move-out: it resolves the jurisdiction from
// the property address, locks the rule set currently in force, computes the
// due date and interest and seeds the default checklist.
func (s *Service) CreateCase(ctx context.Context, in CreateCaseInput) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "create_case", id.CaseID{})
	defer func() { finish(err) }()

	owner, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.rules.Resolve(ctx, in.PropertyAddress.State, in.PropertyAddress.City)
		if err != nil {
			return err
		}
		rs := &res.RuleSet
		if err := s.rules.Lock(ctx, rs.ID); err != nil {
			return err
		}

		now := requestcontext.Now(ctx).UTC()
		c := &models.Case{
			ID:                id.CaseID(uuid.New()),
			OwnerID:           owner,
			PropertyID:        in.PropertyID,
			PropertyAddress:   in.PropertyAddress,
			Tenants:           in.Tenants,
			LeaseStart:        in.LeaseStart,
			LeaseEnd:          in.LeaseEnd,
			MoveOutDate:       in.MoveOutDate,
			DepositAmount:     in.DepositAmount.Round(),
			JurisdictionID:    res.Jurisdiction.ID,
			RuleSetID:         rs.ID,
			Status:            models.StatusActive,
			ForwardingAddress: in.ForwardingAddress,
			Deductions:        []models.Deduction{},
			Checklist:         models.DefaultChecklist(),
			Documents:         []models.Document{},
			Attachments:       []models.Attachment{},
			Version:           1,
			ContentVersion:    1,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		applySchedule(c, rs)

		if err := s.store.Create(ctx, c); err != nil {
			return translate(err, "case not found")
		}
		err = s.record(ctx, c.ID, now, audit.Event{
			Action:      audit.ActionCaseCreated,
			Description: "Case created under " + describeRuleSet(res),
			Metadata: map[string]string{
				"jurisdiction_id":  res.Jurisdiction.ID.String(),
				"rule_set_id":      rs.ID.String(),
				"rule_set_version": rs.Version,
				"coverage":         string(res.Coverage),
			},
		})
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "case created",
			"case_id", c.ID.String(),
			"rule_set_id", rs.ID.String(),
			"coverage", string(res.Coverage),
		)
		view = models.NewCaseView(c, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// applySchedule derives the due date and interest from the move-out date.
func applySchedule(c *models.Case, rs *jmodels.RuleSet) {
	c.DueDate = compliance.DueDate(c.MoveOutDate, rs.ReturnDeadlineDays)
	c.DepositInterest = compliance.Interest(c.DepositAmount, rs.Interest, compliance.HeldDays(c.LeaseStart, c.MoveOutDate))
}

func describeRuleSet(res *jmodels.Resolution) string {
	place := res.Jurisdiction.State
	if res.Jurisdiction.City != nil {
		place = *res.Jurisdiction.City + ", " + res.Jurisdiction.StateCode
	}
	return place + " rules v" + res.RuleSet.Version
}

func (s *Service) GetCase(ctx context.Context, cid id.CaseID) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "get_case", cid)
	defer func() { finish(err) }()

	c, err := s.load(ctx, cid)
	if err != nil {
		return nil, err
	}
	return models.NewCaseView(c, requestcontext.Now(ctx)), nil
}

// ListCases returns the caller's cases, newest first.
func (s *Service) ListCases(ctx context.Context) (views []*models.CaseView, err error) {
	ctx, finish := s.start(ctx, "list_cases", id.CaseID{})
	defer func() { finish(err) }()

	owner, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, translate(err, "case not found")
	}
	now := requestcontext.Now(ctx)
	views = make([]*models.CaseView, len(list))
	for i, c := range list {
		views[i] = models.NewCaseView(c, now)
	}
	return views, nil
}

// UpdateMoveOutDate changes the move-out date and recomputes the due date
// and interest. The schedule is frozen once the case leaves ACTIVE.
func (s *Service) UpdateMoveOutDate(ctx context.Context, cid id.CaseID, expected int64, moveOut time.Time) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "update_move_out_date", cid)
	defer func() { finish(err) }()

	if moveOut.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "move-out date is required")
	}
	return s.mutate(ctx, cid, expected, func(ctx context.Context, c *models.Case, _ time.Time) ([]audit.Event, error) {
		if c.Status != models.StatusActive {
			return nil, dErrors.Newf(dErrors.CodeInvalidTransition,
				"move-out date is frozen once the case is %s", c.Status)
		}
		date := compliance.DateOnly(moveOut)
		if date.Before(c.LeaseStart) {
			return nil, dErrors.New(dErrors.CodeValidation, "move-out date must not be before lease start")
		}
		rs, err := s.rules.Get(ctx, c.RuleSetID)
		if err != nil {
			return nil, err
		}
		previous := c.MoveOutDate
		c.MoveOutDate = date
		applySchedule(c, rs)
		c.MarkContentChanged()
		return []audit.Event{{
			Action:      audit.ActionMoveOutDateUpdated,
			Description: "Move-out date changed from " + previous.Format(time.DateOnly) + " to " + date.Format(time.DateOnly),
			Metadata: map[string]string{
				"previous": previous.Format(time.DateOnly),
				"new":      date.Format(time.DateOnly),
				"due_date": c.DueDate.Format(time.DateOnly),
			},
		}}, nil
	})
}

// UpdateForwardingAddress sets the address the deposit return is mailed to.
func (s *Service) UpdateForwardingAddress(ctx context.Context, cid id.CaseID, expected int64, addr models.Address) (view *models.CaseView, err error) {
	ctx, finish := s.start(ctx, "update_forwarding_address", cid)
	defer func() { finish(err) }()

	if err := addr.Validate("forwarding address"); err != nil {
		return nil, err
	}
	return s.mutate(ctx, cid, expected, func(_ context.Context, c *models.Case, _ time.Time) ([]audit.Event, error) {
		if err := c.EnsureEditable(); err != nil {
			return nil, err
		}
		if c.Status == models.StatusSent {
			return nil, dErrors.New(dErrors.CodeInvalidTransition, "forwarding address cannot change after the deposit return was sent")
		}
		c.ForwardingAddress = &addr
		c.MarkContentChanged()
		return []audit.Event{{
			Action:      audit.ActionForwardingAddressUpdated,
			Description: "Forwarding address updated",
			Metadata:    map[string]string{"city": addr.City, "state": addr.State},
		}}, nil
	})
}

// ListAuditEvents returns the case's trail ordered by time then sequence.
func (s *Service) ListAuditEvents(ctx context.Context, cid id.CaseID) (events []audit.Event, err error) {
	ctx, finish := s.start(ctx, "list_audit_events", cid)
	defer func() { finish(err) }()

	if _, err := s.load(ctx, cid); err != nil {
		return nil, err
	}
	events, err = s.audit.List(ctx, cid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return events, nil
}
