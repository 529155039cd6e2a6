package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"depositguard/internal/jurisdiction/cache"
	"depositguard/internal/jurisdiction/models"
	"depositguard/internal/jurisdiction/store"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	service *Service
	now     time.Time
	ca      models.Jurisdiction
	sf      models.Jurisdiction
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = store.NewInMemory()
	s.service = New(s.store,
		WithClock(func() time.Time { return s.now }),
		WithCache(cache.NewMemory(time.Minute)),
	)

	city := "San Francisco"
	s.ca = models.Jurisdiction{ID: id.JurisdictionID(uuid.New()), State: "California", StateCode: "CA", Coverage: models.CoverageFull}
	s.sf = models.Jurisdiction{ID: id.JurisdictionID(uuid.New()), State: "California", StateCode: "CA", City: &city, Coverage: models.CoverageFull}
	s.Require().NoError(s.store.SaveJurisdiction(s.ctx, &s.ca))
	s.Require().NoError(s.store.SaveJurisdiction(s.ctx, &s.sf))

	s.insert(s.ca.ID, "1.0.0", "2025-01-01", 21)
	s.insert(s.sf.ID, "1.0.0", "2025-01-01", 21)
}

func (s *ServiceSuite) insert(jid id.JurisdictionID, version, effective string, days int) *models.RuleSet {
	eff, err := time.Parse(time.DateOnly, effective)
	s.Require().NoError(err)
	rs := &models.RuleSet{
		ID:                 id.RuleSetID(uuid.New()),
		JurisdictionID:     jid,
		Version:            version,
		EffectiveDate:      eff,
		ReturnDeadlineDays: days,
		Interest:           models.InterestRule{Required: true, Rate: decimal.RequireFromString("0.05")},
		Citations:          []models.Citation{{Title: "Civil Code", Code: "1950.5"}},
	}
	s.Require().NoError(s.store.InsertRuleSet(s.ctx, rs))
	return rs
}

// =============================================================================
// Resolve
// =============================================================================

func (s *ServiceSuite) TestResolve() {
	s.Run("exact city match keeps stored coverage", func() {
		res, err := s.service.Resolve(s.ctx, "california", "san francisco")
		s.Require().NoError(err)
		s.Equal(models.CoverageFull, res.Coverage)
		s.Equal(s.sf.ID, res.Jurisdiction.ID)
		s.Empty(res.Message)
		s.Len(res.Citations, 1)
	})

	s.Run("unknown city falls back to state as STATE_ONLY", func() {
		res, err := s.service.Resolve(s.ctx, "CA", "Fresno")
		s.Require().NoError(err)
		s.Equal(models.CoverageStateOnly, res.Coverage)
		s.Nil(res.Jurisdiction.City)
		s.Equal(StateOnlyMessage, res.Message)
	})

	s.Run("no city resolves the state record directly", func() {
		res, err := s.service.Resolve(s.ctx, "CA", "")
		s.Require().NoError(err)
		s.Equal(models.CoverageFull, res.Coverage)
		s.Empty(res.Message)
	})

	s.Run("unseeded state is not found", func() {
		_, err := s.service.Resolve(s.ctx, "Oregon", "Portland")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown state is a validation error", func() {
		_, err := s.service.Resolve(s.ctx, "Narnia", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rule set without a deadline is an upstream failure", func() {
		city := "Oakland"
		oak := models.Jurisdiction{ID: id.JurisdictionID(uuid.New()), State: "California", StateCode: "CA", City: &city, Coverage: models.CoveragePartial}
		s.Require().NoError(s.store.SaveJurisdiction(s.ctx, &oak))
		s.insert(oak.ID, "1.0.0", "2025-01-01", 0)

		_, err := s.service.Resolve(s.ctx, "CA", "Oakland")
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	})
}

// =============================================================================
// Current / Publish / Amend / Lock
// =============================================================================

func (s *ServiceSuite) TestCurrent() {
	s.Run("ignores future effective dates", func() {
		s.insert(s.ca.ID, "2.0.0", "2027-01-01", 30)
		rs, err := s.service.Current(s.ctx, s.ca.ID)
		s.Require().NoError(err)
		s.Equal("1.0.0", rs.Version)
	})

	s.Run("same effective date orders by semantic version", func() {
		s.insert(s.ca.ID, "1.10.0", "2025-06-01", 25)
		s.insert(s.ca.ID, "1.9.0", "2025-06-01", 24)
		rs, err := s.service.Current(s.ctx, s.ca.ID)
		s.Require().NoError(err)
		s.Equal("1.10.0", rs.Version)
	})

	s.Run("missing optional arrays normalize to empty", func() {
		rs, err := s.service.Current(s.ctx, s.sf.ID)
		s.Require().NoError(err)
		s.NotNil(rs.Penalties)
		s.Empty(rs.Penalties)
	})
}

func (s *ServiceSuite) TestAmendIsCopyOnWrite() {
	base, err := s.service.Current(s.ctx, s.sf.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Lock(s.ctx, base.ID))

	amended, err := s.service.Amend(s.ctx, base.ID, "1.1.0", func(rs *models.RuleSet) {
		rs.ReturnDeadlineDays = 30
	})
	s.Require().NoError(err)
	s.NotEqual(base.ID, amended.ID)
	s.Nil(amended.LockedAt)

	original, err := s.service.Get(s.ctx, base.ID)
	s.Require().NoError(err)
	s.Equal(21, original.ReturnDeadlineDays)
	s.NotNil(original.LockedAt)

	current, err := s.service.Current(s.ctx, s.sf.ID)
	s.Require().NoError(err)
	s.Equal("1.1.0", current.Version)

	s.Run("version must increase", func() {
		_, err := s.service.Amend(s.ctx, base.ID, "0.9.0", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("republishing a version conflicts", func() {
		_, err := s.service.Amend(s.ctx, base.ID, "1.1.0", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestPublishValidation() {
	draft := models.RuleSet{JurisdictionID: s.ca.ID, Version: "not-a-version", ReturnDeadlineDays: 21, EffectiveDate: s.now}
	_, err := s.service.Publish(s.ctx, draft)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	draft.Version = "3.0.0"
	draft.ReturnDeadlineDays = 0
	_, err = s.service.Publish(s.ctx, draft)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	draft.ReturnDeadlineDays = 21
	draft.JurisdictionID = id.JurisdictionID(uuid.New())
	_, err = s.service.Publish(s.ctx, draft)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestPublishUpperCasesDeliveryMethods() {
	draft := models.RuleSet{
		JurisdictionID:         s.ca.ID,
		Version:                "3.0.0",
		ReturnDeadlineDays:     21,
		EffectiveDate:          s.now,
		AllowedDeliveryMethods: []string{"first_class_mail"},
	}
	rs, err := s.service.Publish(s.ctx, draft)
	s.Require().NoError(err)
	s.Equal([]string{"FIRST_CLASS_MAIL"}, rs.AllowedDeliveryMethods)
	s.True(rs.AllowsDelivery("first_class_mail"))
	s.Equal([]string{"first_class_mail"}, draft.AllowedDeliveryMethods, "draft is not modified")
}

func (s *ServiceSuite) TestLockUnknownRuleSet() {
	err := s.service.Lock(s.ctx, id.RuleSetID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
