package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"depositguard/internal/compliance"
	jmodels "depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusActive, StatusPendingSend, StatusSent, StatusClosed}
	allowed := map[[2]Status]bool{
		{StatusActive, StatusPendingSend}: true,
		{StatusActive, StatusClosed}:      true,
		{StatusPendingSend, StatusActive}: true,
		{StatusPendingSend, StatusSent}:   true,
		{StatusPendingSend, StatusClosed}: true,
		{StatusSent, StatusClosed}:        true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

type LifecycleSuite struct {
	suite.Suite
	now     time.Time
	rules   *jmodels.RuleSet
	ready   compliance.Readiness
	blocked compliance.Readiness
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s.rules = &jmodels.RuleSet{AllowedDeliveryMethods: []string{"FIRST_CLASS_MAIL", "PERSONAL_DELIVERY"}}
	s.ready = compliance.Readiness{Ready: true}
	s.blocked = compliance.Readiness{Ready: false, Blockers: []compliance.Check{{Label: "Notice letter generated", Blocking: true}}}
}

func (s *LifecycleSuite) newCase(status Status) *Case {
	return &Case{
		ID:                id.CaseID(uuid.New()),
		Status:            status,
		DueDate:           time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC),
		ForwardingAddress: &Address{Line1: "1 Main St", City: "Oakland", State: "CA", PostalCode: "94601"},
		Attachments:       []Attachment{{ID: id.AttachmentID(uuid.New()), FileName: "receipt.pdf"}},
	}
}

func (s *LifecycleSuite) sendRequest(c *Case) TransitionRequest {
	sent := s.now.Add(-time.Hour)
	return TransitionRequest{
		To:                 StatusSent,
		Method:             "first_class_mail",
		TrackingNumber:     " 9400 1000 ",
		SentDate:           &sent,
		ProofAttachmentIDs: []id.AttachmentID{c.Attachments[0].ID},
	}
}

func (s *LifecycleSuite) TestSendGuards() {
	s.Run("valid send records delivery", func() {
		c := s.newCase(StatusPendingSend)
		from, err := c.ApplyTransition(s.sendRequest(c), s.rules, s.ready, s.now)
		s.Require().NoError(err)
		s.Equal(StatusPendingSend, from)
		s.Equal(StatusSent, c.Status)
		s.Equal("FIRST_CLASS_MAIL", c.Delivery.Method)
		s.Equal("9400 1000", c.Delivery.TrackingNumber)
		s.Equal("Oakland", c.Delivery.Address.City, "falls back to forwarding address")
		s.Equal(compliance.SentOnTime, c.DeliveryState())
	})

	s.Run("method outside allowed list", func() {
		c := s.newCase(StatusPendingSend)
		req := s.sendRequest(c)
		req.Method = "EMAIL"
		_, err := c.ApplyTransition(req, s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(StatusPendingSend, c.Status)
	})

	s.Run("empty allowed list is unrestricted", func() {
		c := s.newCase(StatusPendingSend)
		req := s.sendRequest(c)
		req.Method = "EMAIL"
		_, err := c.ApplyTransition(req, &jmodels.RuleSet{}, s.ready, s.now)
		s.NoError(err)
	})

	s.Run("missing sent date", func() {
		c := s.newCase(StatusPendingSend)
		req := s.sendRequest(c)
		req.SentDate = nil
		_, err := c.ApplyTransition(req, s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("no address at all", func() {
		c := s.newCase(StatusPendingSend)
		c.ForwardingAddress = nil
		_, err := c.ApplyTransition(s.sendRequest(c), s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("proof attachment from elsewhere", func() {
		c := s.newCase(StatusPendingSend)
		req := s.sendRequest(c)
		req.ProofAttachmentIDs = []id.AttachmentID{id.AttachmentID(uuid.New())}
		_, err := c.ApplyTransition(req, s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("readiness blockers prevent sending", func() {
		c := s.newCase(StatusPendingSend)
		_, err := c.ApplyTransition(s.sendRequest(c), s.rules, s.blocked, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Contains(err.Error(), "Notice letter generated")
		s.Equal(StatusPendingSend, c.Status)
		s.Empty(c.Delivery.Method)
	})

	s.Run("cannot send straight from ACTIVE", func() {
		c := s.newCase(StatusActive)
		_, err := c.ApplyTransition(s.sendRequest(c), s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *LifecycleSuite) TestClose() {
	for _, from := range []Status{StatusActive, StatusPendingSend, StatusSent} {
		s.Run("from "+string(from), func() {
			c := s.newCase(from)
			_, err := c.ApplyTransition(TransitionRequest{To: StatusClosed, Reason: "Tenant settled"}, s.rules, s.blocked, s.now)
			s.Require().NoError(err)
			s.Equal(StatusClosed, c.Status)
			s.Require().NotNil(c.ClosedAt)
			s.Equal(s.now, *c.ClosedAt)
			s.True(dErrors.HasCode(c.EnsureEditable(), dErrors.CodeInvalidTransition))
		})
	}

	s.Run("requires a reason", func() {
		c := s.newCase(StatusActive)
		_, err := c.ApplyTransition(TransitionRequest{To: StatusClosed, Reason: "  "}, s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Nil(c.ClosedAt)
	})

	s.Run("closed is terminal", func() {
		c := s.newCase(StatusClosed)
		_, err := c.ApplyTransition(TransitionRequest{To: StatusActive}, s.rules, s.ready, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *LifecycleSuite) TestSentToActiveAlwaysFails() {
	c := s.newCase(StatusSent)
	_, err := c.ApplyTransition(TransitionRequest{To: StatusActive}, s.rules, s.ready, s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	s.Equal(StatusSent, c.Status)
}

func TestDeliveryState_Late(t *testing.T) {
	sent := time.Date(2026, 1, 23, 9, 0, 0, 0, time.UTC)
	c := &Case{DueDate: time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC), Delivery: Delivery{SentDate: &sent}}
	assert.Equal(t, compliance.SentLate, c.DeliveryState())

	onDue := time.Date(2026, 1, 22, 18, 0, 0, 0, time.UTC)
	c.Delivery.SentDate = &onDue
	assert.Equal(t, compliance.SentOnTime, c.DeliveryState())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("pending_send")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingSend, st)

	_, err = ParseStatus("ARCHIVED")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
