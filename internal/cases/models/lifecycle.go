package models

import (
	"slices"
	"strings"
	"time"

	"depositguard/internal/compliance"
	jmodels "depositguard/internal/jurisdiction/models"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
)

type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusPendingSend Status = "PENDING_SEND"
	StatusSent        Status = "SENT"
	StatusClosed      Status = "CLOSED"
)

// allowedTransitions is the complete lifecycle graph. PENDING_SEND -> ACTIVE
// reopens a case for edits; CLOSED is terminal.
var allowedTransitions = map[Status][]Status{
	StatusActive:      {StatusPendingSend, StatusClosed},
	StatusPendingSend: {StatusActive, StatusSent, StatusClosed},
	StatusSent:        {StatusClosed},
	StatusClosed:      {},
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := allowedTransitions[s]; !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", raw)
	}
	return s, nil
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(allowedTransitions[s], next)
}

// TransitionRequest carries the payload for a status change. Delivery fields
// apply to SENT, Reason to CLOSED.
type TransitionRequest struct {
	To                 Status
	Method             string
	TrackingNumber     string
	SentDate           *time.Time
	Address            *Address
	ProofAttachmentIDs []id.AttachmentID
	Reason             string
}

// ApplyTransition checks the guards for req and, if they pass, moves the case
// to req.To. On any error the case is left untouched. It returns the previous
// status.
//
// readiness must be freshly computed by the caller; it is consulted only for
// the SENT guard.
func (c *Case) ApplyTransition(req TransitionRequest, rules *jmodels.RuleSet, readiness compliance.Readiness, now time.Time) (Status, error) {
	from := c.Status
	if !from.CanTransitionTo(req.To) {
		return from, dErrors.Newf(dErrors.CodeInvalidTransition, "cannot move case from %s to %s", from, req.To)
	}

	switch req.To {
	case StatusSent:
		delivery, err := c.checkSend(req, rules, readiness, now)
		if err != nil {
			return from, err
		}
		c.Delivery = delivery
	case StatusClosed:
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			return from, dErrors.New(dErrors.CodeValidation, "a reason is required to close a case")
		}
		closedAt := now
		c.ClosedAt = &closedAt
		c.ClosedReason = reason
	}
	c.Status = req.To
	return from, nil
}

func (c *Case) checkSend(req TransitionRequest, rules *jmodels.RuleSet, readiness compliance.Readiness, now time.Time) (Delivery, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		return Delivery{}, dErrors.New(dErrors.CodeValidation, "delivery method is required")
	}
	if rules != nil && !rules.AllowsDelivery(method) {
		return Delivery{}, dErrors.Newf(dErrors.CodeValidation,
			"delivery method %s is not permitted; allowed: %s", method, strings.Join(rules.AllowedDeliveryMethods, ", "))
	}
	if req.SentDate == nil || req.SentDate.IsZero() {
		return Delivery{}, dErrors.New(dErrors.CodeValidation, "sent date is required")
	}
	if req.SentDate.After(now) {
		return Delivery{}, dErrors.New(dErrors.CodeValidation, "sent date cannot be in the future")
	}

	address := req.Address
	if address == nil || address.IsZero() {
		address = c.ForwardingAddress
	}
	if address == nil {
		return Delivery{}, dErrors.New(dErrors.CodeValidation, "a delivery address or forwarding address is required")
	}
	if err := address.Validate("delivery address"); err != nil {
		return Delivery{}, err
	}
	if missing := c.MissingAttachments(req.ProofAttachmentIDs); len(missing) > 0 {
		return Delivery{}, dErrors.Newf(dErrors.CodeValidation, "proof attachment %s does not belong to this case", missing[0])
	}
	if !readiness.Ready {
		labels := make([]string, len(readiness.Blockers))
		for i, b := range readiness.Blockers {
			labels[i] = b.Label
		}
		return Delivery{}, dErrors.Newf(dErrors.CodeInvalidTransition,
			"case is not ready to send: %s", strings.Join(labels, "; "))
	}

	sent := *req.SentDate
	addr := *address
	return Delivery{
		Method:             method,
		TrackingNumber:     strings.TrimSpace(req.TrackingNumber),
		SentDate:           &sent,
		Address:            &addr,
		ProofAttachmentIDs: slices.Clone(req.ProofAttachmentIDs),
	}, nil
}

// DeliveryState classifies the return for penalty estimation.
func (c *Case) DeliveryState() compliance.DeliveryState {
	if c.Delivery.SentDate == nil {
		return compliance.NotSent
	}
	if compliance.DateOnly(*c.Delivery.SentDate).After(c.DueDate) {
		return compliance.SentLate
	}
	return compliance.SentOnTime
}
