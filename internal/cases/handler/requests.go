package handler

import (
	"strings"
	"time"

	"depositguard/internal/cases/models"
	"depositguard/internal/cases/service"
	"depositguard/internal/compliance"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
)

func parseDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s is required", field)
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

type CreateCaseRequest struct {
	PropertyID        *id.PropertyID  `json:"property_id,omitempty"`
	PropertyAddress   models.Address  `json:"property_address"`
	Tenants           []models.Tenant `json:"tenants"`
	LeaseStart        string          `json:"lease_start"`
	LeaseEnd          string          `json:"lease_end"`
	MoveOutDate       string          `json:"move_out_date"`
	DepositAmount     money.Amount    `json:"deposit_amount"`
	ForwardingAddress *models.Address `json:"forwarding_address,omitempty"`

	leaseStart, leaseEnd, moveOut time.Time
}

func (r *CreateCaseRequest) Validate() error {
	var err error
	if r.leaseStart, err = parseDate(r.LeaseStart, "lease_start"); err != nil {
		return err
	}
	if r.leaseEnd, err = parseDate(r.LeaseEnd, "lease_end"); err != nil {
		return err
	}
	if r.moveOut, err = parseDate(r.MoveOutDate, "move_out_date"); err != nil {
		return err
	}
	if r.ForwardingAddress != nil && r.ForwardingAddress.IsZero() {
		r.ForwardingAddress = nil
	}
	return nil
}

func (r *CreateCaseRequest) input() service.CreateCaseInput {
	in := service.CreateCaseInput{
		PropertyAddress:   r.PropertyAddress,
		Tenants:           r.Tenants,
		LeaseStart:        r.leaseStart,
		LeaseEnd:          r.leaseEnd,
		MoveOutDate:       r.moveOut,
		DepositAmount:     r.DepositAmount,
		ForwardingAddress: r.ForwardingAddress,
	}
	if r.PropertyID != nil {
		in.PropertyID = *r.PropertyID
	}
	return in
}

type MoveOutDateRequest struct {
	MoveOutDate string `json:"move_out_date"`

	moveOut time.Time
}

func (r *MoveOutDateRequest) Validate() error {
	var err error
	r.moveOut, err = parseDate(r.MoveOutDate, "move_out_date")
	return err
}

type AddressRequest struct {
	models.Address
}

func (r *AddressRequest) Validate() error {
	return r.Address.Validate("forwarding address")
}

// DeductionRequest replaces every editable field of a deduction.
type DeductionRequest struct {
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Amount        money.Amount      `json:"amount"`
	Notes         string            `json:"notes,omitempty"`
	AttachmentIDs []id.AttachmentID `json:"attachment_ids,omitempty"`
	RiskOverride  *string           `json:"risk_override,omitempty"`
	ItemAgeMonths *int              `json:"item_age_months,omitempty"`
	DamageType    string            `json:"damage_type,omitempty"`

	override *compliance.Level
}

func (r *DeductionRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if r.RiskOverride != nil && strings.TrimSpace(*r.RiskOverride) != "" {
		level, ok := compliance.ParseLevel(*r.RiskOverride)
		if !ok {
			return dErrors.Newf(dErrors.CodeValidation, "unknown risk level %q", *r.RiskOverride)
		}
		r.override = &level
	}
	return nil
}

func (r *DeductionRequest) input() service.DeductionInput {
	return service.DeductionInput{
		Description:   r.Description,
		Category:      r.Category,
		Amount:        r.Amount,
		Notes:         r.Notes,
		AttachmentIDs: r.AttachmentIDs,
		RiskOverride:  r.override,
		ItemAgeMonths: r.ItemAgeMonths,
		DamageType:    r.DamageType,
	}
}

type AcceptWordingRequest struct {
	Description string `json:"description"`
}

func (r *AcceptWordingRequest) Validate() error {
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	return nil
}

type ChecklistItemRequest struct {
	Completed *bool `json:"completed"`
}

func (r *ChecklistItemRequest) Validate() error {
	if r.Completed == nil {
		return dErrors.New(dErrors.CodeValidation, "completed is required")
	}
	return nil
}

type GenerateDocumentRequest struct {
	DocType string `json:"doc_type"`

	docType models.DocumentType
}

func (r *GenerateDocumentRequest) Validate() error {
	var err error
	r.docType, err = models.ParseDocumentType(r.DocType)
	return err
}

// TransitionRequest moves a case to another status. Delivery fields apply
// to SENT, Reason to CLOSED.
type TransitionRequest struct {
	To                 string            `json:"to"`
	Method             string            `json:"method,omitempty"`
	TrackingNumber     string            `json:"tracking_number,omitempty"`
	SentDate           string            `json:"sent_date,omitempty"`
	Address            *models.Address   `json:"address,omitempty"`
	ProofAttachmentIDs []id.AttachmentID `json:"proof_attachment_ids,omitempty"`
	Reason             string            `json:"reason,omitempty"`

	to       models.Status
	sentDate *time.Time
}

func (r *TransitionRequest) Validate() error {
	var err error
	if r.to, err = models.ParseStatus(r.To); err != nil {
		return err
	}
	if strings.TrimSpace(r.SentDate) != "" {
		t, err := parseDate(r.SentDate, "sent_date")
		if err != nil {
			return err
		}
		r.sentDate = &t
	}
	if r.Address != nil && r.Address.IsZero() {
		r.Address = nil
	}
	return nil
}

func (r *TransitionRequest) transition() models.TransitionRequest {
	return models.TransitionRequest{
		To:                 r.to,
		Method:             r.Method,
		TrackingNumber:     r.TrackingNumber,
		SentDate:           r.sentDate,
		Address:            r.Address,
		ProofAttachmentIDs: r.ProofAttachmentIDs,
		Reason:             r.Reason,
	}
}
