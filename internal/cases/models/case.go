package models

import (
	"slices"
	"strings"
	"time"

	"depositguard/internal/compliance"
	id "depositguard/pkg/domain"
	dErrors "depositguard/pkg/domain-errors"
	"depositguard/pkg/money"
)

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Line1) == "" && strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" && strings.TrimSpace(a.PostalCode) == ""
}

// Validate requires the fields a mailing address cannot do without.
func (a Address) Validate(label string) error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.State) == "" {
		return dErrors.Newf(dErrors.CodeValidation, "%s requires line1, city and state", label)
	}
	return nil
}

type Tenant struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Delivery records how the deposit return was sent.
type Delivery struct {
	Method             string            `json:"method,omitempty"`
	TrackingNumber     string            `json:"tracking_number,omitempty"`
	SentDate           *time.Time        `json:"sent_date,omitempty"`
	Address            *Address          `json:"address,omitempty"`
	ProofAttachmentIDs []id.AttachmentID `json:"proof_attachment_ids"`
}

// Case is the aggregate root of one move-out: the locked rule set, the money,
// the deductions and everything produced on the way to returning the deposit.
//
// Invariants:
//   - RuleSetID never changes after creation
//   - DueDate only changes while Status is ACTIVE
//   - a CLOSED case is frozen
//   - Version increases by one on every persisted mutation
//   - ContentVersion is the Version at which rendered content last changed;
//     a document with a lower SourceVersion is stale
type Case struct {
	ID                id.CaseID         `json:"id"`
	OwnerID           id.UserID         `json:"owner_id"`
	PropertyID        id.PropertyID     `json:"property_id"`
	PropertyAddress   Address           `json:"property_address"`
	Tenants           []Tenant          `json:"tenants"`
	LeaseStart        time.Time         `json:"lease_start"`
	LeaseEnd          time.Time         `json:"lease_end"`
	MoveOutDate       time.Time         `json:"move_out_date"`
	DepositAmount     money.Amount      `json:"deposit_amount"`
	DepositInterest   money.Amount      `json:"deposit_interest"`
	JurisdictionID    id.JurisdictionID `json:"jurisdiction_id"`
	RuleSetID         id.RuleSetID      `json:"rule_set_id"`
	DueDate           time.Time         `json:"due_date"`
	Status            Status            `json:"status"`
	ForwardingAddress *Address          `json:"forwarding_address,omitempty"`
	Delivery          Delivery          `json:"delivery"`
	ClosedAt          *time.Time        `json:"closed_at,omitempty"`
	ClosedReason      string            `json:"closed_reason,omitempty"`
	Deductions        []Deduction       `json:"deductions"`
	Checklist         []ChecklistItem   `json:"checklist"`
	Documents         []Document        `json:"documents"`
	Attachments       []Attachment      `json:"attachments"`
	Version           int64             `json:"version"`
	ContentVersion    int64             `json:"content_version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// EnsureEditable rejects edits to a closed case.
func (c *Case) EnsureEditable() error {
	if c.Status == StatusClosed {
		return dErrors.New(dErrors.CodeInvalidTransition, "case is closed and can no longer be edited")
	}
	return nil
}

func (c *Case) FindDeduction(did id.DeductionID) (*Deduction, bool) {
	for i := range c.Deductions {
		if c.Deductions[i].ID == did {
			return &c.Deductions[i], true
		}
	}
	return nil, false
}

func (c *Case) RemoveDeduction(did id.DeductionID) (Deduction, bool) {
	for i, d := range c.Deductions {
		if d.ID == did {
			c.Deductions = slices.Delete(c.Deductions, i, i+1)
			return d, true
		}
	}
	return Deduction{}, false
}

func (c *Case) FindChecklistItem(iid id.ChecklistItemID) (*ChecklistItem, bool) {
	for i := range c.Checklist {
		if c.Checklist[i].ID == iid {
			return &c.Checklist[i], true
		}
	}
	return nil, false
}

func (c *Case) HasAttachment(aid id.AttachmentID) bool {
	return slices.ContainsFunc(c.Attachments, func(a Attachment) bool { return a.ID == aid })
}

// MissingAttachments returns the ids in ids that are not attached to the case.
func (c *Case) MissingAttachments(ids []id.AttachmentID) []id.AttachmentID {
	var missing []id.AttachmentID
	for _, aid := range ids {
		if !c.HasAttachment(aid) {
			missing = append(missing, aid)
		}
	}
	return missing
}

// MarkContentChanged records that the pending save alters what the notice
// letter and itemized statement render. Save bumps Version by one, so the
// content version is the version about to be written.
func (c *Case) MarkContentChanged() {
	c.ContentVersion = c.Version + 1
}

// DocumentCurrent reports whether the latest document of docType exists and
// was generated from the current content.
func (c *Case) DocumentCurrent(docType DocumentType) (generated, current bool) {
	doc, ok := c.LatestDocument(docType)
	if !ok {
		return false, false
	}
	return true, doc.SourceVersion >= c.ContentVersion
}

// LatestDocument returns the most recently generated document of docType.
func (c *Case) LatestDocument(docType DocumentType) (*Document, bool) {
	var latest *Document
	for i := range c.Documents {
		d := &c.Documents[i]
		if d.DocType != docType {
			continue
		}
		if latest == nil || d.SourceVersion > latest.SourceVersion {
			latest = d
		}
	}
	return latest, latest != nil
}

// TotalDeductions sums every deduction amount.
func (c *Case) TotalDeductions() money.Amount {
	total := money.Zero
	for _, d := range c.Deductions {
		total = total.Add(d.Amount)
	}
	return total.Round()
}

// DeductionFacts maps deductions to risk-scoring inputs.
func (c *Case) DeductionFacts() []compliance.DeductionFacts {
	out := make([]compliance.DeductionFacts, len(c.Deductions))
	for i, d := range c.Deductions {
		out[i] = d.Facts()
	}
	return out
}

// Clone deep-copies the aggregate so stores never share slices with callers.
func (c *Case) Clone() *Case {
	out := *c
	out.Tenants = slices.Clone(c.Tenants)
	out.Deductions = make([]Deduction, len(c.Deductions))
	for i, d := range c.Deductions {
		out.Deductions[i] = d.clone()
	}
	out.Checklist = slices.Clone(c.Checklist)
	out.Documents = slices.Clone(c.Documents)
	out.Attachments = slices.Clone(c.Attachments)
	out.Delivery.ProofAttachmentIDs = slices.Clone(c.Delivery.ProofAttachmentIDs)
	if c.ForwardingAddress != nil {
		a := *c.ForwardingAddress
		out.ForwardingAddress = &a
	}
	if c.Delivery.Address != nil {
		a := *c.Delivery.Address
		out.Delivery.Address = &a
	}
	if c.Delivery.SentDate != nil {
		t := *c.Delivery.SentDate
		out.Delivery.SentDate = &t
	}
	if c.ClosedAt != nil {
		t := *c.ClosedAt
		out.ClosedAt = &t
	}
	return &out
}

// ReadinessInput collects the facts the readiness gate evaluates. A document
// check passes only when the latest document of that type was generated from
// the current content.
func (c *Case) ReadinessInput() compliance.ReadinessInput {
	in := compliance.ReadinessInput{
		Checklist:  make([]compliance.ChecklistFact, len(c.Checklist)),
		Deductions: make([]compliance.EvidenceFact, len(c.Deductions)),
	}
	for i, item := range c.Checklist {
		in.Checklist[i] = compliance.ChecklistFact{Label: item.Label, Completed: item.Completed, BlocksExport: item.BlocksExport}
	}
	for i, d := range c.Deductions {
		in.Deductions[i] = compliance.EvidenceFact{Description: d.Description, HasEvidence: d.HasEvidence()}
	}
	var current bool
	in.HasNoticeLetter, current = c.DocumentCurrent(DocNoticeLetter)
	in.NoticeLetterStale = in.HasNoticeLetter && !current
	in.HasItemizedStatement, current = c.DocumentCurrent(DocItemizedStatement)
	in.ItemizedStatementStale = in.HasItemizedStatement && !current
	return in
}
