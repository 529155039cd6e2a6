// Package domain holds value types shared across modules.
//
// Typed IDs wrap uuid.UUID so a CaseID cannot be passed where a DeductionID is
// expected. Parse* functions are the only sanctioned way to build an ID from
// external input.
package domain

import (
	"github.com/google/uuid"

	dErrors "depositguard/pkg/domain-errors"
)

type (
	UserID          uuid.UUID
	PropertyID      uuid.UUID
	CaseID          uuid.UUID
	DeductionID     uuid.UUID
	ChecklistItemID uuid.UUID
	DocumentID      uuid.UUID
	AttachmentID    uuid.UUID
	JurisdictionID  uuid.UUID
	RuleSetID       uuid.UUID
)

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" is required")
	}
	if len(s) != 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseUUID(s, "property id")
	return PropertyID(u), err
}

func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case id")
	return CaseID(u), err
}

func ParseDeductionID(s string) (DeductionID, error) {
	u, err := parseUUID(s, "deduction id")
	return DeductionID(u), err
}

func ParseChecklistItemID(s string) (ChecklistItemID, error) {
	u, err := parseUUID(s, "checklist item id")
	return ChecklistItemID(u), err
}

func ParseAttachmentID(s string) (AttachmentID, error) {
	u, err := parseUUID(s, "attachment id")
	return AttachmentID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	return DocumentID(u), err
}

func ParseRuleSetID(s string) (RuleSetID, error) {
	u, err := parseUUID(s, "rule set id")
	return RuleSetID(u), err
}

func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) String() string      { return uuid.UUID(id).String() }
func (id CaseID) String() string          { return uuid.UUID(id).String() }
func (id CaseID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id DeductionID) String() string     { return uuid.UUID(id).String() }
func (id ChecklistItemID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string      { return uuid.UUID(id).String() }
func (id AttachmentID) String() string    { return uuid.UUID(id).String() }
func (id JurisdictionID) String() string  { return uuid.UUID(id).String() }
func (id RuleSetID) String() string       { return uuid.UUID(id).String() }
func (id RuleSetID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id CaseID) MarshalText() ([]byte, error)          { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)          { return []byte(id.String()), nil }
func (id PropertyID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id DeductionID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ChecklistItemID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id AttachmentID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id JurisdictionID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id RuleSetID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }

func (id *AttachmentID) UnmarshalText(b []byte) error {
	parsed, err := ParseAttachmentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PropertyID) UnmarshalText(b []byte) error {
	parsed, err := ParsePropertyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
