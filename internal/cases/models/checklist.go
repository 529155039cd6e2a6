package models

import (
	"time"

	"github.com/google/uuid"

	id "depositguard/pkg/domain"
)

// ChecklistItem is a task on the way to sending the deposit return. Only
// BlocksExport items gate the send.
type ChecklistItem struct {
	ID           id.ChecklistItemID `json:"id"`
	Label        string             `json:"label"`
	Completed    bool               `json:"completed"`
	BlocksExport bool               `json:"blocks_export"`
	SortOrder    int                `json:"sort_order"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

var defaultChecklist = []struct {
	label  string
	blocks bool
}{
	{"Complete the move-out inspection", true},
	{"Photograph the unit condition", true},
	{"Confirm the tenant's forwarding address", true},
	{"Review deductions for normal wear and tear", true},
	{"Collect receipts or estimates for each deduction", false},
	{"Record returned keys and access devices", false},
}

// DefaultChecklist returns the checklist every new case starts with.
func DefaultChecklist() []ChecklistItem {
	items := make([]ChecklistItem, len(defaultChecklist))
	for i, d := range defaultChecklist {
		items[i] = ChecklistItem{
			ID:           id.ChecklistItemID(uuid.New()),
			Label:        d.label,
			BlocksExport: d.blocks,
			SortOrder:    i + 1,
		}
	}
	return items
}
