package audit

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	id "depositguard/pkg/domain"
)

// Action is the fixed vocabulary of audited case changes.
type Action string

const (
	ActionCaseCreated              Action = "case_created"
	ActionDeductionAdded           Action = "deduction_added"
	ActionDeductionUpdated         Action = "deduction_updated"
	ActionDeductionDeleted         Action = "deduction_deleted"
	ActionDeductionWordingAccepted Action = "deduction_wording_accepted"
	ActionChecklistItemUpdated     Action = "checklist_item_updated"
	ActionDocumentGenerated        Action = "document_generated"
	ActionAttachmentAdded          Action = "attachment_added"
	ActionMoveOutDateUpdated       Action = "move_out_date_updated"
	ActionForwardingAddressUpdated Action = "forwarding_address_updated"
)

// StatusAction is the action recorded when a case enters state, e.g.
// "status_sent".
func StatusAction(state string) Action {
	return Action("status_" + strings.ToLower(state))
}

// Event is one immutable audit entry. Seq is assigned by the store on insert
// and breaks timestamp ties in insertion order.
type Event struct {
	ID          uuid.UUID         `json:"id"`
	CaseID      id.CaseID         `json:"case_id"`
	Seq         int64             `json:"seq"`
	Action      Action            `json:"action"`
	Description string            `json:"description"`
	ActorID     *id.UserID        `json:"actor_id,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Sort orders events by timestamp, then insertion sequence.
func Sort(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].Seq < events[j].Seq
	})
}
