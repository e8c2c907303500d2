package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated EventType = "complaint_created"
	EventComplaintUpdated EventType = "complaint_updated"
	EventComplaintDeleted EventType = "complaint_deleted"
)

// Event represents a complaint lifecycle change emitted after a successful write.
type Event struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	ComplaintID string          `json:"complaint_id"`
	Actor       domain.Identity `json:"actor"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     interface{}     `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Category string                 `json:"category"`
	Status   domain.ComplaintStatus `json:"status"`
}

// ComplaintUpdatedPayload payload. Changed lists the field names provided.
type ComplaintUpdatedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Changed   []string               `json:"changed"`
}

// ComplaintDeletedPayload payload.
type ComplaintDeletedPayload struct {
	Status domain.ComplaintStatus `json:"status"`
}
