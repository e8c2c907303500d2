package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateComplaintRequest payload. Absent fields are left unchanged.
type UpdateComplaintRequest struct {
	Status     *domain.ComplaintStatus `json:"status"`
	AssignedTo *string                 `json:"assignedTo"`
	Remarks    *string                 `json:"remarks"`
}

// UpdatableComplaintFields lists the keys accepted by UpdateComplaintRequest.
var UpdatableComplaintFields = map[string]struct{}{
	"status":     {},
	"assignedTo": {},
	"remarks":    {},
}

// ComplaintResponse is the wire form of a complaint.
type ComplaintResponse struct {
	ID           string                 `json:"id"`
	StudentID    string                 `json:"studentId"`
	StudentName  string                 `json:"studentName"`
	StudentEmail string                 `json:"studentEmail"`
	Category     string                 `json:"category"`
	Description  string                 `json:"description"`
	Status       domain.ComplaintStatus `json:"status"`
	AssignedTo   *string                `json:"assignedTo"`
	Remarks      *string                `json:"remarks"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:           c.ID,
		StudentID:    c.StudentID,
		StudentName:  c.StudentName,
		StudentEmail: c.StudentEmail,
		Category:     c.Category,
		Description:  c.Description,
		Status:       c.Status,
		AssignedTo:   c.AssignedTo,
		Remarks:      c.Remarks,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// NewComplaintList maps a slice, never returning nil so the JSON is [].
func NewComplaintList(complaints []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		out = append(out, NewComplaintResponse(&complaints[i]))
	}
	return out
}
