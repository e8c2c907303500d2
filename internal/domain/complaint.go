package domain

import "time"

// ComplaintStatus is a label from the configured status set.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in-progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

// DefaultComplaintStatuses is the label set used when none is configured.
var DefaultComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

// Complaint is a student-submitted grievance.
//
// StudentName and StudentEmail are a snapshot taken at creation and are not
// kept in sync with the owning user.
type Complaint struct {
	ID           string
	StudentID    string
	StudentName  string
	StudentEmail string
	Category     string
	Description  string
	Status       ComplaintStatus
	AssignedTo   *string
	Remarks      *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ComplaintFilter narrows admin listings. Nil fields are unconstrained.
type ComplaintFilter struct {
	Status   *ComplaintStatus
	Category *string
}

// Matches reports whether c satisfies every set field of f.
func (f ComplaintFilter) Matches(c *Complaint) bool {
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	return true
}

// ComplaintPatch holds the administrator-mutable fields. Nil means untouched.
type ComplaintPatch struct {
	Status     *ComplaintStatus
	AssignedTo *string
	Remarks    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ComplaintPatch) IsEmpty() bool {
	return p.Status == nil && p.AssignedTo == nil && p.Remarks == nil
}

// Apply overwrites the provided fields on c.
func (p ComplaintPatch) Apply(c *Complaint) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.AssignedTo != nil {
		v := *p.AssignedTo
		c.AssignedTo = &v
	}
	if p.Remarks != nil {
		v := *p.Remarks
		c.Remarks = &v
	}
}
