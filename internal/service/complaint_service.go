package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// ComplaintService enforces who may change which complaint fields.
type ComplaintService struct {
	complaints    repository.ComplaintRepository
	users         repository.UserRepository
	statuses      map[domain.ComplaintStatus]struct{}
	statusOrder   []domain.ComplaintStatus
	defaultStatus domain.ComplaintStatus
	policy        StatusPolicy
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	UserRepo      repository.UserRepository
	Policy        StatusPolicy
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// ComplaintCreateInput describes complaint creation payload.
type ComplaintCreateInput struct {
	Category    string
	Description string
}

// ComplaintUpdateInput holds the only fields an administrator may change.
// Nil fields are left untouched.
type ComplaintUpdateInput struct {
	Status     *domain.ComplaintStatus
	AssignedTo *string
	Remarks    *string
}

// NewComplaintService constructs the service.
func NewComplaintService(cfg config.ComplaintConfig, deps ComplaintDependencies) *ComplaintService {
	statuses := make(map[domain.ComplaintStatus]struct{}, len(cfg.Statuses))
	for _, s := range cfg.Statuses {
		statuses[s] = struct{}{}
	}
	policy := deps.Policy
	if policy == nil {
		policy = AnyTransition{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints:    deps.ComplaintRepo,
		users:         deps.UserRepo,
		statuses:      statuses,
		statusOrder:   append([]domain.ComplaintStatus(nil), cfg.Statuses...),
		defaultStatus: cfg.DefaultStatus,
		policy:        policy,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// Create files a complaint owned by the caller.
func (s *ComplaintService) Create(ctx context.Context, caller domain.Identity, input ComplaintCreateInput) (*domain.Complaint, error) {
	if err := auth.Authorize(&caller, auth.AnyAuthenticated); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if category == "" || description == "" {
		return nil, apperrors.NewValidationError("category and description required", nil)
	}

	owner, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	complaint := &domain.Complaint{
		StudentID:    owner.ID,
		StudentName:  owner.Name,
		StudentEmail: owner.Email,
		Category:     category,
		Description:  description,
		Status:       s.defaultStatus,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       caller,
		Payload: events.ComplaintCreatedPayload{
			Category: complaint.Category,
			Status:   complaint.Status,
		},
	})
	return complaint, nil
}

// ListMine returns the caller's own complaints, newest first.
func (s *ComplaintService) ListMine(ctx context.Context, caller domain.Identity) ([]domain.Complaint, error) {
	if err := auth.Authorize(&caller, auth.AnyAuthenticated); err != nil {
		return nil, err
	}
	complaints, err := s.complaints.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return complaints, nil
}

// Get returns one complaint to its owner or to an administrator. Other
// students see NotFound so existence is not revealed.
func (s *ComplaintService) Get(ctx context.Context, caller domain.Identity, id string) (*domain.Complaint, error) {
	if err := auth.Authorize(&caller, auth.AnyAuthenticated); err != nil {
		return nil, err
	}
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && complaint.StudentID != caller.UserID {
		return nil, complaintNotFound(id)
	}
	return complaint, nil
}

// ListAll returns every complaint matching filter, newest first.
func (s *ComplaintService) ListAll(ctx context.Context, caller domain.Identity, filter domain.ComplaintFilter) ([]domain.Complaint, error) {
	if err := auth.Authorize(&caller, auth.AdminOnly); err != nil {
		return nil, err
	}
	complaints, err := s.complaints.ListAll(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return complaints, nil
}

// Update overwrites the provided administrator-mutable fields.
func (s *ComplaintService) Update(ctx context.Context, caller domain.Identity, id string, input ComplaintUpdateInput) (*domain.Complaint, error) {
	if err := auth.Authorize(&caller, auth.AdminOnly); err != nil {
		return nil, err
	}
	patch := domain.ComplaintPatch{
		Status:     input.Status,
		AssignedTo: input.AssignedTo,
		Remarks:    input.Remarks,
	}
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("at least one of status, assignedTo, remarks required", nil)
	}
	if patch.Status != nil && !s.knownStatus(*patch.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{
			"status":  string(*patch.Status),
			"allowed": s.allowedStatuses(),
		})
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && !s.policy.Allow(current.Status, *patch.Status) {
		return nil, apperrors.NewValidationError("status transition not allowed", map[string]any{
			"from": string(current.Status),
			"to":   string(*patch.Status),
		})
	}

	updated, err := s.complaints.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, complaintNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintUpdated,
		ComplaintID: updated.ID,
		Actor:       caller,
		Payload: events.ComplaintUpdatedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
			Changed:   changedFields(patch),
		},
	})
	return updated, nil
}

// Delete removes a complaint permanently.
func (s *ComplaintService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if err := auth.Authorize(&caller, auth.AdminOnly); err != nil {
		return err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return complaintNotFound(id)
		}
		return apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintDeleted,
		ComplaintID: id,
		Actor:       caller,
		Payload:     events.ComplaintDeletedPayload{Status: current.Status},
	})
	return nil
}

func (s *ComplaintService) load(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, complaintNotFound(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return complaint, nil
}

func (s *ComplaintService) knownStatus(status domain.ComplaintStatus) bool {
	_, ok := s.statuses[status]
	return ok
}

func (s *ComplaintService) allowedStatuses() []string {
	out := make([]string, 0, len(s.statusOrder))
	for _, status := range s.statusOrder {
		out = append(out, string(status))
	}
	return out
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

func complaintNotFound(id string) error {
	return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
}

func changedFields(patch domain.ComplaintPatch) []string {
	var fields []string
	if patch.Status != nil {
		fields = append(fields, "status")
	}
	if patch.AssignedTo != nil {
		fields = append(fields, "assignedTo")
	}
	if patch.Remarks != nil {
		fields = append(fields, "remarks")
	}
	return fields
}
