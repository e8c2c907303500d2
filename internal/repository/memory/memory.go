// Package memory provides map-backed repositories used when no Postgres DSN
// is configured and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// Store holds users and complaints behind a single lock.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	emails     map[string]string
	complaints map[string]domain.Complaint
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		emails:     make(map[string]string),
		complaints: make(map[string]domain.Complaint),
		now:        time.Now,
	}
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Complaints exposes the store as a ComplaintRepository.
func (s *Store) Complaints() repository.ComplaintRepository { return complaintRepo{s} }

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := r.s.emails[key]; exists {
		return repository.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.s.timestamp()
	user.Email = key
	user.CreatedAt = now
	user.UpdatedAt = now

	r.s.users[user.ID] = *user
	r.s.emails[key] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

type complaintRepo struct{ s *Store }

func (r complaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := r.s.timestamp()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	r.s.complaints[complaint.ID] = cloneComplaint(*complaint)
	return nil
}

func (r complaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneComplaint(complaint)
	return &out, nil
}

func (r complaintRepo) ListByOwner(_ context.Context, studentID string) ([]domain.Complaint, error) {
	return r.collect(func(c *domain.Complaint) bool { return c.StudentID == studentID }), nil
}

func (r complaintRepo) ListAll(_ context.Context, filter domain.ComplaintFilter) ([]domain.Complaint, error) {
	return r.collect(filter.Matches), nil
}

func (r complaintRepo) Update(_ context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&complaint)
	complaint.UpdatedAt = r.s.timestamp()
	r.s.complaints[id] = complaint

	out := cloneComplaint(complaint)
	return &out, nil
}

func (r complaintRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.complaints[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.complaints, id)
	return nil
}

func (r complaintRepo) collect(keep func(*domain.Complaint) bool) []domain.Complaint {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Complaint{}
	for _, complaint := range r.s.complaints {
		if keep(&complaint) {
			result = append(result, cloneComplaint(complaint))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	if c.AssignedTo != nil {
		v := *c.AssignedTo
		c.AssignedTo = &v
	}
	if c.Remarks != nil {
		v := *c.Remarks
		c.Remarks = &v
	}
	return c
}
