package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

func newTestStore() *Store {
	s := NewStore()
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func seedComplaint(t *testing.T, repo repository.ComplaintRepository, owner, category string, status domain.ComplaintStatus) domain.Complaint {
	t.Helper()
	c := &domain.Complaint{
		StudentID:   owner,
		Category:    category,
		Description: "desc",
		Status:      status,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return *c
}

func TestUserEmailUniqueCaseInsensitive(t *testing.T) {
	users := newTestStore().Users()
	ctx := context.Background()

	first := &domain.User{Name: "Alice", Email: "Alice@Example.com", Role: domain.RoleStudent}
	require.NoError(t, users.Create(ctx, first))
	assert.Equal(t, "alice@example.com", first.Email)

	err := users.Create(ctx, &domain.User{Name: "Other", Email: " ALICE@example.COM ", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	found, err := users.GetByEmail(ctx, "aLiCe@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	byID, err := users.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListByOwnerReturnsExactlyOwnedNewestFirst(t *testing.T) {
	repo := newTestStore().Complaints()
	ctx := context.Background()

	a1 := seedComplaint(t, repo, "alice", "Hostel", domain.ComplaintStatusPending)
	seedComplaint(t, repo, "bob", "Hostel", domain.ComplaintStatusPending)
	a2 := seedComplaint(t, repo, "alice", "Mess", domain.ComplaintStatusResolved)
	seedComplaint(t, repo, "carol", "Library", domain.ComplaintStatusRejected)

	got, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a2.ID, got[0].ID)
	assert.Equal(t, a1.ID, got[1].ID)
	for _, c := range got {
		assert.Equal(t, "alice", c.StudentID)
	}

	none, err := repo.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestListAllFilterIntersection(t *testing.T) {
	repo := newTestStore().Complaints()
	ctx := context.Background()

	want := seedComplaint(t, repo, "s1", "A", domain.ComplaintStatusPending)
	seedComplaint(t, repo, "s2", "B", domain.ComplaintStatusPending)
	seedComplaint(t, repo, "s3", "A", domain.ComplaintStatusResolved)
	seedComplaint(t, repo, "s4", "B", domain.ComplaintStatusResolved)

	status := domain.ComplaintStatusPending
	category := "A"

	got, err := repo.ListAll(ctx, domain.ComplaintFilter{Status: &status, Category: &category})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)

	byStatus, err := repo.ListAll(ctx, domain.ComplaintFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	all, err := repo.ListAll(ctx, domain.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt))
	}
}

func TestUpdateOverwritesProvidedFieldsOnly(t *testing.T) {
	repo := newTestStore().Complaints()
	ctx := context.Background()
	created := seedComplaint(t, repo, "s1", "Hostel", domain.ComplaintStatusPending)

	assignee := "Facilities"
	updated, err := repo.Update(ctx, created.ID, domain.ComplaintPatch{AssignedTo: &assignee})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusPending, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "Facilities", *updated.AssignedTo)
	assert.Nil(t, updated.Remarks)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	assignee = "mutated after the call"
	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Facilities", *stored.AssignedTo)

	_, err = repo.Update(ctx, "missing", domain.ComplaintPatch{AssignedTo: &assignee})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteThenGetAndDeleteAgain(t *testing.T) {
	repo := newTestStore().Complaints()
	ctx := context.Background()
	created := seedComplaint(t, repo, "s1", "Hostel", domain.ComplaintStatusPending)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err := repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), repository.ErrNotFound)
}
