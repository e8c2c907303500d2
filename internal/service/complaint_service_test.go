package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

func TestCreateSnapshotsOwnerAndDefaultsToPending(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")

	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "X", Description: "Y"})
	require.NoError(t, err)

	got, err := f.complaints.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, got.StudentID)
	assert.Equal(t, "Alice", got.StudentName)
	assert.Equal(t, "alice@example.com", got.StudentEmail)
	assert.Equal(t, "X", got.Category)
	assert.Equal(t, "Y", got.Description)
	assert.Equal(t, domain.ComplaintStatusPending, got.Status)
	assert.Nil(t, got.AssignedTo)
	assert.Nil(t, got.Remarks)
	assert.False(t, got.CreatedAt.IsZero())

	require.Len(t, f.published, 1)
	assert.Equal(t, events.EventComplaintCreated, f.published[0].Type)
	assert.Equal(t, created.ID, f.published[0].ComplaintID)
}

func TestCreateValidationAndVanishedUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")

	_, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "", Description: "Y"})
	assertCode(t, err, apperrors.CodeValidation)
	_, err = f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "X", Description: "   "})
	assertCode(t, err, apperrors.CodeValidation)

	ghost := domain.Identity{UserID: "8d1c9a43-0000-4000-8000-000000000000", Role: domain.RoleStudent}
	_, err = f.complaints.Create(ctx, ghost, ComplaintCreateInput{Category: "X", Description: "Y"})
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.complaints.Create(ctx, domain.Identity{}, ComplaintCreateInput{Category: "X", Description: "Y"})
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestListMineIsolatesOwners(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	bob := f.student(t, "Bob", "bob@example.com")

	for i := 0; i < 3; i++ {
		_, err := f.complaints.Create(ctx, bob, ComplaintCreateInput{Category: "Mess", Description: "cold food"})
		require.NoError(t, err)
	}
	mine, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leaking roof"})
	require.NoError(t, err)

	got, err := f.complaints.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	bobs, err := f.complaints.ListMine(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobs, 3)
}

func TestGetHidesOtherStudentsComplaints(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	bob := f.student(t, "Bob", "bob@example.com")
	admin := f.admin(t)

	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)

	_, err = f.complaints.Get(ctx, bob, created.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	got, err := f.complaints.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestStudentIsForbiddenFromAdminOperations(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)

	list, err := f.complaints.ListAll(ctx, alice, domain.ComplaintFilter{})
	assertCode(t, err, apperrors.CodeForbidden)
	assert.Nil(t, list)

	updated, err := f.complaints.Update(ctx, alice, created.ID, ComplaintUpdateInput{Status: statusPtr(domain.ComplaintStatusResolved)})
	assertCode(t, err, apperrors.CodeForbidden)
	assert.Nil(t, updated)

	assertCode(t, f.complaints.Delete(ctx, alice, created.ID), apperrors.CodeForbidden)

	still, err := f.complaints.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusPending, still.Status)
}

func TestListAllFilters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	admin := f.admin(t)

	ids := map[string]string{}
	for _, seed := range []struct{ category, status string }{
		{"A", "pending"}, {"B", "pending"}, {"A", "resolved"}, {"B", "resolved"},
	} {
		c, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: seed.category, Description: "d"})
		require.NoError(t, err)
		if seed.status != "pending" {
			_, err = f.complaints.Update(ctx, admin, c.ID, ComplaintUpdateInput{Status: statusPtr(domain.ComplaintStatus(seed.status))})
			require.NoError(t, err)
		}
		ids[seed.category+"/"+seed.status] = c.ID
	}

	got, err := f.complaints.ListAll(ctx, admin, domain.ComplaintFilter{
		Status:   statusPtr(domain.ComplaintStatusPending),
		Category: strPtr("A"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids["A/pending"], got[0].ID)

	all, err := f.complaints.ListAll(ctx, admin, domain.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUpdateOverwritesAnyStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	admin := f.admin(t)
	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)

	sequence := []domain.ComplaintStatus{
		domain.ComplaintStatusResolved,
		domain.ComplaintStatusPending,
		domain.ComplaintStatusRejected,
		domain.ComplaintStatusInProgress,
	}
	for _, status := range sequence {
		updated, err := f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr(status)})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	updated, err := f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{
		AssignedTo: strPtr("Facilities"),
		Remarks:    strPtr("plumber booked"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusInProgress, updated.Status)
	assert.Equal(t, "Facilities", *updated.AssignedTo)
	assert.Equal(t, "plumber booked", *updated.Remarks)
	assert.Equal(t, "Hostel", updated.Category)
	assert.Equal(t, "Leak", updated.Description)
	assert.Equal(t, alice.UserID, updated.StudentID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	last := f.published[len(f.published)-1]
	assert.Equal(t, events.EventComplaintUpdated, last.Type)
	payload, ok := last.Payload.(events.ComplaintUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"assignedTo", "remarks"}, payload.Changed)
}

func TestUpdateRejectsEmptyAndUnknownStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	admin := f.admin(t)
	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)

	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr("closed")})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.complaints.Update(ctx, admin, "missing", ComplaintUpdateInput{Remarks: strPtr("x")})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUpdateHonoursStricterPolicy(t *testing.T) {
	table := TransitionTable{
		domain.ComplaintStatusPending:    {domain.ComplaintStatusInProgress, domain.ComplaintStatusRejected},
		domain.ComplaintStatusInProgress: {domain.ComplaintStatusResolved},
	}
	f := newFixture(t, table)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	admin := f.admin(t)
	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)

	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr(domain.ComplaintStatusResolved)})
	assertCode(t, err, apperrors.CodeValidation)

	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr(domain.ComplaintStatusInProgress)})
	require.NoError(t, err)
	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr(domain.ComplaintStatusResolved)})
	require.NoError(t, err)
}

func TestDeleteIsIrreversible(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	admin := f.admin(t)
	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)

	require.NoError(t, f.complaints.Delete(ctx, admin, created.ID))

	_, err = f.complaints.Get(ctx, admin, created.ID)
	assertCode(t, err, apperrors.CodeNotFound)
	assertCode(t, f.complaints.Delete(ctx, admin, created.ID), apperrors.CodeNotFound)

	mine, err := f.complaints.ListMine(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestStorageFailuresBecomeInternalErrors(t *testing.T) {
	cfg := testConfig()
	svc := NewComplaintService(cfg.Complaint, ComplaintDependencies{ComplaintRepo: failingComplaintRepo{}})
	admin := domain.Identity{UserID: "a", Role: domain.RoleAdmin}

	_, err := svc.ListMine(context.Background(), admin)
	assertCode(t, err, apperrors.CodeInternal)
	assert.ErrorIs(t, err, errStorageDown)

	_, err = svc.ListAll(context.Background(), admin, domain.ComplaintFilter{})
	assertCode(t, err, apperrors.CodeInternal)
}

func TestCustomStatusSet(t *testing.T) {
	cfg := testConfig()
	cfg.Complaint = config.ComplaintConfig{
		Statuses:      []domain.ComplaintStatus{"open", "closed"},
		DefaultStatus: "open",
	}
	f := newFixture(t, nil)
	f.complaints = NewComplaintService(cfg.Complaint, ComplaintDependencies{
		ComplaintRepo: f.store.Complaints(),
		UserRepo:      f.store.Users(),
	})
	ctx := context.Background()
	alice := f.student(t, "Alice", "alice@example.com")
	admin := f.admin(t)

	created, err := f.complaints.Create(ctx, alice, ComplaintCreateInput{Category: "Hostel", Description: "Leak"})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatus("open"), created.Status)

	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr(domain.ComplaintStatusResolved)})
	assertCode(t, err, apperrors.CodeValidation)
	_, err = f.complaints.Update(ctx, admin, created.ID, ComplaintUpdateInput{Status: statusPtr("closed")})
	require.NoError(t, err)
}
