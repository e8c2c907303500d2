package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			JWTIssuer:             "grievance-test",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
			PasswordMinLength:     6,
		},
		Complaint: config.ComplaintConfig{
			Statuses:      domain.DefaultComplaintStatuses,
			DefaultStatus: domain.ComplaintStatusPending,
		},
	}
}

type fixture struct {
	store      *memory.Store
	auth       *AuthService
	complaints *ComplaintService
	published  []events.Event
}

func newFixture(t *testing.T, policy StatusPolicy) *fixture {
	t.Helper()
	cfg := testConfig()
	f := &fixture{store: memory.NewStore()}

	dispatcher := events.NewInMemoryDispatcher()
	record := func(ctx context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	dispatcher.Subscribe(events.EventComplaintCreated, record)
	dispatcher.Subscribe(events.EventComplaintUpdated, record)
	dispatcher.Subscribe(events.EventComplaintDeleted, record)

	f.auth = NewAuthService(cfg, AuthDependencies{UserRepo: f.store.Users()})
	f.complaints = NewComplaintService(cfg.Complaint, ComplaintDependencies{
		ComplaintRepo: f.store.Complaints(),
		UserRepo:      f.store.Users(),
		Policy:        policy,
		Dispatcher:    dispatcher,
	})
	return f
}

func (f *fixture) student(t *testing.T, name, email string) domain.Identity {
	t.Helper()
	user, _, _, err := f.auth.Register(context.Background(), name, email, "password1")
	require.NoError(t, err)
	return domain.Identity{UserID: user.ID, Role: user.Role}
}

func (f *fixture) admin(t *testing.T) domain.Identity {
	t.Helper()
	user, err := f.auth.CreateAdmin(context.Background(), "Admin", "admin@example.com", "admin-pass")
	require.NoError(t, err)
	return domain.Identity{UserID: user.ID, Role: user.Role}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

type failingComplaintRepo struct {
	repository.ComplaintRepository
}

var errStorageDown = errors.New("storage down")

func (failingComplaintRepo) ListByOwner(context.Context, string) ([]domain.Complaint, error) {
	return nil, errStorageDown
}

func (failingComplaintRepo) ListAll(context.Context, domain.ComplaintFilter) ([]domain.Complaint, error) {
	return nil, errStorageDown
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.ComplaintStatus) *domain.ComplaintStatus { return &s }
