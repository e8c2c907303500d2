package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func testUser(role domain.Role) *domain.User {
	return &domain.User{ID: "0b9d7c1e-4a6f-4bb1-9a55-1f7f2d3c4e5a", Role: role}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", "grievance-service", time.Hour)
	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleAdmin} {
		user := testUser(role)
		token, exp, err := tm.Issue(user)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

		identity, err := tm.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, domain.Identity{UserID: user.ID, Role: role}, identity)
	}
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "grievance-service", time.Minute)
	issuedAt := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issuedAt }

	token, _, err := tm.Issue(testUser(domain.RoleStudent))
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("right-secret", "grievance-service", time.Hour).Issue(testUser(domain.RoleAdmin))
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", "grievance-service", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTamperedPayload(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", "grievance-service", time.Hour)
	token, _, err := tm.Issue(testUser(domain.RoleStudent))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := NewTokenManager("other", "grievance-service", time.Hour).Issue(testUser(domain.RoleAdmin))
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = tm.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", "grievance-service", time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := tm.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "grievance-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("k", "grievance-service", time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnknownRoleAndMissingExpiry(t *testing.T) {
	t.Parallel()

	sign := func(c *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("k"))
		require.NoError(t, err)
		return s
	}
	tm := NewTokenManager("k", "grievance-service", time.Hour)

	_, err := tm.Verify(sign(&Claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "grievance-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Verify(sign(&Claims{
		Role:             domain.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "grievance-service"},
	}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-pass", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pass", hash)
	assert.NoError(t, ComparePassword(hash, "secret-pass"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
