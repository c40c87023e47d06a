package token

import (
	"testing"
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
	"pms-admin-service/pkg/config"

	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T, hours int) *Manager {
	t.Helper()
	return NewManager(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: hours,
	})
}

func testUser() *model.User {
	corporateID := uint(42)
	return &model.User{
		ID:          7,
		Email:       "jane@acme.com",
		Role:        model.RoleAdmin,
		RoleID:      model.RoleAdminID,
		CorporateID: &corporateID,
	}
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := testManager(t, 1)
	user := testUser()

	signed, expiresAt, err := m.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, model.RoleAdmin, claims.Role)
	require.Equal(t, model.RoleAdminID, claims.RoleID)
	require.NotNil(t, claims.CorporateID)
	require.Equal(t, uint(42), *claims.CorporateID)
	require.NotEmpty(t, claims.ID)
}

func TestManager_VerifySuperAdminHasNoCorporate(t *testing.T) {
	m := testManager(t, 1)
	user := &model.User{ID: 1, Email: "super@admin.com", Role: model.RoleSuperAdmin, RoleID: model.RoleSuperAdminID}

	signed, _, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	require.Nil(t, claims.CorporateID)
}

func TestManager_VerifyRejectsExpired(t *testing.T) {
	m := testManager(t, -1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Verify(signed)
	require.Error(t, err)
	require.Equal(t, apperr.KindUnauthorized, apperr.From(err).Kind)
	require.Contains(t, err.Error(), "expired")
}

func TestManager_VerifyRejectsTampered(t *testing.T) {
	m := testManager(t, 1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Verify(signed + "x")
	require.Error(t, err)
	require.Equal(t, apperr.KindUnauthorized, apperr.From(err).Kind)
}

func TestManager_VerifyRejectsForeignKey(t *testing.T) {
	issuer := testManager(t, 1)
	verifier := NewManager(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})

	signed, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.Error(t, err)
}

func TestManager_VerifyRejectsMalformed(t *testing.T) {
	m := testManager(t, 1)

	_, err := m.Verify("not-a-token")
	require.Error(t, err)
	require.Equal(t, apperr.KindUnauthorized, apperr.From(err).Kind)
}

func TestManager_InvalidateRevokesUntilExpiry(t *testing.T) {
	m := testManager(t, 1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(signed))

	_, err = m.Verify(signed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "revoked")
}

func TestManager_InvalidateRejectsExpired(t *testing.T) {
	m := testManager(t, -1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)

	err = m.Invalidate(signed)
	require.Error(t, err)
}

func TestManager_RefreshRotatesToken(t *testing.T) {
	m := testManager(t, 1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)

	rotated, expiresAt, claims, err := m.Refresh(signed)
	require.NoError(t, err)
	require.NotEqual(t, signed, rotated)
	require.True(t, expiresAt.After(time.Now()))
	require.Equal(t, uint(7), claims.UserID)

	// Old token is revoked, new token verifies
	_, err = m.Verify(signed)
	require.Error(t, err)

	newClaims, err := m.Verify(rotated)
	require.NoError(t, err)
	require.Equal(t, uint(7), newClaims.UserID)
	require.Equal(t, uint(42), *newClaims.CorporateID)
}

func TestManager_RefreshRejectsRevoked(t *testing.T) {
	m := testManager(t, 1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(signed))

	_, _, _, err = m.Refresh(signed)
	require.Error(t, err)
}

func TestManager_DenylistPrunesExpiredEntries(t *testing.T) {
	m := testManager(t, 1)

	signed, _, err := m.Issue(testUser())
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(signed))

	m.mu.Lock()
	require.Len(t, m.denylist, 1)
	// Backdate the entry past its expiry and prune
	for jti := range m.denylist {
		m.denylist[jti] = time.Now().Add(-time.Minute)
	}
	m.pruneLocked(time.Now())
	require.Empty(t, m.denylist)
	m.mu.Unlock()
}
