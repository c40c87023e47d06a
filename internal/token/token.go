package token

import (
	"errors"
	"sync"
	"time"

	"pms-admin-service/internal/apperr"
	"pms-admin-service/internal/model"
	"pms-admin-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims represents the JWT claims carried by every bearer token.
type Claims struct {
	Email       string `json:"email"`
	UserID      uint   `json:"user_id"`
	CorporateID *uint  `json:"corporate_id,omitempty"`
	Role        string `json:"role"`
	RoleID      int    `json:"role_id"`
	jwt.RegisteredClaims
}

// Manager issues, verifies and revokes bearer tokens. Revocation is an
// in-memory denylist keyed by jti; entries are pruned once past their
// natural expiry so memory stays bounded.
type Manager struct {
	secret []byte
	ttl    time.Duration

	mu       sync.Mutex
	denylist map[string]time.Time
}

// NewManager builds a Manager from JWT configuration.
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{
		secret:   []byte(cfg.SigningKey),
		ttl:      cfg.TokenTTL(),
		denylist: make(map[string]time.Time),
	}
}

// Issue creates a signed token carrying the user's identity, role and
// corporate association. Returns the token and its expiry.
func (m *Manager) Issue(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Email:       user.Email,
		UserID:      user.ID,
		CorporateID: user.CorporateID,
		Role:        user.Role,
		RoleID:      user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates signature, expiry and denylist membership.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthorized("Token has expired")
		}
		return nil, apperr.Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("Invalid token")
	}

	if m.isRevoked(claims.ID) {
		return nil, apperr.Unauthorized("Token has been revoked")
	}

	return claims, nil
}

// Invalidate revokes a still-valid token until its natural expiry.
func (m *Manager) Invalidate(tokenString string) error {
	claims, err := m.Verify(tokenString)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(time.Now())
	m.denylist[claims.ID] = claims.ExpiresAt.Time
	return nil
}

// Refresh rotates a valid token: a fresh token is issued from the old
// claims and the old token is revoked.
func (m *Manager) Refresh(tokenString string) (string, time.Time, *Claims, error) {
	claims, err := m.Verify(tokenString)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	user := model.User{
		ID:          claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		RoleID:      claims.RoleID,
		CorporateID: claims.CorporateID,
	}

	signed, expiresAt, err := m.Issue(&user)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	m.mu.Lock()
	m.pruneLocked(time.Now())
	m.denylist[claims.ID] = claims.ExpiresAt.Time
	m.mu.Unlock()

	return signed, expiresAt, claims, nil
}

func (m *Manager) isRevoked(jti string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(time.Now())
	_, revoked := m.denylist[jti]
	return revoked
}

// pruneLocked drops denylist entries whose tokens have expired anyway.
// Callers must hold mu.
func (m *Manager) pruneLocked(now time.Time) {
	for jti, expiresAt := range m.denylist {
		if now.After(expiresAt) {
			delete(m.denylist, jti)
		}
	}
}
