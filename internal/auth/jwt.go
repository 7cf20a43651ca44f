package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
)

// Roles recognised in the role claim.
const (
	RoleTechnician = "technician"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// Claims defines the structured data we store in the JWT. Subject carries
// the technician name (or the user name for supervisors).
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IsSupervisor reports whether the caller may read every technician's data.
func (c *Claims) IsSupervisor() bool {
	return c.Role == RoleSupervisor || c.Role == RoleAdmin
}

// CanView reports whether the caller may read reports of technician.
func (c *Claims) CanView(technician string) bool {
	if c.IsSupervisor() {
		return true
	}
	return domain.Fold(c.Subject) == domain.Fold(technician)
}

type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT access token. Tokens are normally issued
// by the identity provider; this is used by tooling and tests.
func (tm *TokenManager) GenerateToken(subject, role string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateToken parses and validates the token string
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}
