package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_UsesConfiguredTTL(t *testing.T) {
	ttl := 2 * time.Hour
	tm := NewTokenManager("test-secret", ttl)

	start := time.Now()

	token, err := tm.GenerateToken("Ana", RoleTechnician)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	assert.Equal(t, "Ana", claims.Subject)
	assert.Equal(t, RoleTechnician, claims.Role)
	assert.WithinDuration(t, start.Add(ttl), claims.ExpiresAt.Time, 2*time.Second)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).GenerateToken("Ana", RoleTechnician)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	claims := &Claims{
		Role: RoleTechnician,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "Ana",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_RequiresSubject(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	_, err := tm.GenerateToken("  ", RoleTechnician)
	assert.Error(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: RoleAdmin}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestClaims_CanView(t *testing.T) {
	tech := &Claims{Role: RoleTechnician, RegisteredClaims: jwt.RegisteredClaims{Subject: "José Silva"}}
	lead := &Claims{Role: RoleSupervisor, RegisteredClaims: jwt.RegisteredClaims{Subject: "Lead"}}

	assert.True(t, tech.CanView("jose silva"))
	assert.False(t, tech.CanView("Ana"))
	assert.False(t, tech.IsSupervisor())
	assert.True(t, lead.CanView("Ana"))
	assert.True(t, lead.IsSupervisor())
}
