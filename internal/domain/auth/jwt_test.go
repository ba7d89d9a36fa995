package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret-a"))
	u := NewUser("admin", "hash", RoleAdmin)

	token, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	uc, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), uc.UserID)
	assert.True(t, uc.IsAdmin())

	other := NewJWTService(DefaultJWTConfig("secret-b"))
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	wrongIssuer := NewJWTService(JWTConfig{Secret: "secret-a", Issuer: "someone-else", AccessTokenTTL: time.Hour})
	_, err = wrongIssuer.ValidateToken(token)
	assert.Error(t, err)

	expired := NewJWTService(JWTConfig{Secret: "secret-a", Issuer: "laluna", AccessTokenTTL: -time.Minute})
	stale, _, err := expired.GenerateAccessToken(u)
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale)
	assert.Error(t, err)
}
