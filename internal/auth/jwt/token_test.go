package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret")})

	token, err := m.GenerateAccessToken("ops-1", RoleEditor)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.Subject)
	assert.Equal(t, RoleEditor, claims.Role)
	assert.Equal(t, "problem-bank", claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signer := NewManager(TokenConfig{Secret: []byte("one")})
	verifier := NewManager(TokenConfig{Secret: []byte("two")})

	token, err := signer.GenerateAccessToken("ops-1", RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	signer := NewManager(TokenConfig{Secret: []byte("secret"), Issuer: "someone-else"})
	verifier := NewManager(TokenConfig{Secret: []byte("secret")})

	token, err := signer.GenerateAccessToken("ops-1", RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret"), AccessTTL: -time.Minute})

	token, err := m.GenerateAccessToken("ops-1", RoleAdmin)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateGarbage(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret")})
	_, err := m.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
