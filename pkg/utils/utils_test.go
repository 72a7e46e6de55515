package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	token, expiresAt, err := m.GenerateAccessToken(userID, "cashier1", []string{"cashier"}, []string{"manage-sales"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "cashier1", claims.Username)
	assert.Equal(t, []string{"manage-sales"}, claims.Permissions)
}

func TestJWTManager_CarriesIDClaim(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	userID := uuid.New()
	token, _, err := m.GenerateAccessToken(userID, "admin", nil, nil)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["id"])
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)
	token, _, err := other.GenerateAccessToken(uuid.New(), "x", nil, nil)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute)
	token, _, err = expired.GenerateAccessToken(uuid.New(), "x", nil, nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateInvoiceNo(t *testing.T) {
	at := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	no := GenerateInvoiceNo(at)
	assert.True(t, strings.HasPrefix(no, "INV-20240131-"))
	assert.Len(t, no, len("INV-20240131-")+8)
	assert.NotEqual(t, no, GenerateInvoiceNo(at))
}
