package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talenttrek/internal/config"
	"github.com/jonathan/talenttrek/internal/types"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: expirationHours,
	})
}

func testUser(role string) *types.User {
	return &types.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: role}
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken(testUser(types.RoleJobSeeker))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parts := strings.Split(token, ".")
	assert.Equal(t, 3, len(parts), "JWT should have 3 parts separated by dots")
}

func TestJWTService_GenerateToken_CarriesIdentity(t *testing.T) {
	service := setupTestJWTService(t, 24)
	user := testUser(types.RoleRecruiter)

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID, claims.GetUserID())
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, types.RoleRecruiter, claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestJWTService_GenerateToken_DifferentUsers(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token1, err := service.GenerateToken(testUser(types.RoleJobSeeker))
	require.NoError(t, err)
	token2, err := service.GenerateToken(testUser(types.RoleJobSeeker))
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
}

func TestJWTService_ValidateToken_InvalidSignature(t *testing.T) {
	service1 := setupTestJWTService(t, 24)
	service2 := setupTestJWTService(t, 24)
	service2.config.Secret = "different-secret-key-for-jwt-signing-minimum-32-bytes"

	token, err := service1.GenerateToken(testUser(types.RoleJobSeeker))
	require.NoError(t, err)

	claims, err := service2.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "signature")
}

func TestJWTService_ValidateToken_MalformedToken(t *testing.T) {
	service := setupTestJWTService(t, 24)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "invalid format - one part", token: "invalid"},
		{name: "invalid format - two parts", token: "invalid.token"},
		{name: "invalid format - four parts", token: "invalid.token.format.extra"},
		{name: "invalid base64", token: "invalid.base64.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateToken_WrongAlgorithm(t *testing.T) {
	service := setupTestJWTService(t, 24)

	claims := &Claims{UserID: uuid.New()}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_MissingUserID(t *testing.T) {
	service := setupTestJWTService(t, 24)

	now := time.Now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(tokenString)
	assert.ErrorContains(t, err, "no user id")
}

func TestJWTService_TokenExpiration(t *testing.T) {
	service := setupTestJWTService(t, 24)
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issued }

	token, err := service.GenerateToken(testUser(types.RoleJobSeeker))
	require.NoError(t, err)

	service.now = func() time.Time { return issued.Add(23 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.NoError(t, err)

	service.now = func() time.Time { return issued.Add(25 * time.Hour) }
	claims, err := service.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTService_TokenExpiration_DifferentHours(t *testing.T) {
	for _, hours := range []int{1, 12, 24, 48} {
		t.Run(time.Duration(hours*int(time.Hour)).String(), func(t *testing.T) {
			service := setupTestJWTService(t, hours)

			token, err := service.GenerateToken(testUser(types.RoleJobSeeker))
			require.NoError(t, err)

			claims, err := service.ValidateToken(token)
			require.NoError(t, err)
			require.NotNil(t, claims.ExpiresAt)
			assert.WithinDuration(t, time.Now().Add(time.Duration(hours)*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 24)
	user := testUser(types.RoleEmployer)

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	got, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.GetUserID())

	_, err = service.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}
