package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 2*time.Hour)
	userID := 1
	roles := []string{"admin", "author"}

	tokenString, err := jwtUtil.GenerateToken(userID, roles)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, roles, claims.Roles)
	assert.True(t, claims.HasRole("author"))
	assert.False(t, claims.HasRole("seller"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_GenerateRefreshToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 8*24*time.Hour)

	tokenString, err := jwtUtil.GenerateRefreshToken(7)
	require.NoError(t, err)

	claims, err := jwtUtil.ValidateToken(tokenString, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Empty(t, claims.Roles)
	assert.WithinDuration(t, time.Now().Add(8*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_ValidateToken_WrongType(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)

	refresh, _ := jwtUtil.GenerateRefreshToken(1)
	_, err := jwtUtil.ValidateToken(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	access, _ := jwtUtil.GenerateToken(1, nil)
	_, err = jwtUtil.ValidateToken(access, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)

	_, err := jwtUtil.ValidateToken("invalid.token.string", TokenTypeAccess)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -time.Hour, time.Hour)

	tokenString, _ := jwtUtil.GenerateToken(1, nil)

	_, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour, time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour, time.Hour)

	tokenString, _ := jwtUtil1.GenerateToken(1, nil)

	_, err := jwtUtil2.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)
	claims := &JWTClaims{
		UserID:    1,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}
