// server/internal/auth/auth_test.go
package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"meat-export-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSalt(t *testing.T) {
	salt, err := MakeSalt()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	assert.Len(t, raw, 16)

	// Hai lần gọi phải ra salt khác nhau
	other, err := MakeSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)
}

func TestHashPassword(t *testing.T) {
	salt, err := MakeSalt()
	require.NoError(t, err)

	hash, err := HashPassword("secret123", salt)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(hash)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	// Cùng password + salt phải ra cùng hash
	again, err := HashPassword("secret123", salt)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	// Khác salt phải ra hash khác
	otherSalt, err := MakeSalt()
	require.NoError(t, err)
	otherHash, err := HashPassword("secret123", otherSalt)
	require.NoError(t, err)
	assert.NotEqual(t, hash, otherHash)
}

func TestHashPasswordEmpty(t *testing.T) {
	salt, err := MakeSalt()
	require.NoError(t, err)

	_, err = HashPassword("", salt)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestSetPasswordAndAuthenticate(t *testing.T) {
	user := models.User{Email: "worker@example.com"}
	require.NoError(t, SetPassword(&user, "correct horse"))

	assert.NotEmpty(t, user.Salt)
	assert.NotEmpty(t, user.Password)
	assert.NotEqual(t, "correct horse", user.Password)

	assert.True(t, Authenticate(user, "correct horse"))
	assert.False(t, Authenticate(user, "wrong horse"))
	assert.False(t, Authenticate(user, ""))
}

func TestSetPasswordRotatesSalt(t *testing.T) {
	user := models.User{}
	require.NoError(t, SetPassword(&user, "first"))
	firstSalt := user.Salt

	require.NoError(t, SetPassword(&user, "second"))
	assert.NotEqual(t, firstSalt, user.Salt)
	assert.False(t, Authenticate(user, "first"))
	assert.True(t, Authenticate(user, "second"))
}

func TestGenerateAndParseJWT(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(secret, "64f0c1e2a3b4c5d6e7f80912", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c1e2a3b4c5d6e7f80912", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	// Hạn token xấp xỉ 5 giờ kể từ lúc phát hành
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, TokenTTL.Seconds(), remaining.Seconds(), 60)
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT([]byte("secret-a"), "someid", "user")
	require.NoError(t, err)

	_, err = ParseJWT([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	_, err := ParseJWT([]byte("secret"), "not-a-token")
	assert.Error(t, err)
}
