// server/internal/auth/auth.go
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"meat-export-api-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"
)

// Tham số KDF, giữ tương thích với dữ liệu user đã có.
const (
	saltByteSize  = 16
	kdfIterations = 10000
	kdfKeyLength  = 64
)

// TokenTTL là thời hạn của token phát hành khi đăng ký / đăng nhập.
const TokenTTL = 5 * time.Hour

var ErrEmptyPassword = errors.New("auth: password cannot be blank")

// MakeSalt sinh salt ngẫu nhiên 16 byte, mã hóa base64.
func MakeSalt() (string, error) {
	buf := make([]byte, saltByteSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashPassword dẫn xuất hash từ password và salt (base64) bằng
// PBKDF2-SHA256, 10000 vòng, khóa 64 byte.
func HashPassword(password, salt string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), rawSalt, kdfIterations, kdfKeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// SetPassword sinh salt mới và gán lại cặp salt/hash lên user.
// Được gọi khi tạo user và mỗi lần đổi password.
func SetPassword(user *models.User, password string) error {
	salt, err := MakeSalt()
	if err != nil {
		return err
	}
	hashed, err := HashPassword(password, salt)
	if err != nil {
		return err
	}
	user.Salt = salt
	user.Password = hashed
	return nil
}

// Authenticate kiểm tra password có khớp với cặp salt/hash đã lưu không.
// So sánh constant-time.
func Authenticate(user models.User, password string) bool {
	hashed, err := HashPassword(password, user.Salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(user.Password)) == 1
}

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UserID string `json:"userID"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT phát hành token HS256 chứa id và role của user.
func GenerateJWT(secret []byte, userID, role string) (string, error) {
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWT xác thực chữ ký và hạn của token, trả về claims.
func ParseJWT(secret []byte, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
