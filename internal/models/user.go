// server/internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleUser là role mặc định khi đăng ký.
const RoleUser = "user"

// User là tài khoản đăng nhập hệ thống. Password và salt không bao giờ
// được serialize ra JSON.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	Email      string             `bson:"email" json:"email"` // luôn lowercase, unique
	Role       string             `bson:"role" json:"role"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Password   string             `bson:"password" json:"-"` // pbkdf2 hash, base64
	Salt       string             `bson:"salt" json:"-"`     // 16 byte random, base64
	Provider   string             `bson:"provider,omitempty" json:"provider,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile là thông tin công khai của một User.
type Profile struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Profile trả về phần thông tin không nhạy cảm của user.
func (u User) Profile() Profile {
	return Profile{Name: u.Name, Role: u.Role}
}
