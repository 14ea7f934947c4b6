// server/internal/api/handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"meat-export-api-server/internal/auth"
	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserHandler struct {
	DB        *mongo.Database
	Notifier  *events.Notifier
	JWTSecret []byte
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Register tạo tài khoản mới và phát hành luôn token đăng nhập.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")
	email := strings.ToLower(req.Email)

	// Ràng buộc email unique kiểm tra tại thời điểm ghi
	count, err := collection.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The specified email address is already in use."})
		return
	}

	user := models.User{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		Email:      email,
		Role:       models.RoleUser,
		Department: req.Department,
		Provider:   "local",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := auth.SetPassword(&user, req.Password); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if _, err := collection.InsertOne(context.Background(), user); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := auth.GenerateJWT(h.JWTSecret, user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.Notifier.Publish("user", events.OpSave, user.ID.Hex(), user)
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// Login xác thực email/password và phát hành token.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if !auth.Authenticate(user, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(h.JWTSecret, user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetAllUsers lấy danh sách user, không bao giờ kèm salt/password.
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	collection := h.DB.Collection("users")

	// Projection loại sẵn field nhạy cảm ngay từ store; json:"-" trên model
	// là lớp chặn thứ hai.
	opts := options.Find().SetProjection(bson.M{"salt": 0, "password": 0})
	cursor, err := collection.Find(context.Background(), bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query users"})
		return
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err = cursor.All(context.Background(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}

// GetUserByID trả về profile công khai của một user.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// Me trả về thông tin của user đang đăng nhập.
func (h *UserHandler) Me(c *gin.Context) {
	userIDHex := c.GetString("user_id")
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"salt": 0, "password": 0})
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": userID}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword đổi password: yêu cầu cung cấp đúng password hiện tại,
// và chỉ đổi được cho chính mình.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userIDHex := c.GetString("user_id")
	if c.Param("id") != userIDHex {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only change your own password"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")
	var user models.User
	if err := collection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if !auth.Authenticate(user, req.OldPassword) {
		c.Status(http.StatusForbidden)
		return
	}

	if err := auth.SetPassword(&user, req.NewPassword); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	_, err = collection.UpdateOne(context.Background(), bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"password":  user.Password,
		"salt":      user.Salt,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	logrus.WithField("user_id", userIDHex).Info("Password changed")
	h.Notifier.Publish("user", events.OpSave, userIDHex, user)
	c.Status(http.StatusNoContent)
}

// DeleteUser xóa một tài khoản.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var deleted models.User
	err = h.DB.Collection("users").FindOneAndDelete(context.Background(), bson.M{"_id": userID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		}
		return
	}

	h.Notifier.Publish("user", events.OpRemove, deleted.ID.Hex(), deleted)
	c.Status(http.StatusNoContent)
}
