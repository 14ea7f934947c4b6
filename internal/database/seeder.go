// server/internal/database/seeder.go
package database

import (
	"context"
	"strings"
	"time"

	"meat-export-api-server/config"
	"meat-export-api-server/internal/auth"
	"meat-export-api-server/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin đảm bảo tài khoản admin tồn tại khi server khởi động.
func SeedAdmin(db *mongo.Database, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		logrus.Info("Admin credentials not configured. Seeding skipped.")
		return nil
	}

	userCollection := db.Collection("users")
	email := strings.ToLower(cfg.Email)

	// Kiểm tra xem admin đã tồn tại chưa
	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		return err
	}

	if count > 0 {
		logrus.Info("Admin already exists. Seeding skipped.")
		return nil
	}

	logrus.Info("Admin not found. Seeding...")
	admin := models.User{
		Name:      "Admin",
		Email:     email,
		Role:      "admin",
		Provider:  "local",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := auth.SetPassword(&admin, cfg.Password); err != nil {
		return err
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	logrus.Info("Admin seeded successfully.")
	return nil
}
