// server/cmd/api/main.go
package main

import (
	"meat-export-api-server/config"
	"meat-export-api-server/internal/api/routes"
	"meat-export-api-server/internal/database"
	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/s3"
	"meat-export-api-server/internal/socket"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Nạp .env (nếu có) rồi load configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("Could not load config: %v", err)
	}

	setupLogging(cfg.Log)

	// 2. Kết nối MongoDB
	db, cleanup, err := database.Connect(cfg.Mongo)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer cleanup()

	if err := database.EnsureIndexes(db); err != nil {
		logrus.Fatalf("Failed to ensure indexes: %v", err)
	}

	// 3. Seed tài khoản admin nếu chưa có
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		logrus.Fatalf("Failed to seed admin: %v", err)
	}

	// 4. Notifier + WebSocket hub: hub nhận mọi sự kiện entity và đẩy
	// xuống các client dashboard đang kết nối
	notifier := events.NewNotifier()
	wsHub := socket.NewHub()
	notifier.SubscribeAll(wsHub.Broadcast)

	// 5. S3 uploader cho giấy tờ kiểm dịch
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		logrus.Fatalf("Failed to create S3 uploader: %v", err)
	}

	// 6. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(cfg, db, notifier, s3Uploader, wsHub)

	// 7. Start server
	logrus.Infof("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("Failed to run server: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
