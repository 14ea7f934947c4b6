// server/internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"meat-export-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect mở kết nối MongoDB, ping để chắc chắn server sống, và trả về
// database đã chọn trong config.
func Connect(cfg config.MongoConfig) (*mongo.Database, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	cleanup := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = client.Disconnect(shutdownCtx)
	}

	return client.Database(cfg.DBName), cleanup, nil
}

// EnsureIndexes tạo các index cần cho ràng buộc ở tầng ghi:
// email của user là unique, các bản ghi bộ phận tra cứu theo order.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	for _, col := range []string{"documentation_depts", "production_depts", "quarantine_depts"} {
		_, err := db.Collection(col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "order", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create %s order index: %w", col, err)
		}
	}

	_, err = db.Collection("animals").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "stock_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create animals stock_id index: %w", err)
	}

	return nil
}
