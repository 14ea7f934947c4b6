// server/internal/api/handlers/stock_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type StockHandler struct {
	DB       *mongo.Database
	Notifier *events.Notifier
}

// CreateStockRequest là payload tạo lô: thông tin lô kèm danh sách
// gia súc nhúng trực tiếp trong body.
type CreateStockRequest struct {
	models.Stock
	Animals []models.Animal `json:"animals"`
}

// populate resolve animals_ref của stock thành danh sách Animal đầy đủ.
func (h *StockHandler) populate(ctx context.Context, stock models.Stock) models.StockDetail {
	detail := models.StockDetail{Stock: stock, AnimalsRef: []models.Animal{}}
	if len(stock.AnimalsRef) == 0 {
		return detail
	}

	cursor, err := h.DB.Collection("animals").Find(ctx, bson.M{"_id": bson.M{"$in": stock.AnimalsRef}})
	if err != nil {
		logrus.WithError(err).WithField("stock_id", stock.ID.Hex()).Warn("Failed to resolve animals")
		return detail
	}
	defer cursor.Close(ctx)

	var animals []models.Animal
	if err := cursor.All(ctx, &animals); err != nil {
		logrus.WithError(err).WithField("stock_id", stock.ID.Hex()).Warn("Failed to decode animals")
		return detail
	}

	detail.AnimalsRef = animals
	return detail
}

// GetAllStocks lấy danh sách lô, mỗi lô kèm danh sách gia súc đã resolve.
func (h *StockHandler) GetAllStocks(c *gin.Context) {
	collection := h.DB.Collection("stocks")

	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query stocks"})
		return
	}
	defer cursor.Close(context.Background())

	var stocks []models.Stock
	if err = cursor.All(context.Background(), &stocks); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode stocks"})
		return
	}

	details := make([]models.StockDetail, 0, len(stocks))
	for _, stock := range stocks {
		details = append(details, h.populate(c.Request.Context(), stock))
	}

	c.JSON(http.StatusOK, details)
}

// GetStockByID lấy một lô theo id, kèm danh sách gia súc.
func (h *StockHandler) GetStockByID(c *gin.Context) {
	stockID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	var stock models.Stock
	err = h.DB.Collection("stocks").FindOne(context.Background(), bson.M{"_id": stockID}).Decode(&stock)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock"})
		}
		return
	}

	c.JSON(http.StatusOK, h.populate(c.Request.Context(), stock))
}

// CreateStock tạo lô cùng toàn bộ gia súc của nó trong một request:
// sinh trước id lô, đóng dấu stock_id lên từng con, gom id của chúng
// vào animals_ref rồi ghi cả hai collection. Nếu ghi animals thất bại
// sau khi lô đã ghi, xóa bù lô để không để lại dữ liệu lệch.
func (h *StockHandler) CreateStock(c *gin.Context) {
	var req CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stock := req.Stock
	stock.ID = primitive.NewObjectID()
	stock.CreatedAt = time.Now()
	stock.UpdatedAt = time.Now()

	animals := make([]interface{}, 0, len(req.Animals))
	animalIDs := make([]primitive.ObjectID, 0, len(req.Animals))
	for _, animal := range req.Animals {
		animal.ID = primitive.NewObjectID()
		animal.StockID = stock.ID
		animals = append(animals, animal)
		animalIDs = append(animalIDs, animal.ID)
	}
	stock.AnimalsRef = animalIDs

	stocks := h.DB.Collection("stocks")
	if _, err := stocks.InsertOne(context.Background(), stock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock"})
		return
	}

	if len(animals) > 0 {
		if _, err := h.DB.Collection("animals").InsertMany(context.Background(), animals); err != nil {
			// Xóa bù lô vừa ghi để hai collection không lệch nhau
			if _, delErr := stocks.DeleteOne(context.Background(), bson.M{"_id": stock.ID}); delErr != nil {
				logrus.WithError(delErr).WithField("stock_id", stock.ID.Hex()).Error("Compensating stock delete failed")
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create animals"})
			return
		}
	}

	h.Notifier.Publish("stock", events.OpSave, stock.ID.Hex(), stock)
	for _, animal := range animals {
		a := animal.(models.Animal)
		h.Notifier.Publish("animals", events.OpSave, a.ID.Hex(), a)
	}

	c.JSON(http.StatusCreated, h.populate(c.Request.Context(), stock))
}

// UpsertStock thay thế toàn bộ lô tại id (tạo mới nếu chưa có), bỏ qua
// _id trong body. animals_ref giữ nguyên từ bản ghi hiện có nếu body
// không khai báo.
func (h *StockHandler) UpsertStock(c *gin.Context) {
	stockID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	var body models.Stock
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("stocks")

	var existing models.Stock
	findErr := collection.FindOne(context.Background(), bson.M{"_id": stockID}).Decode(&existing)
	if findErr != nil && findErr != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock"})
		return
	}

	body.ID = stockID
	body.UpdatedAt = time.Now()
	if findErr == nil {
		body.CreatedAt = existing.CreatedAt
		if body.AnimalsRef == nil {
			body.AnimalsRef = existing.AnimalsRef
		}
	} else {
		body.CreatedAt = time.Now()
	}

	if _, err := collection.ReplaceOne(context.Background(), bson.M{"_id": stockID}, body, optionsReplaceUpsert()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert stock"})
		return
	}

	h.Notifier.Publish("stock", events.OpSave, body.ID.Hex(), body)
	c.JSON(http.StatusOK, body)
}

// PatchStock cập nhật một phần lô bằng JSON-Patch.
func (h *StockHandler) PatchStock(c *gin.Context) {
	stockID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	patchBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	collection := h.DB.Collection("stocks")
	var stock models.Stock
	if err := collection.FindOne(context.Background(), bson.M{"_id": stockID}).Decode(&stock); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock"})
		}
		return
	}

	updated, err := applyJSONPatch(stock, patchBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated.ID = stock.ID
	updated.CreatedAt = stock.CreatedAt
	updated.UpdatedAt = time.Now()

	if _, err := collection.ReplaceOne(context.Background(), bson.M{"_id": stockID}, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save stock"})
		return
	}

	h.Notifier.Publish("stock", events.OpSave, updated.ID.Hex(), updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteStock xóa một lô. Các bản ghi Animal của lô giữ nguyên
// (không cascade).
func (h *StockHandler) DeleteStock(c *gin.Context) {
	stockID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return
	}

	var deleted models.Stock
	err = h.DB.Collection("stocks").FindOneAndDelete(context.Background(), bson.M{"_id": stockID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stock"})
		}
		return
	}

	h.Notifier.Publish("stock", events.OpRemove, deleted.ID.Hex(), deleted)
	c.Status(http.StatusNoContent)
}
