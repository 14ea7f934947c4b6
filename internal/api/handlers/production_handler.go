// server/internal/api/handlers/production_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProductionHandler struct {
	DB       *mongo.Database
	Notifier *events.Notifier
}

// populate resolve tham chiếu order của bản ghi thành document đầy đủ.
func (h *ProductionHandler) populate(ctx context.Context, dept models.ProductionDept) models.ProductionDeptDetail {
	detail := models.ProductionDeptDetail{ProductionDept: dept}
	if dept.Order != nil {
		var order models.Order
		if err := h.DB.Collection("orders").FindOne(ctx, bson.M{"_id": *dept.Order}).Decode(&order); err == nil {
			detail.Order = &order
		}
	}
	return detail
}

// GetAllProductionDepts lấy danh sách bản ghi sản xuất, lọc theo status
// (mặc định "pending"). Mỗi bản ghi kèm order đã resolve.
func (h *ProductionHandler) GetAllProductionDepts(c *gin.Context) {
	status := c.DefaultQuery("status", models.StatusPending)

	collection := h.DB.Collection("production_depts")
	cursor, err := collection.Find(context.Background(), bson.M{"status": status})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query production records"})
		return
	}
	defer cursor.Close(context.Background())

	var depts []models.ProductionDept
	if err = cursor.All(context.Background(), &depts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode production records"})
		return
	}

	details := make([]models.ProductionDeptDetail, 0, len(depts))
	for _, dept := range depts {
		details = append(details, h.populate(c.Request.Context(), dept))
	}

	c.JSON(http.StatusOK, details)
}

// GetProductionDeptByID lấy một bản ghi sản xuất theo id.
func (h *ProductionHandler) GetProductionDeptByID(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		return
	}

	var dept models.ProductionDept
	err = h.DB.Collection("production_depts").FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve production record"})
		}
		return
	}

	c.JSON(http.StatusOK, h.populate(c.Request.Context(), dept))
}

// CreateProductionDept tạo một bản ghi sản xuất ngoài luồng approve.
func (h *ProductionHandler) CreateProductionDept(c *gin.Context) {
	var dept models.ProductionDept
	if err := c.ShouldBindJSON(&dept); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept.ID = primitive.NewObjectID()
	if dept.Status == "" {
		dept.Status = models.StatusPending
	}
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = time.Now()

	_, err := h.DB.Collection("production_depts").InsertOne(context.Background(), dept)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create production record"})
		return
	}

	h.Notifier.Publish("production_dept", events.OpSave, dept.ID.Hex(), dept)
	c.JSON(http.StatusCreated, dept)
}

// UpsertProductionDept thay thế toàn bộ bản ghi tại id (tạo mới nếu
// chưa có), bỏ qua _id trong body.
func (h *ProductionHandler) UpsertProductionDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		return
	}

	var body models.ProductionDept
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("production_depts")

	var existing models.ProductionDept
	findErr := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&existing)
	if findErr != nil && findErr != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve production record"})
		return
	}

	body.ID = deptID
	if body.Status == "" {
		body.Status = models.StatusPending
	}
	body.UpdatedAt = time.Now()
	if findErr == nil {
		body.CreatedAt = existing.CreatedAt
	} else {
		body.CreatedAt = time.Now()
	}

	if _, err := collection.ReplaceOne(context.Background(), bson.M{"_id": deptID}, body, optionsReplaceUpsert()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert production record"})
		return
	}

	h.Notifier.Publish("production_dept", events.OpSave, body.ID.Hex(), body)
	c.JSON(http.StatusOK, body)
}

// PatchProductionDept cập nhật một phần bản ghi bằng JSON-Patch.
func (h *ProductionHandler) PatchProductionDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		return
	}

	patchBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	collection := h.DB.Collection("production_depts")
	var dept models.ProductionDept
	if err := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve production record"})
		}
		return
	}

	updated, err := applyJSONPatch(dept, patchBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated.ID = dept.ID
	updated.CreatedAt = dept.CreatedAt
	updated.UpdatedAt = time.Now()

	if _, err := collection.ReplaceOne(context.Background(), bson.M{"_id": deptID}, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save production record"})
		return
	}

	h.Notifier.Publish("production_dept", events.OpSave, updated.ID.Hex(), updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteProductionDept xóa một bản ghi sản xuất.
func (h *ProductionHandler) DeleteProductionDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		return
	}

	var deleted models.ProductionDept
	err = h.DB.Collection("production_depts").FindOneAndDelete(context.Background(), bson.M{"_id": deptID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Production record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete production record"})
		}
		return
	}

	h.Notifier.Publish("production_dept", events.OpRemove, deleted.ID.Hex(), deleted)
	c.Status(http.StatusNoContent)
}
