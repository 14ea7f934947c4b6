// server/internal/api/handlers/documentation_handler.go
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

type DocumentationHandler struct {
	DB       *mongo.Database
	Notifier *events.Notifier
}

// populate resolve tham chiếu order của bản ghi thành document đầy đủ.
// Order đã bị xóa độc lập thì để nil (weak reference, không cascade).
func (h *DocumentationHandler) populate(ctx context.Context, dept models.DocumentationDept) models.DocumentationDeptDetail {
	detail := models.DocumentationDeptDetail{DocumentationDept: dept}
	if dept.Order != nil {
		var order models.Order
		if err := h.DB.Collection("orders").FindOne(ctx, bson.M{"_id": *dept.Order}).Decode(&order); err == nil {
			detail.Order = &order
		}
	}
	return detail
}

// GetAllDocumentationDepts lấy danh sách bản ghi giấy tờ, lọc theo
// status (mặc định "pending"). Mỗi bản ghi kèm order đã resolve.
func (h *DocumentationHandler) GetAllDocumentationDepts(c *gin.Context) {
	status := c.DefaultQuery("status", models.StatusPending)

	collection := h.DB.Collection("documentation_depts")
	cursor, err := collection.Find(context.Background(), bson.M{"status": status})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query documentation records"})
		return
	}
	defer cursor.Close(context.Background())

	var depts []models.DocumentationDept
	if err = cursor.All(context.Background(), &depts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode documentation records"})
		return
	}

	details := make([]models.DocumentationDeptDetail, 0, len(depts))
	for _, dept := range depts {
		details = append(details, h.populate(c.Request.Context(), dept))
	}

	c.JSON(http.StatusOK, details)
}

// GetDocumentationDeptByID lấy một bản ghi giấy tờ theo id.
func (h *DocumentationHandler) GetDocumentationDeptByID(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		return
	}

	var dept models.DocumentationDept
	err = h.DB.Collection("documentation_depts").FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documentation record"})
		}
		return
	}

	c.JSON(http.StatusOK, h.populate(c.Request.Context(), dept))
}

// CreateDocumentationDept tạo một bản ghi giấy tờ. Luồng chuẩn là bản
// ghi được sinh bởi workflow approve; endpoint này phục vụ nhập tay.
func (h *DocumentationHandler) CreateDocumentationDept(c *gin.Context) {
	var dept models.DocumentationDept
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

	_, err := h.DB.Collection("documentation_depts").InsertOne(context.Background(), dept)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create documentation record"})
		return
	}

	h.Notifier.Publish("documentation_dept", events.OpSave, dept.ID.Hex(), dept)
	c.JSON(http.StatusCreated, dept)
}

// UpsertDocumentationDept thay thế toàn bộ bản ghi tại id (tạo mới nếu
// chưa có), bỏ qua _id trong body.
func (h *DocumentationHandler) UpsertDocumentationDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		return
	}

	var body models.DocumentationDept
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("documentation_depts")

	var existing models.DocumentationDept
	findErr := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&existing)
	if findErr != nil && findErr != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documentation record"})
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert documentation record"})
		return
	}

	h.Notifier.Publish("documentation_dept", events.OpSave, body.ID.Hex(), body)
	c.JSON(http.StatusOK, body)
}

// PatchDocumentationDept cập nhật một phần bản ghi bằng JSON-Patch.
func (h *DocumentationHandler) PatchDocumentationDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		return
	}

	patchBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	collection := h.DB.Collection("documentation_depts")
	var dept models.DocumentationDept
	if err := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documentation record"})
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save documentation record"})
		return
	}

	h.Notifier.Publish("documentation_dept", events.OpSave, updated.ID.Hex(), updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteDocumentationDept xóa một bản ghi giấy tờ. Order liên quan không
// bị đụng tới.
func (h *DocumentationHandler) DeleteDocumentationDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		return
	}

	var deleted models.DocumentationDept
	err = h.DB.Collection("documentation_depts").FindOneAndDelete(context.Background(), bson.M{"_id": deptID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Documentation record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete documentation record"})
		}
		return
	}

	h.Notifier.Publish("documentation_dept", events.OpRemove, deleted.ID.Hex(), deleted)
	c.Status(http.StatusNoContent)
}
