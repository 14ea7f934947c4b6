// server/internal/api/handlers/quarantine_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/models"
	"meat-export-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuarantineHandler struct {
	DB         *mongo.Database
	Notifier   *events.Notifier
	S3Uploader *s3.Uploader
}

// populate resolve tham chiếu order của bản ghi thành document đầy đủ.
func (h *QuarantineHandler) populate(ctx context.Context, dept models.QuarantineDept) models.QuarantineDeptDetail {
	detail := models.QuarantineDeptDetail{QuarantineDept: dept}
	if dept.Order != nil {
		var order models.Order
		if err := h.DB.Collection("orders").FindOne(ctx, bson.M{"_id": *dept.Order}).Decode(&order); err == nil {
			detail.Order = &order
		}
	}
	return detail
}

// GetAllQuarantineDepts lấy danh sách bản ghi kiểm dịch, lọc theo status
// (mặc định "pending"). Mỗi bản ghi kèm order đã resolve.
func (h *QuarantineHandler) GetAllQuarantineDepts(c *gin.Context) {
	status := c.DefaultQuery("status", models.StatusPending)

	collection := h.DB.Collection("quarantine_depts")
	cursor, err := collection.Find(context.Background(), bson.M{"status": status})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query quarantine records"})
		return
	}
	defer cursor.Close(context.Background())

	var depts []models.QuarantineDept
	if err = cursor.All(context.Background(), &depts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode quarantine records"})
		return
	}

	details := make([]models.QuarantineDeptDetail, 0, len(depts))
	for _, dept := range depts {
		details = append(details, h.populate(c.Request.Context(), dept))
	}

	c.JSON(http.StatusOK, details)
}

// GetQuarantineDeptByID lấy một bản ghi kiểm dịch theo id.
func (h *QuarantineHandler) GetQuarantineDeptByID(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		return
	}

	var dept models.QuarantineDept
	err = h.DB.Collection("quarantine_depts").FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quarantine record"})
		}
		return
	}

	c.JSON(http.StatusOK, h.populate(c.Request.Context(), dept))
}

// CreateQuarantineDept tạo một bản ghi kiểm dịch ngoài luồng approve.
func (h *QuarantineHandler) CreateQuarantineDept(c *gin.Context) {
	var dept models.QuarantineDept
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

	_, err := h.DB.Collection("quarantine_depts").InsertOne(context.Background(), dept)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quarantine record"})
		return
	}

	h.Notifier.Publish("quarantine_dept", events.OpSave, dept.ID.Hex(), dept)
	c.JSON(http.StatusCreated, dept)
}

// UpsertQuarantineDept thay thế toàn bộ bản ghi tại id (tạo mới nếu
// chưa có), bỏ qua _id trong body.
func (h *QuarantineHandler) UpsertQuarantineDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		return
	}

	var body models.QuarantineDept
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("quarantine_depts")

	var existing models.QuarantineDept
	findErr := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&existing)
	if findErr != nil && findErr != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quarantine record"})
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert quarantine record"})
		return
	}

	h.Notifier.Publish("quarantine_dept", events.OpSave, body.ID.Hex(), body)
	c.JSON(http.StatusOK, body)
}

// PatchQuarantineDept cập nhật một phần bản ghi bằng JSON-Patch.
func (h *QuarantineHandler) PatchQuarantineDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		return
	}

	patchBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	collection := h.DB.Collection("quarantine_depts")
	var dept models.QuarantineDept
	if err := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quarantine record"})
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save quarantine record"})
		return
	}

	h.Notifier.Publish("quarantine_dept", events.OpSave, updated.ID.Hex(), updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteQuarantineDept xóa một bản ghi kiểm dịch.
func (h *QuarantineHandler) DeleteQuarantineDept(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		return
	}

	var deleted models.QuarantineDept
	err = h.DB.Collection("quarantine_depts").FindOneAndDelete(context.Background(), bson.M{"_id": deptID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quarantine record"})
		}
		return
	}

	h.Notifier.Publish("quarantine_dept", events.OpRemove, deleted.ID.Hex(), deleted)
	c.Status(http.StatusNoContent)
}

// UploadProofDoc nhận file minh chứng kiểm dịch (multipart field "file"),
// đẩy lên S3 và lưu URL vào proof_doc của bản ghi.
func (h *QuarantineHandler) UploadProofDoc(c *gin.Context) {
	deptID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		return
	}

	collection := h.DB.Collection("quarantine_depts")
	var dept models.QuarantineDept
	if err := collection.FindOne(context.Background(), bson.M{"_id": deptID}).Decode(&dept); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quarantine record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quarantine record"})
		}
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("proof-docs/%s/%s%s", deptID.Hex(), uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload proof document", "details": err.Error()})
		return
	}

	_, err = collection.UpdateOne(context.Background(), bson.M{"_id": deptID}, bson.M{"$set": bson.M{
		"proof_doc": url,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save proof document URL"})
		return
	}

	dept.ProofDoc = url
	h.Notifier.Publish("quarantine_dept", events.OpSave, dept.ID.Hex(), dept)
	c.JSON(http.StatusOK, gin.H{"proof_doc": url})
}
