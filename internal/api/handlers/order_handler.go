// server/internal/api/handlers/order_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type OrderHandler struct {
	DB       *mongo.Database
	Notifier *events.Notifier
}

// populate resolve 3 tham chiếu bộ phận của order thành document đầy đủ.
// Bản ghi bộ phận đã bị xóa độc lập thì để nil (weak reference, không cascade).
func (h *OrderHandler) populate(ctx context.Context, order models.Order) models.OrderDetail {
	detail := models.OrderDetail{Order: order}

	if order.DocumentationTeam != nil {
		var doc models.DocumentationDept
		if err := h.DB.Collection("documentation_depts").FindOne(ctx, bson.M{"_id": *order.DocumentationTeam}).Decode(&doc); err == nil {
			detail.DocumentationTeam = &doc
		}
	}
	if order.ProductionTeam != nil {
		var prod models.ProductionDept
		if err := h.DB.Collection("production_depts").FindOne(ctx, bson.M{"_id": *order.ProductionTeam}).Decode(&prod); err == nil {
			detail.ProductionTeam = &prod
		}
	}
	if order.QuarantineTeam != nil {
		var quar models.QuarantineDept
		if err := h.DB.Collection("quarantine_depts").FindOne(ctx, bson.M{"_id": *order.QuarantineTeam}).Decode(&quar); err == nil {
			detail.QuarantineTeam = &quar
		}
	}

	return detail
}

// GetAllOrders lấy danh sách order, lọc theo isApprove (mặc định false).
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	isApprove, err := strconv.ParseBool(c.DefaultQuery("isApprove", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isApprove must be true or false"})
		return
	}

	collection := h.DB.Collection("orders")
	cursor, err := collection.Find(context.Background(), bson.M{"isApprove": isApprove})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query orders"})
		return
	}
	defer cursor.Close(context.Background())

	var orders []models.Order
	if err = cursor.All(context.Background(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode orders"})
		return
	}

	details := make([]models.OrderDetail, 0, len(orders))
	for _, order := range orders {
		details = append(details, h.populate(c.Request.Context(), order))
	}

	c.JSON(http.StatusOK, details)
}

// GetOrderByID lấy một order theo id, kèm 3 bộ phận đã resolve.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var order models.Order
	err = h.DB.Collection("orders").FindOne(context.Background(), bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		}
		return
	}

	c.JSON(http.StatusOK, h.populate(c.Request.Context(), order))
}

// CreateOrder tạo một order mới, luôn ở trạng thái chưa duyệt bất kể
// body gửi lên gì.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// isApprove và 3 tham chiếu bộ phận chỉ được set bởi workflow approve
	order.ID = primitive.NewObjectID()
	order.IsApprove = false
	order.DocumentationTeam = nil
	order.ProductionTeam = nil
	order.QuarantineTeam = nil
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	_, err := h.DB.Collection("orders").InsertOne(context.Background(), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	h.Notifier.Publish("order", events.OpSave, order.ID.Hex(), order)
	c.JSON(http.StatusCreated, order)
}

// UpsertOrder thay thế toàn bộ order tại id (tạo mới nếu chưa có).
// Các field thuộc quyền workflow (isApprove, 3 tham chiếu bộ phận) và
// createdAt được giữ nguyên từ bản ghi hiện có.
func (h *OrderHandler) UpsertOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var body models.Order
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("orders")

	var existing models.Order
	findErr := collection.FindOne(context.Background(), bson.M{"_id": orderID}).Decode(&existing)
	if findErr != nil && findErr != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		return
	}

	body.ID = orderID
	body.UpdatedAt = time.Now()
	if findErr == nil {
		body.IsApprove = existing.IsApprove
		body.DocumentationTeam = existing.DocumentationTeam
		body.ProductionTeam = existing.ProductionTeam
		body.QuarantineTeam = existing.QuarantineTeam
		body.CreatedAt = existing.CreatedAt
	} else {
		body.IsApprove = false
		body.DocumentationTeam = nil
		body.ProductionTeam = nil
		body.QuarantineTeam = nil
		body.CreatedAt = time.Now()
	}

	opts := optionsReplaceUpsert()
	if _, err := collection.ReplaceOne(context.Background(), bson.M{"_id": orderID}, body, opts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert order"})
		return
	}

	h.Notifier.Publish("order", events.OpSave, body.ID.Hex(), body)
	c.JSON(http.StatusOK, body)
}

// ApproveOrder duyệt một order: flip isApprove bằng conditional update
// (chặn double-approve race), tạo 3 bản ghi bộ phận với id độc lập, rồi
// ghi 3 tham chiếu ngược lên order.
func (h *OrderHandler) ApproveOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	ctx := c.Request.Context()
	orders := h.DB.Collection("orders")

	// CAS: chỉ một request thắng được bước flip false->true
	res, err := orders.UpdateOne(ctx,
		bson.M{"_id": orderID, "isApprove": false},
		bson.M{"$set": bson.M{"isApprove": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve order"})
		return
	}
	if res.MatchedCount == 0 {
		// Phân biệt order không tồn tại với order đã duyệt rồi
		count, err := orders.CountDocuments(ctx, bson.M{"_id": orderID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.JSON(http.StatusConflict, gin.H{"error": "order is already approved"})
		}
		return
	}

	now := time.Now()
	docDept := models.DocumentationDept{
		ID: primitive.NewObjectID(), Order: &orderID, Status: models.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	prodDept := models.ProductionDept{
		ID: primitive.NewObjectID(), Order: &orderID, Status: models.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	quarDept := models.QuarantineDept{
		ID: primitive.NewObjectID(), Order: &orderID, Status: models.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := h.DB.Collection("documentation_depts").InsertOne(gctx, docDept)
		return err
	})
	g.Go(func() error {
		_, err := h.DB.Collection("production_depts").InsertOne(gctx, prodDept)
		return err
	})
	g.Go(func() error {
		_, err := h.DB.Collection("quarantine_depts").InsertOne(gctx, quarDept)
		return err
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).WithField("order_id", orderID.Hex()).Error("Approve fan-out failed, rolling back")
		h.rollbackApproval(orderID, docDept.ID, prodDept.ID, quarDept.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department records"})
		return
	}

	_, err = orders.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{
		"documentation_team": docDept.ID,
		"production_team":    prodDept.ID,
		"quarantine_team":    quarDept.ID,
		"updatedAt":          time.Now(),
	}})
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID.Hex()).Error("Approve reference update failed, rolling back")
		h.rollbackApproval(orderID, docDept.ID, prodDept.ID, quarDept.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order references"})
		return
	}

	// Trả về order sau khi duyệt, đã resolve 3 bộ phận
	var updated models.Order
	if err := orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve approved order"})
		return
	}

	h.Notifier.Publish("order", events.OpSave, updated.ID.Hex(), updated)
	h.Notifier.Publish("documentation_dept", events.OpSave, docDept.ID.Hex(), docDept)
	h.Notifier.Publish("production_dept", events.OpSave, prodDept.ID.Hex(), prodDept)
	h.Notifier.Publish("quarantine_dept", events.OpSave, quarDept.ID.Hex(), quarDept)

	c.JSON(http.StatusOK, h.populate(ctx, updated))
}

// rollbackApproval dọn các bản ghi bộ phận đã tạo được và trả order về
// trạng thái chưa duyệt. Best-effort: store không có transaction đa
// document nên chỉ thu hẹp cửa sổ không nhất quán, không đóng hẳn.
func (h *OrderHandler) rollbackApproval(orderID, docID, prodID, quarID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.DB.Collection("documentation_depts").DeleteOne(ctx, bson.M{"_id": docID}); err != nil {
		logrus.WithError(err).Warn("Rollback: failed to delete documentation record")
	}
	if _, err := h.DB.Collection("production_depts").DeleteOne(ctx, bson.M{"_id": prodID}); err != nil {
		logrus.WithError(err).Warn("Rollback: failed to delete production record")
	}
	if _, err := h.DB.Collection("quarantine_depts").DeleteOne(ctx, bson.M{"_id": quarID}); err != nil {
		logrus.WithError(err).Warn("Rollback: failed to delete quarantine record")
	}
	_, err := h.DB.Collection("orders").UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{
		"isApprove": false,
	}, "$unset": bson.M{
		"documentation_team": "",
		"production_team":    "",
		"quarantine_team":    "",
	}})
	if err != nil {
		logrus.WithError(err).WithField("order_id", orderID.Hex()).Warn("Rollback: failed to reset order")
	}
}

// PatchOrder cập nhật một phần order bằng JSON-Patch (RFC 6902).
func (h *OrderHandler) PatchOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	patchBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	collection := h.DB.Collection("orders")
	var order models.Order
	if err := collection.FindOne(context.Background(), bson.M{"_id": orderID}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		}
		return
	}

	updated, err := applyJSONPatch(order, patchBody)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Khôi phục các field không cho patch đụng tới
	updated.ID = order.ID
	updated.IsApprove = order.IsApprove
	updated.DocumentationTeam = order.DocumentationTeam
	updated.ProductionTeam = order.ProductionTeam
	updated.QuarantineTeam = order.QuarantineTeam
	updated.CreatedAt = order.CreatedAt
	updated.UpdatedAt = time.Now()

	if _, err := collection.ReplaceOne(context.Background(), bson.M{"_id": orderID}, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order"})
		return
	}

	h.Notifier.Publish("order", events.OpSave, updated.ID.Hex(), updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteOrder xóa một order. Các bản ghi bộ phận liên quan giữ nguyên
// (không cascade).
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var deleted models.Order
	err = h.DB.Collection("orders").FindOneAndDelete(context.Background(), bson.M{"_id": orderID}).Decode(&deleted)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		}
		return
	}

	h.Notifier.Publish("order", events.OpRemove, deleted.ID.Hex(), deleted)
	c.Status(http.StatusNoContent)
}
