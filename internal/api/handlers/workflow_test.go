// server/internal/api/handlers/workflow_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meat-export-api-server/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// Các test dưới đây chạy trên mock deployment của mongo-driver: mỗi
// response xếp hàng trả lời đúng một command theo thứ tự, nên kiểm được
// các nhánh phụ thuộc kết quả ghi (CAS, rollback, xóa bù) mà không cần
// store thật.

func newWorkflowRouter(mt *mtest.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	db := mt.Client.Database("meat_export")
	notifier := events.NewNotifier()
	orderHandler := &OrderHandler{DB: db, Notifier: notifier}
	stockHandler := &StockHandler{DB: db, Notifier: notifier}

	router.PUT("/api/order/:id/approve", orderHandler.ApproveOrder)
	router.POST("/api/stock", stockHandler.CreateStock)
	return router
}

func approveRequest(router *gin.Engine, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/order/"+id+"/approve", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestApproveOrderWorkflow(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing order returns 404", func(mt *mtest.T) {
		router := newWorkflowRouter(mt)

		// CAS không match, rồi count ra 0: order không tồn tại
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "meat_export.orders", mtest.FirstBatch),
		)

		w := approveRequest(router, primitive.NewObjectID().Hex())
		assert.Equal(mt, http.StatusNotFound, w.Code)
		assert.Contains(mt, w.Body.String(), "Order not found")
	})

	mt.Run("second approve returns structured conflict", func(mt *mtest.T) {
		router := newWorkflowRouter(mt)

		// CAS không match nhưng order có tồn tại: đã duyệt rồi
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "meat_export.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		w := approveRequest(router, primitive.NewObjectID().Hex())
		assert.Equal(mt, http.StatusConflict, w.Code)
		assert.Contains(mt, w.Body.String(), "order is already approved")

		// Không có side effect: không bản ghi bộ phận nào được tạo
		for _, evt := range mt.GetAllStartedEvents() {
			assert.NotEqual(mt, "insert", evt.CommandName)
		}
	})

	mt.Run("fan-out failure rolls back", func(mt *mtest.T) {
		router := newWorkflowRouter(mt)

		// CAS thắng, một insert bộ phận fail; phần còn lại của hàng đợi
		// trả lời các insert còn lại và các thao tác rollback
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		w := approveRequest(router, primitive.NewObjectID().Hex())
		assert.Equal(mt, http.StatusInternalServerError, w.Code)
		assert.Contains(mt, w.Body.String(), "Failed to create department records")

		// Rollback phải xóa cả 3 bản ghi bộ phận và reset lại order
		var deletes, updates int
		for _, evt := range mt.GetAllStartedEvents() {
			switch evt.CommandName {
			case "delete":
				deletes++
			case "update":
				updates++
			}
		}
		assert.Equal(mt, 3, deletes)
		assert.Equal(mt, 2, updates) // CAS + reset isApprove
	})

	mt.Run("approve creates departments and returns updated order", func(mt *mtest.T) {
		router := newWorkflowRouter(mt)
		orderID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, "meat_export.orders", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orderID},
				{Key: "product_type", Value: "beef"},
				{Key: "isApprove", Value: true},
			}),
		)

		w := approveRequest(router, orderID.Hex())
		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), `"isApprove":true`)
		assert.Contains(mt, w.Body.String(), orderID.Hex())
	})
}

func TestCreateStockCompensation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deletes stock when animals insert fails", func(mt *mtest.T) {
		router := newWorkflowRouter(mt)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "Document failed validation"}),
			mtest.CreateSuccessResponse(),
		)

		body := `{"name":"batch-1","gate":"G2","animals":[{"type":"goat","tag":"G-17","weight_in_kg":30}]}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/stock", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(mt, http.StatusInternalServerError, w.Code)
		assert.Contains(mt, w.Body.String(), "Failed to create animals")

		// Lô vừa ghi phải bị xóa bù
		var deletes int
		for _, evt := range mt.GetAllStartedEvents() {
			if evt.CommandName == "delete" {
				deletes++
			}
		}
		assert.Equal(mt, 1, deletes)
	})
}
