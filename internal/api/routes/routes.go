// server/internal/api/routes/routes.go
package routes

import (
	"meat-export-api-server/config"
	"meat-export-api-server/internal/api/handlers"
	"meat-export-api-server/internal/api/middleware"
	"meat-export-api-server/internal/events"
	"meat-export-api-server/internal/s3"
	"meat-export-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	notifier *events.Notifier,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	jwtSecret := []byte(cfg.JWT.Secret)

	// Khởi tạo các handlers
	orderHandler := &handlers.OrderHandler{DB: db, Notifier: notifier}
	documentationHandler := &handlers.DocumentationHandler{DB: db, Notifier: notifier}
	productionHandler := &handlers.ProductionHandler{DB: db, Notifier: notifier}
	quarantineHandler := &handlers.QuarantineHandler{DB: db, Notifier: notifier, S3Uploader: s3Uploader}
	stockHandler := &handlers.StockHandler{DB: db, Notifier: notifier}
	userHandler := &handlers.UserHandler{DB: db, Notifier: notifier, JWTSecret: jwtSecret}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWTSecret: jwtSecret}

	// Route cho WebSocket theo dõi sự kiện entity
	router.GET("/ws", webSocketHandler.ServeWs)

	// Nhóm API authentication
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", userHandler.Login)
	}

	api := router.Group("/api")
	{
		// Order: CRUD + workflow approve
		orders := api.Group("/order")
		{
			orders.GET("", orderHandler.GetAllOrders)
			orders.GET("/:id", orderHandler.GetOrderByID)
			orders.POST("", orderHandler.CreateOrder)
			orders.PUT("/:id", orderHandler.UpsertOrder)
			orders.PUT("/:id/approve", orderHandler.ApproveOrder)
			orders.PATCH("/:id", orderHandler.PatchOrder)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
		}

		// Documentation department (đường dẫn giữ tên cũ "doc_team")
		docTeam := api.Group("/doc_team")
		{
			docTeam.GET("", documentationHandler.GetAllDocumentationDepts)
			docTeam.GET("/:id", documentationHandler.GetDocumentationDeptByID)
			docTeam.POST("", documentationHandler.CreateDocumentationDept)
			docTeam.PUT("/:id", documentationHandler.UpsertDocumentationDept)
			docTeam.PATCH("/:id", documentationHandler.PatchDocumentationDept)
			docTeam.DELETE("/:id", documentationHandler.DeleteDocumentationDept)
		}

		// Production department
		productionDept := api.Group("/production_dept")
		{
			productionDept.GET("", productionHandler.GetAllProductionDepts)
			productionDept.GET("/:id", productionHandler.GetProductionDeptByID)
			productionDept.POST("", productionHandler.CreateProductionDept)
			productionDept.PUT("/:id", productionHandler.UpsertProductionDept)
			productionDept.PATCH("/:id", productionHandler.PatchProductionDept)
			productionDept.DELETE("/:id", productionHandler.DeleteProductionDept)
		}

		// Quarantine department + upload giấy tờ kiểm dịch
		quarantineDept := api.Group("/quarantine_dept")
		{
			quarantineDept.GET("", quarantineHandler.GetAllQuarantineDepts)
			quarantineDept.GET("/:id", quarantineHandler.GetQuarantineDeptByID)
			quarantineDept.POST("", quarantineHandler.CreateQuarantineDept)
			quarantineDept.PUT("/:id", quarantineHandler.UpsertQuarantineDept)
			quarantineDept.PATCH("/:id", quarantineHandler.PatchQuarantineDept)
			quarantineDept.DELETE("/:id", quarantineHandler.DeleteQuarantineDept)
			quarantineDept.POST("/:id/proof-doc", quarantineHandler.UploadProofDoc)
		}

		// Stock + Animals (tạo kèm nhau trong một request)
		stock := api.Group("/stock")
		{
			stock.GET("", stockHandler.GetAllStocks)
			stock.GET("/:id", stockHandler.GetStockByID)
			stock.POST("", stockHandler.CreateStock)
			stock.PUT("/:id", stockHandler.UpsertStock)
			stock.PATCH("/:id", stockHandler.PatchStock)
			stock.DELETE("/:id", stockHandler.DeleteStock)
		}

		// Users: đăng ký công khai, phần còn lại yêu cầu xác thực
		users := api.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.GET("/:id", userHandler.GetUserByID)

			authed := users.Group("")
			authed.Use(middleware.Authenticate(jwtSecret))
			{
				authed.GET("/me", userHandler.Me)
				authed.PUT("/:id/password", userHandler.ChangePassword)
			}

			admin := users.Group("")
			admin.Use(middleware.Authenticate(jwtSecret))
			admin.Use(middleware.Authorize("admin"))
			{
				admin.GET("", userHandler.GetAllUsers)
				admin.DELETE("/:id", userHandler.DeleteUser)
			}
		}
	}

	return router
}
