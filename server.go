package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/middlewares"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/utils"
	"github.com/growship/commerce_backend/workflow"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/growship/commerce_backend")

func main() {
	godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/login", loginHandler)
	router.POST("/auth/register", registerHandler)
	router.POST("/pubsub/notification-digest", digestPushHandler)

	api := router.Group("/api", middlewares.AuthMiddleware())
	{
		api.POST("/brands", middlewares.RequireRoles(models.RoleSuperAdmin), createBrandHandler)
		api.POST("/distributors", middlewares.RequireRoles(models.RoleSuperAdmin, models.RoleBrandAdmin), createDistributorHandler)
		api.POST("/users/:id/status", middlewares.RequireRoles(models.RoleSuperAdmin, models.RoleBrandAdmin), updateUserStatusHandler)

		api.POST("/products", createProductHandler)
		api.GET("/products", listProductsHandler)
		api.PUT("/products/:id", updateProductHandler)
		api.POST("/products/:id/adjust-stock", adjustStockHandler)
		api.GET("/products/:id/transactions", listTransactionsHandler)

		api.POST("/orders", createOrderHandler)
		api.GET("/orders", listOrdersHandler)
		api.GET("/orders/stats", orderStatsHandler)
		api.GET("/orders/:id", getOrderHandler)
		api.PUT("/orders/:id", updateOrderHandler)
		api.POST("/orders/:id/transition", orderTransitionHandler)
		api.DELETE("/orders/:id", cancelOrderHandler)
		api.GET("/orders/:id/history", orderHistoryHandler)

		api.POST("/purchase-orders", createPOHandler)
		api.GET("/purchase-orders", listPOsHandler)
		api.GET("/purchase-orders/:id", getPOHandler)
		api.PUT("/purchase-orders/:id", updatePOHandler)
		api.POST("/purchase-orders/:id/transition", poTransitionHandler)
		api.GET("/purchase-orders/:id/lines/:lineId/suggestion", lineSuggestionHandler)
		api.POST("/purchase-orders/:id/lines/:lineId/decision", lineDecisionHandler)
		api.POST("/purchase-orders/:id/finalize", finalizePOHandler)
		api.GET("/purchase-orders/:id/history", poHistoryHandler)

		api.GET("/notifications", listNotificationsHandler)
		api.GET("/notifications/unread-count", unreadCountHandler)
		api.POST("/notifications/:id/read", markReadHandler)
		api.POST("/notifications/read-all", markAllReadHandler)
		api.PUT("/notifications/preferences", updatePreferenceHandler)
		api.POST("/notifications/role-settings", middlewares.RequireRoles(models.RoleSuperAdmin, models.RoleBrandAdmin), upsertRoleSettingHandler)

		api.GET("/calendar/events", listCalendarHandler)
		api.POST("/calendar/events", createCalendarEventHandler)
		api.POST("/calendar/sync", calendarSyncHandler)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Cloud Run: start listening before connecting to backing services so
	// the container passes its startup probe.
	go func() {
		log.Printf("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if os.Getenv("AUTO_MIGRATE") == "1" {
		if err := models.MigrateDatabase(config.GetDB()); err != nil {
			log.Printf("migration failed: %v", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

/* auth */

func loginHandler(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	token, profile, err := models.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "profile": profile})
}

func registerHandler(c *gin.Context) {
	var input models.NewUserProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	profile, err := models.CreateUserProfile(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func updateUserStatusHandler(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required,oneof=pending approved rejected disabled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	profile, err := models.UpdateUserStatus(c.Request.Context(), c.Param("id"), models.UserStatus(input.Status))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

/* tenancy */

func createBrandHandler(c *gin.Context) {
	var input models.NewBrand
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	brand, err := models.CreateBrand(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func createDistributorHandler(c *gin.Context) {
	var input models.NewDistributor
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	distributor, err := models.CreateDistributor(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, distributor)
}

/* products */

func createProductHandler(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func listProductsHandler(c *gin.Context) {
	products, err := models.ListProducts(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func updateProductHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	product, err := models.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func adjustStockHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input struct {
		Quantity decimal.Decimal `json:"quantity" binding:"required"`
		Note     string          `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	result := workflow.AdjustProductStock(c.Request.Context(), id, input.Quantity, input.Note)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listTransactionsHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	brandId, _ := utils.GetBrandIdFromContext(c.Request.Context())
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := models.ListInventoryTransactions(c.Request.Context(), brandId, id, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}

/* orders */

func createOrderHandler(c *gin.Context) {
	var input models.NewOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	order, err := models.CreateOrder(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func listOrdersHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := models.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		DistributorId: c.Query("distributor_id"),
		Search:        c.Query("search"),
		Limit:         limit,
		Offset:        offset,
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateTo = &t
		}
	}
	orders, total, err := models.ListOrders(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func orderStatsHandler(c *gin.Context) {
	stats, err := models.GetOrderStats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func getOrderHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	brandId, _ := utils.GetBrandIdFromContext(c.Request.Context())
	order, err := utils.FetchModel[models.Order](c.Request.Context(), brandId, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func updateOrderHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	order, err := models.UpdateOrder(c.Request.Context(), id, input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func orderTransitionHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input struct {
		Action string `json:"action" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	result := workflow.ExecuteOrderTransition(c.Request.Context(), id, userId, input.Action, input.Reason)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func cancelOrderHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	result := workflow.CancelOrder(c.Request.Context(), id, userId, c.Query("reason"))
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func orderHistoryHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	rows, err := models.ListHistory(c.Request.Context(), "order", id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}

/* purchase orders */

func createPOHandler(c *gin.Context) {
	var input models.NewPurchaseOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	po, err := models.CreatePurchaseOrder(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

func listPOsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	pos, total, err := models.ListPurchaseOrders(c.Request.Context(), models.PurchaseOrderFilter{
		Status:        c.Query("status"),
		DistributorId: c.Query("distributor_id"),
		Search:        c.Query("search"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": pos, "total": total})
}

func getPOHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	po, err := models.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase_order":    po,
		"available_actions": workflow.GetAvailablePOActions(po.Status),
	})
}

func updatePOHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.UpdatePurchaseOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	po, err := models.UpdatePurchaseOrder(c.Request.Context(), id, input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func poTransitionHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input struct {
		Action   string `json:"action" binding:"required"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	result := workflow.ExecuteTransition(c.Request.Context(), id, userId, input.Action, input.Comments)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func lineSuggestionHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	lineId, ok := pathId(c, "lineId")
	if !ok {
		return
	}
	po, err := models.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	for _, line := range po.Lines {
		if line.ID == lineId {
			available := decimal.Zero
			if product, err := utils.FetchModel[models.Product](c.Request.Context(), po.BrandId, line.ProductId); err == nil {
				available = product.AvailableStock()
			}
			c.JSON(http.StatusOK, gin.H{
				"available_stock": available,
				"suggestion":      workflow.SuggestLineDecision(line.RequestedQty, available),
			})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "purchase order line not found"})
}

func lineDecisionHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	lineId, ok := pathId(c, "lineId")
	if !ok {
		return
	}
	var input workflow.LineDecision
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	line, err := workflow.ApplyLineDecision(c.Request.Context(), id, lineId, input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func finalizePOHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	result := workflow.FinalizeApproval(c.Request.Context(), id, userId)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func poHistoryHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	rows, err := models.ListHistory(c.Request.Context(), "purchase_order", id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}

/* notifications */

func listNotificationsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	rows, err := models.ListNotifications(c.Request.Context(), c.Query("unread") == "true", limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": rows})
}

func unreadCountHandler(c *gin.Context) {
	count, err := models.UnreadNotificationCount(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func markReadHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := models.MarkNotificationRead(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func markAllReadHandler(c *gin.Context) {
	count, err := models.MarkAllNotificationsRead(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}

func updatePreferenceHandler(c *gin.Context) {
	var input models.UpdatePreferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	pref, err := models.UpsertNotificationPreference(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

func upsertRoleSettingHandler(c *gin.Context) {
	var input struct {
		TypeKey string `json:"type_key" binding:"required"`
		Role    string `json:"role" binding:"required"`
		Enabled *bool  `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	role := models.RoleName(input.Role)
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	ctx := c.Request.Context()
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	db := config.GetDB()

	var setting models.NotificationRoleSetting
	err := db.WithContext(ctx).
		Where("brand_id = ? AND type_key = ? AND role = ?", brandId, input.TypeKey, role).
		First(&setting).Error
	if err != nil {
		setting = models.NotificationRoleSetting{BrandId: brandId, TypeKey: input.TypeKey, Role: role}
	}
	setting.Enabled = *input.Enabled
	if err := db.WithContext(ctx).Save(&setting).Error; err != nil {
		handleError(c, err)
		return
	}

	// settings changed; the dispatcher cache must not serve stale roles
	workflow.ClearSettingsCache(ctx, brandId)
	c.JSON(http.StatusOK, setting)
}

/* calendar */

func listCalendarHandler(c *gin.Context) {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		from, _ = time.Parse(time.RFC3339, v)
	}
	if v := c.Query("to"); v != "" {
		to, _ = time.Parse(time.RFC3339, v)
	}
	events, err := models.ListCalendarEvents(c.Request.Context(), from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func createCalendarEventHandler(c *gin.Context) {
	var input models.NewCalendarEvent
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err).Error()})
		return
	}
	event, err := models.CreateCustomCalendarEvent(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func calendarSyncHandler(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "calendarSync")
	defer span.End()

	var input struct {
		EventTypes []string `json:"event_types"`
	}
	// body is optional; an empty body syncs every type
	_ = c.ShouldBindJSON(&input)

	brandId, _ := utils.GetBrandIdFromContext(ctx)
	counts, err := workflow.SyncCalendarEvents(ctx, brandId, input.EventTypes)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

/* pubsub push */

type pushEnvelope struct {
	Message struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// digestPushHandler receives the Pub/Sub push for queued digest items and
// flushes them. Always returns 2xx for malformed payloads so the
// subscription does not redeliver garbage forever.
func digestPushHandler(c *gin.Context) {
	if token := os.Getenv("PUBSUB_PUSH_TOKEN"); token != "" && c.Query("token") != token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid push token"})
		return
	}

	var envelope pushEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusOK, gin.H{"skipped": "bad envelope"})
		return
	}
	raw, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"skipped": "bad payload encoding"})
		return
	}
	var msg config.DigestMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.JSON(http.StatusOK, gin.H{"skipped": "bad payload"})
		return
	}

	flushed, err := workflow.FlushDigestItems(c.Request.Context(), msg.BrandId, msg.UserId)
	if err != nil {
		// 5xx so pubsub retries a transient db failure
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flushed": flushed})
}
