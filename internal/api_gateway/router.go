package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/transactionprocessing/transaction-processor/internal/api_gateway/handler"
	"github.com/transactionprocessing/transaction-processor/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	settlementHandler *handler.SettlementHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Transaction workflows
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/logons", transactionHandler.ProcessLogon)
			transactions.POST("/sales", transactionHandler.ProcessSale)
			transactions.POST("/reconciliations", transactionHandler.ProcessReconciliation)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.POST("/:id/receipts", transactionHandler.RequestReceipt)
			transactions.POST("/:id/receipts/resend", transactionHandler.ResendReceipt)
			transactions.POST("/:id/cost-price", transactionHandler.RecordCostPrice)
		}

		// Settlement commands, processed asynchronously
		settlements := v1.Group("/settlements")
		{
			settlements.POST("/process", settlementHandler.ProcessSettlement)
			settlements.POST("/fees/pending", settlementHandler.AddMerchantFee)
			settlements.POST("/fees/settled", settlementHandler.AddSettledFee)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
