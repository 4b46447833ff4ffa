package payment

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Config struct {
	WebhookToken string `envconfig:"WEBHOOK_TOKEN" required:"true"`
}

// Controller ingestion endpoint for gateway payment confirmations.
// Delivery is at-least-once: duplicates and stale events get 200 so the
// gateway stops retrying, only transient failures get 5xx.
type Controller struct {
	Ingest service.IPaymentIngest
	Token  string
	Log    *slog.Logger
}

func New(ingest service.IPaymentIngest, cfg *Config, log *slog.Logger) *Controller {
	return &Controller{
		Ingest: ingest,
		Token:  cfg.WebhookToken,
		Log:    log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhooks/payment/:order_id", c.handleConfirmation)
}

// confirmationRequest gateway callback body
type confirmationRequest struct {
	EventID       string `json:"event_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"` // cents
	Currency      string `json:"currency" binding:"required"`
	TxID          string `json:"tx_id"`
	Confirmations int    `json:"confirmations"`
}

func (c *Controller) handleConfirmation(ctx *gin.Context) {
	if ctx.Query("token") != c.Token {
		c.Log.Warn("payment webhook with bad token",
			"remote_addr", ctx.Request.RemoteAddr,
		)
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	orderID, err := uuid.Parse(ctx.Param("order_id"))
	if err != nil {
		c.Log.Warn("payment webhook with invalid order id",
			"order_id", ctx.Param("order_id"),
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req confirmationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind payment webhook request",
			"error", err,
			"order_id", orderID,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	event := domain.ConfirmationEvent{
		OrderID:       orderID,
		EventID:       req.EventID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		TxID:          req.TxID,
		Confirmations: req.Confirmations,
		ReceivedAt:    time.Now().UTC(),
	}

	err = c.Ingest.IngestConfirmation(ctx.Request.Context(), event)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"ok": true})

	case errors.Is(err, domain.ErrDuplicateEvent):
		c.Log.Debug("duplicate confirmation event",
			"order_id", orderID,
			"event_id", req.EventID,
		)
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "duplicate": true})

	case errors.Is(err, domain.ErrInvalidTransition):
		// stale retry after the order already advanced
		c.Log.Debug("confirmation event for wrong state",
			"order_id", orderID,
			"event_id", req.EventID,
		)
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true})

	case errors.Is(err, domain.ErrAmountMismatch):
		c.Log.Warn("underpaid confirmation event",
			"order_id", orderID,
			"event_id", req.EventID,
			"amount", req.Amount,
		)
		ctx.JSON(http.StatusOK, gin.H{"ok": false, "error": "amount below quoted price"})

	case errors.Is(err, domain.ErrUnknownOrder):
		c.Log.Warn("confirmation event for unknown order",
			"order_id", orderID,
			"event_id", req.EventID,
		)
		ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown order"})

	default:
		c.Log.Error("failed to ingest confirmation event",
			"error", err,
			"order_id", orderID,
			"event_id", req.EventID,
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
	}
}
