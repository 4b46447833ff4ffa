package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller operator endpoints for stuck or failed orders
type Controller struct {
	OrderService *orderUsecase.Service
	Log          *slog.Logger
}

func New(
	orderService *orderUsecase.Service,
	log *slog.Logger,
) *Controller {
	return &Controller{
		OrderService: orderService,
		Log:          log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin")
	{
		admin.POST("/orders/:order_id/retry", c.retryProvisioning)
	}
}

// RetryResponse result of a manual provisioning retry
type RetryResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// retryProvisioning resumes provisioning for a paid order
func (c *Controller) retryProvisioning(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("order_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, RetryResponse{
			Success:      false,
			ErrorMessage: "invalid order id",
		})
		return
	}

	c.Log.Info("manual provisioning retry requested", "order_id", orderID)

	err = c.OrderService.RetryProvisioning(ctx.Request.Context(), orderID)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, RetryResponse{Success: true})

	case errors.Is(err, domain.ErrUnknownOrder):
		ctx.JSON(http.StatusNotFound, RetryResponse{
			Success:      false,
			ErrorMessage: "unknown order",
		})

	case errors.Is(err, domain.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, RetryResponse{
			Success:      false,
			ErrorMessage: "order is not in a retryable state",
		})

	default:
		c.Log.Error("manual provisioning retry failed",
			"error", err,
			"order_id", orderID,
		)
		ctx.JSON(http.StatusInternalServerError, RetryResponse{
			Success:      false,
			ErrorMessage: "retry failed",
		})
	}
}
