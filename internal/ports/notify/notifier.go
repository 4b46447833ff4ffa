package notify

import (
	"context"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
)

// INotifier delivery sink for order lifecycle events. Delivery failure never
// rolls back an order state change.
type INotifier interface {
	OrderStateChanged(ctx context.Context, order *domain.Order, from, to domain.OrderState)
}
