package repository

import (
	"context"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/google/uuid"
)

// IOrderRepo persistence for purchase orders and their confirmation events
type IOrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// GetInFlight returns the single non-terminal order for (user, domain),
	// or nil when none exists.
	GetInFlight(ctx context.Context, userID uuid.UUID, domainName string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	// HasConfirmationEvent reports whether the event id was already applied
	// to the order.
	HasConfirmationEvent(ctx context.Context, orderID uuid.UUID, eventID string) (bool, error)
	// InsertConfirmationEvent records a gateway event. Returns
	// domain.ErrDuplicateEvent when the (order_id, event_id) pair was already
	// applied; the unique constraint is the idempotence key.
	InsertConfirmationEvent(ctx context.Context, event *domain.ConfirmationEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Order, error)
	// ListExpirable returns quoted/awaiting_payment orders past their expiry.
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]domain.Order, error)
	// ListStuckProvisioning returns paid orders whose provisioning did not
	// finish (payment_confirmed or dns_provisioned) older than the cutoff.
	ListStuckProvisioning(ctx context.Context, olderThan time.Time, limit int) ([]domain.Order, error)
}
