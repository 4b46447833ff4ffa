package orderRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/persistence"
	ports "github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/google/uuid"
)

type orderColumns struct {
	TableName         string
	EventsTableName   string
	ID                string
	UserID            string
	DomainName        string
	State             string
	PriceAmount       string
	Currency          string
	Crypto            string
	PaymentAddress    string
	PaymentLink       string
	ConfirmationsSeen string
	DNSZoneRef        string
	RegistrarRef      string
	FailureReason     string
	CreatedAt         string
	UpdatedAt         string
	ExpiresAt         string

	EventOrderID       string
	EventID            string
	EventAmount        string
	EventCurrency      string
	EventTxID          string
	EventConfirmations string
	EventReceivedAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns orderColumns
}

// New creates a repository for purchase orders and their confirmation events
func New(db persistence.Persistence, log *slog.Logger) ports.IOrderRepo {
	cols := orderColumns{
		TableName:         "orders",
		EventsTableName:   "payment_events",
		ID:                "id",
		UserID:            "user_id",
		DomainName:        "domain_name",
		State:             "state",
		PriceAmount:       "price_amount",
		Currency:          "currency",
		Crypto:            "crypto",
		PaymentAddress:    "payment_address",
		PaymentLink:       "payment_link",
		ConfirmationsSeen: "confirmations_seen",
		DNSZoneRef:        "dns_zone_ref",
		RegistrarRef:      "registrar_ref",
		FailureReason:     "failure_reason",
		CreatedAt:         "created_at",
		UpdatedAt:         "updated_at",
		ExpiresAt:         "expires_at",

		EventOrderID:       "order_id",
		EventID:            "event_id",
		EventAmount:        "amount",
		EventCurrency:      "currency",
		EventTxID:          "tx_id",
		EventConfirmations: "confirmations",
		EventReceivedAt:    "received_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns returns the column list for SELECT/INSERT (16 fields)
func (r *Repository) allColumns() string {
	return strings.Join([]string{
		r.columns.ID,
		r.columns.UserID,
		r.columns.DomainName,
		r.columns.State,
		r.columns.PriceAmount,
		r.columns.Currency,
		r.columns.Crypto,
		r.columns.PaymentAddress,
		r.columns.PaymentLink,
		r.columns.ConfirmationsSeen,
		r.columns.DNSZoneRef,
		r.columns.RegistrarRef,
		r.columns.FailureReason,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.ExpiresAt,
	}, ", ")
}

// eventColumns returns the column list for the payment events table (7 fields)
func (r *Repository) eventColumns() string {
	return strings.Join([]string{
		r.columns.EventOrderID,
		r.columns.EventID,
		r.columns.EventAmount,
		r.columns.EventCurrency,
		r.columns.EventTxID,
		r.columns.EventConfirmations,
		r.columns.EventReceivedAt,
	}, ", ")
}

// Create inserts a new order
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.DomainName,
		string(order.State),
		order.PriceAmount,
		order.Currency,
		order.Crypto,
		order.PaymentAddress,
		order.PaymentLink,
		order.ConfirmationsSeen,
		order.DNSZoneRef,
		order.RegistrarRef,
		order.FailureReason,
		order.CreatedAt,
		order.UpdatedAt,
		order.ExpiresAt,
	)
	if err != nil {
		r.Log.Error("failed to create order",
			"error", err,
			"order_id", order.ID,
			"domain", order.DomainName,
		)
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.Log.Debug("order created",
		"order_id", order.ID,
		"user_id", order.UserID,
		"domain", order.DomainName,
	)
	return nil
}

// GetByID returns one order; domain.ErrUnknownOrder when absent
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	err := r.db.Get(ctx, &order, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("order not found", "order_id", id)
			return nil, domain.ErrUnknownOrder
		}
		r.Log.Error("failed to get order",
			"error", err,
			"order_id", id,
		)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// GetInFlight returns the single non-terminal order for (user, domain), nil when none
func (r *Repository) GetInFlight(ctx context.Context, userID uuid.UUID, domainName string) (*domain.Order, error) {
	var order domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s NOT IN ($3, $4, $5) LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.DomainName,
		r.columns.State,
	)

	err := r.db.Get(ctx, &order, query,
		userID,
		domainName,
		string(domain.OrderStateRegistered),
		string(domain.OrderStateFailed),
		string(domain.OrderStateExpired),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to get in-flight order",
			"error", err,
			"user_id", userID,
			"domain", domainName,
		)
		return nil, fmt.Errorf("failed to get in-flight order: %w", err)
	}

	return &order, nil
}

// Update persists the mutable order fields
func (r *Repository) Update(ctx context.Context, order *domain.Order) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8 WHERE %s = $9`,
		r.columns.TableName,
		r.columns.State,
		r.columns.PaymentAddress,
		r.columns.PaymentLink,
		r.columns.ConfirmationsSeen,
		r.columns.DNSZoneRef,
		r.columns.RegistrarRef,
		r.columns.FailureReason,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	affected, err := r.db.ExecWithResult(ctx, query,
		string(order.State),
		order.PaymentAddress,
		order.PaymentLink,
		order.ConfirmationsSeen,
		order.DNSZoneRef,
		order.RegistrarRef,
		order.FailureReason,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		r.Log.Error("failed to update order",
			"error", err,
			"order_id", order.ID,
		)
		return fmt.Errorf("failed to update order: %w", err)
	}
	if affected == 0 {
		return domain.ErrUnknownOrder
	}

	r.Log.Debug("order updated",
		"order_id", order.ID,
		"state", order.State,
	)
	return nil
}

// HasConfirmationEvent reports whether the event id was already applied
func (r *Repository) HasConfirmationEvent(ctx context.Context, orderID uuid.UUID, eventID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		r.columns.EventsTableName,
		r.columns.EventOrderID,
		r.columns.EventID,
	)

	var exists bool
	if err := r.db.Get(ctx, &exists, query, orderID, eventID); err != nil {
		r.Log.Error("failed to check confirmation event",
			"error", err,
			"order_id", orderID,
			"event_id", eventID,
		)
		return false, fmt.Errorf("failed to check confirmation event: %w", err)
	}

	return exists, nil
}

// InsertConfirmationEvent records a gateway event; the unique constraint on
// (order_id, event_id) is the idempotence key
func (r *Repository) InsertConfirmationEvent(ctx context.Context, event *domain.ConfirmationEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (%s, %s) DO NOTHING
	`,
		r.columns.EventsTableName,
		r.eventColumns(),
		r.columns.EventOrderID,
		r.columns.EventID,
	)

	affected, err := r.db.ExecWithResult(ctx, query,
		event.OrderID,
		event.EventID,
		event.Amount,
		event.Currency,
		event.TxID,
		event.Confirmations,
		event.ReceivedAt,
	)
	if err != nil {
		r.Log.Error("failed to insert confirmation event",
			"error", err,
			"order_id", event.OrderID,
			"event_id", event.EventID,
		)
		return fmt.Errorf("failed to insert confirmation event: %w", err)
	}
	if affected == 0 {
		return domain.ErrDuplicateEvent
	}

	return nil
}

// ListByUser returns the user's most recent orders
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Order, error) {
	var orders []domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &orders, query, userID, limit); err != nil {
		r.Log.Error("failed to list orders",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// ListExpirable returns unpaid orders past their expiry
func (r *Repository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]domain.Order, error) {
	var orders []domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IN ($1, $2) AND %s < $3 ORDER BY %s LIMIT $4`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.State,
		r.columns.ExpiresAt,
		r.columns.ExpiresAt,
	)

	err := r.db.Select(ctx, &orders, query,
		string(domain.OrderStateQuoted),
		string(domain.OrderStateAwaitingPayment),
		now,
		limit,
	)
	if err != nil {
		r.Log.Error("failed to list expirable orders", "error", err)
		return nil, fmt.Errorf("failed to list expirable orders: %w", err)
	}

	return orders, nil
}

// ListStuckProvisioning returns paid orders whose provisioning did not finish
func (r *Repository) ListStuckProvisioning(ctx context.Context, olderThan time.Time, limit int) ([]domain.Order, error) {
	var orders []domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IN ($1, $2) AND %s < $3 ORDER BY %s LIMIT $4`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.UpdatedAt,
	)

	err := r.db.Select(ctx, &orders, query,
		string(domain.OrderStatePaymentConfirmed),
		string(domain.OrderStateDNSProvisioned),
		olderThan,
		limit,
	)
	if err != nil {
		r.Log.Error("failed to list stuck orders", "error", err)
		return nil, fmt.Errorf("failed to list stuck orders: %w", err)
	}

	return orders, nil
}
