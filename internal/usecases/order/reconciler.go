package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/notify"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
)

// Reconciler consumes payment-gateway confirmation events and advances the
// order state machine. Gateway events are the sole source of payment truth:
// payment is never derived from a database status or a gateway poll.
//
// Delivery is at-least-once, so the same event id may arrive any number of
// times; exactly one application per event id is the core correctness
// property here.
type Reconciler struct {
	Orders      repository.IOrderRepo
	Locks       *LockTable
	Provisioner *Provisioner
	Notifier    notify.INotifier
	Log         *slog.Logger
}

func NewReconciler(
	orders repository.IOrderRepo,
	locks *LockTable,
	provisioner *Provisioner,
	notifier notify.INotifier,
	log *slog.Logger,
) *Reconciler {
	return &Reconciler{
		Orders:      orders,
		Locks:       locks,
		Provisioner: provisioner,
		Notifier:    notifier,
		Log:         log,
	}
}

// IngestConfirmation applies one gateway confirmation event.
// Returns domain.ErrUnknownOrder, domain.ErrDuplicateEvent,
// domain.ErrAmountMismatch or domain.ErrInvalidTransition on rejection;
// rejections never mutate the order. On success the order transitions to
// payment_confirmed and provisioning is started.
func (r *Reconciler) IngestConfirmation(ctx context.Context, event domain.ConfirmationEvent) error {
	confirmed, err := r.applyConfirmation(ctx, event)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	// Provisioning re-acquires the order lock itself; running it outside the
	// reconciler's critical section keeps external-call latency off the path
	// of competing events for the same order.
	if err := r.Provisioner.Provision(ctx, event.OrderID); err != nil {
		r.Log.Error("provisioning after payment confirmation failed",
			"order_id", event.OrderID,
			"error", err,
		)
		return fmt.Errorf("provision order %s: %w", event.OrderID, err)
	}

	return nil
}

// applyConfirmation performs the locked validate-and-transition section
func (r *Reconciler) applyConfirmation(ctx context.Context, event domain.ConfirmationEvent) (bool, error) {
	unlock := r.Locks.Lock(event.OrderID)
	defer unlock()

	ord, err := r.Orders.GetByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownOrder) {
			r.Log.Warn("confirmation event for unknown order",
				"order_id", event.OrderID,
				"event_id", event.EventID,
			)
			return false, domain.ErrUnknownOrder
		}
		return false, fmt.Errorf("get order %s: %w", event.OrderID, err)
	}

	applied, err := r.Orders.HasConfirmationEvent(ctx, event.OrderID, event.EventID)
	if err != nil {
		return false, fmt.Errorf("check event %s: %w", event.EventID, err)
	}
	if applied {
		// Expected under at-least-once delivery: a retry of an event already
		// credited. No state change, no double provisioning.
		r.Log.Info("duplicate confirmation event ignored",
			"order_id", event.OrderID,
			"event_id", event.EventID,
		)
		return false, domain.ErrDuplicateEvent
	}

	if event.Amount < ord.PriceAmount {
		// Underpayment is never silently accepted.
		r.Log.Warn("confirmation event below quoted price",
			"order_id", event.OrderID,
			"event_id", event.EventID,
			"amount", event.Amount,
			"quoted", ord.PriceAmount,
		)
		return false, fmt.Errorf("event %s amount %d below quoted %d: %w",
			event.EventID, event.Amount, ord.PriceAmount, domain.ErrAmountMismatch)
	}

	from := ord.State
	ev := PaymentConfirmed{EventID: event.EventID, Amount: event.Amount, Currency: event.Currency}
	if err := Apply(ord, ev, time.Now().UTC()); err != nil {
		// Stale webhook for an order that moved on (or was never payable);
		// rejected without side effects so a retry cannot re-run provisioning.
		r.Log.Warn("confirmation event rejected by state machine",
			"order_id", event.OrderID,
			"event_id", event.EventID,
			"state", from,
			"error", err,
		)
		return false, err
	}

	if err := r.Orders.InsertConfirmationEvent(ctx, &event); err != nil {
		if errors.Is(err, domain.ErrDuplicateEvent) {
			// Lost a race with a concurrent delivery of the same event.
			return false, domain.ErrDuplicateEvent
		}
		return false, fmt.Errorf("record event %s: %w", event.EventID, err)
	}

	if err := r.Orders.Update(ctx, ord); err != nil {
		return false, fmt.Errorf("update order %s: %w", ord.ID, err)
	}

	r.Log.Info("payment confirmed",
		"order_id", ord.ID,
		"event_id", event.EventID,
		"amount", event.Amount,
		"txid", event.TxID,
	)

	if r.Notifier != nil {
		r.Notifier.OrderStateChanged(ctx, ord, from, ord.State)
	}

	return true, nil
}
