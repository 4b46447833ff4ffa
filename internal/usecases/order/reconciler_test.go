package order

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testProvisioner(orders *fakeOrderRepo, users *fakeUserRepo, dns *fakeDNS, reg *fakeRegistrar, locks *LockTable, notifier *recordingNotifier) *Provisioner {
	// avoid a typed-nil interface: a nil *recordingNotifier must become a nil INotifier
	var n notify.INotifier
	if notifier != nil {
		n = notifier
	}
	return NewProvisioner(
		orders, users, &fakeDomainRepo{}, dns, reg, locks, n,
		ProvisionConfig{MaxAttempts: 3, BackoffBase: time.Millisecond, CallTimeout: time.Second},
		testLogger(),
	)
}

func awaitingOrder(user *domain.User) *domain.Order {
	now := time.Now().UTC()
	addr := "bc1q-test-address"
	return &domain.Order{
		ID:             uuid.New(),
		UserID:         user.ID,
		DomainName:     "offshore-host.sbs",
		State:          domain.OrderStateAwaitingPayment,
		PriceAmount:    1000, // $10.00
		Currency:       "USD",
		Crypto:         "btc",
		PaymentAddress: &addr,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func testUser() *domain.User {
	email := "captain@example.com"
	return &domain.User{
		ID:             uuid.New(),
		TelegramUserID: 100500,
		TelegramChatID: 100500,
		FirstName:      "Nomad",
		ContactEmail:   &email,
	}
}

func TestReconciler_IngestConfirmation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("exact payment confirms and provisions the order", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		notifier := &recordingNotifier{}
		dns := &fakeDNS{}
		reg := &fakeRegistrar{}
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(user), dns, reg, locks, notifier), notifier, testLogger())

		err := rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e1", Amount: 1000, Currency: "USD", TxID: "tx1",
		})
		require.NoError(t, err)

		got := orders.get(ord.ID)
		assert.Equal(t, domain.OrderStateRegistered, got.State)
		assert.Equal(t, 1, got.ConfirmationsSeen)
		require.NotNil(t, got.DNSZoneRef)
		require.NotNil(t, got.RegistrarRef)
		assert.Equal(t, 1, dns.createZoneCalls)
		assert.Equal(t, 1, reg.registerCalls)
		assert.Equal(t, []string{
			"awaiting_payment->payment_confirmed",
			"payment_confirmed->dns_provisioned",
			"dns_provisioned->registered",
		}, notifier.all())
	})

	t.Run("duplicate event id is a no-op", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		notifier := &recordingNotifier{}
		dns := &fakeDNS{}
		reg := &fakeRegistrar{}
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(user), dns, reg, locks, notifier), notifier, testLogger())

		ev := domain.ConfirmationEvent{OrderID: ord.ID, EventID: "e1", Amount: 1000, Currency: "USD"}
		require.NoError(t, rec.IngestConfirmation(ctx, ev))

		seenAfterFirst := orders.get(ord.ID).ConfirmationsSeen
		stateAfterFirst := orders.get(ord.ID).State

		err := rec.IngestConfirmation(ctx, ev)
		require.ErrorIs(t, err, domain.ErrDuplicateEvent)

		got := orders.get(ord.ID)
		assert.Equal(t, seenAfterFirst, got.ConfirmationsSeen, "resend must not re-credit")
		assert.Equal(t, stateAfterFirst, got.State, "resend must not change state")
		assert.Equal(t, 1, dns.createZoneCalls, "resend must not re-trigger provisioning")
		assert.Equal(t, 1, reg.registerCalls)
	})

	t.Run("underpayment never reaches payment confirmed", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(user), &fakeDNS{}, &fakeRegistrar{}, locks, nil), nil, testLogger())

		err := rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e1", Amount: 999, Currency: "USD",
		})
		require.ErrorIs(t, err, domain.ErrAmountMismatch)

		got := orders.get(ord.ID)
		assert.Equal(t, domain.OrderStateAwaitingPayment, got.State)
		assert.Zero(t, got.ConfirmationsSeen)

		// The same underpaid event retried is still an amount mismatch, not a
		// duplicate: it was never applied.
		err = rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e1", Amount: 999, Currency: "USD",
		})
		require.ErrorIs(t, err, domain.ErrAmountMismatch)
	})

	t.Run("overpayment is accepted", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(user), &fakeDNS{}, &fakeRegistrar{}, locks, nil), nil, testLogger())

		err := rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e1", Amount: 1200, Currency: "USD",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStateRegistered, orders.get(ord.ID).State)
	})

	t.Run("unknown order", func(t *testing.T) {
		t.Parallel()

		locks := NewLockTable()
		orders := newFakeOrderRepo()
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(), &fakeDNS{}, &fakeRegistrar{}, locks, nil), nil, testLogger())

		err := rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: uuid.New(), EventID: "e1", Amount: 1000,
		})
		require.ErrorIs(t, err, domain.ErrUnknownOrder)
	})

	t.Run("confirmation for a quoted order is an invalid transition", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		ord.State = domain.OrderStateQuoted
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(user), &fakeDNS{}, &fakeRegistrar{}, locks, nil), nil, testLogger())

		err := rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e1", Amount: 1000,
		})
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.OrderStateQuoted, orders.get(ord.ID).State)
	})

	t.Run("stale webhook retry after completion cannot re-run registration", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		dns := &fakeDNS{}
		reg := &fakeRegistrar{}
		rec := NewReconciler(orders, locks, testProvisioner(orders, newFakeUserRepo(user), dns, reg, locks, nil), nil, testLogger())

		require.NoError(t, rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e1", Amount: 1000,
		}))

		// A different event id arriving after the order completed is rejected
		// by the state machine, not applied as a second payment.
		err := rec.IngestConfirmation(ctx, domain.ConfirmationEvent{
			OrderID: ord.ID, EventID: "e2", Amount: 1000,
		})
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, 1, orders.get(ord.ID).ConfirmationsSeen)
		assert.Equal(t, 1, reg.registerCalls)
	})
}
