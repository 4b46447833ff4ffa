package order

import (
	"context"
	"testing"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidOrder(user *domain.User) *domain.Order {
	ord := awaitingOrder(user)
	ord.State = domain.OrderStatePaymentConfirmed
	ord.ConfirmationsSeen = 1
	return ord
}

func TestProvisioner_Provision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("transient dns failures are retried up to the attempt limit", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := paidOrder(user)
		orders := newFakeOrderRepo(ord)
		dns := &fakeDNS{createZoneErrs: []error{transientErr("cloudflare", "create_zone"), transientErr("cloudflare", "create_zone"), nil}}
		reg := &fakeRegistrar{}
		locks := NewLockTable()
		p := testProvisioner(orders, newFakeUserRepo(user), dns, reg, locks, nil)

		require.NoError(t, p.Provision(ctx, ord.ID))
		assert.Equal(t, 3, dns.createZoneCalls)
		assert.Equal(t, domain.OrderStateRegistered, orders.get(ord.ID).State)
	})

	t.Run("dns retry exhaustion fails the order with the reason recorded", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := paidOrder(user)
		orders := newFakeOrderRepo(ord)
		dns := &fakeDNS{createZoneErrs: []error{
			transientErr("cloudflare", "create_zone"),
			transientErr("cloudflare", "create_zone"),
			transientErr("cloudflare", "create_zone"),
		}}
		locks := NewLockTable()
		p := testProvisioner(orders, newFakeUserRepo(user), dns, &fakeRegistrar{}, locks, nil)

		err := p.Provision(ctx, ord.ID)
		require.Error(t, err)

		got := orders.get(ord.ID)
		assert.Equal(t, 3, dns.createZoneCalls, "configured retry limit")
		assert.Equal(t, domain.OrderStateFailed, got.State)
		require.NotNil(t, got.FailureReason)
		assert.Contains(t, *got.FailureReason, "dns zone creation")
	})

	t.Run("registrar failure after zone creation keeps the zone and resumes at registration", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := paidOrder(user)
		orders := newFakeOrderRepo(ord)
		dns := &fakeDNS{}
		reg := &fakeRegistrar{registerErrs: []error{
			transientErr("openprovider", "register"),
			transientErr("openprovider", "register"),
			transientErr("openprovider", "register"),
			nil, // first attempt of the manual retry succeeds
		}}
		locks := NewLockTable()
		p := testProvisioner(orders, newFakeUserRepo(user), dns, reg, locks, nil)

		err := p.Provision(ctx, ord.ID)
		require.Error(t, err)

		got := orders.get(ord.ID)
		// The zone survived the failure and the partial state is recorded, so
		// a retry resumes at registration only.
		require.NotNil(t, got.DNSZoneRef)
		assert.Equal(t, domain.OrderStateDNSProvisioned, got.State)
		assert.Equal(t, 1, dns.createZoneCalls)

		require.NoError(t, p.Provision(ctx, got.ID))

		final := orders.get(ord.ID)
		assert.Equal(t, domain.OrderStateRegistered, final.State)
		assert.Equal(t, 1, dns.createZoneCalls, "zone must not be recreated on retry")
		assert.Equal(t, 4, reg.registerCalls)
	})

	t.Run("registrar rejection is terminal without retries", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := paidOrder(user)
		orders := newFakeOrderRepo(ord)
		reg := &fakeRegistrar{registerErrs: []error{
			&domain.ExternalServiceRejected{Service: "openprovider", Op: "register", Reason: "tld not supported for this account"},
		}}
		locks := NewLockTable()
		p := testProvisioner(orders, newFakeUserRepo(user), &fakeDNS{}, reg, locks, nil)

		err := p.Provision(ctx, ord.ID)
		require.Error(t, err)

		got := orders.get(ord.ID)
		assert.Equal(t, 1, reg.registerCalls, "rejection must not be retried")
		assert.Equal(t, domain.OrderStateFailed, got.State)
		require.NotNil(t, got.FailureReason)
		assert.Contains(t, *got.FailureReason, "tld not supported")
	})

	t.Run("dns provisioned order skips zone creation entirely", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := paidOrder(user)
		zone := "zone-existing"
		ord.State = domain.OrderStateDNSProvisioned
		ord.DNSZoneRef = &zone
		orders := newFakeOrderRepo(ord)
		dns := &fakeDNS{}
		reg := &fakeRegistrar{}
		locks := NewLockTable()
		p := testProvisioner(orders, newFakeUserRepo(user), dns, reg, locks, nil)

		require.NoError(t, p.Provision(ctx, ord.ID))
		assert.Zero(t, dns.createZoneCalls)
		assert.Equal(t, 1, reg.registerCalls)
		assert.Equal(t, domain.OrderStateRegistered, orders.get(ord.ID).State)
	})

	t.Run("unpaid order cannot be provisioned", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := awaitingOrder(user)
		orders := newFakeOrderRepo(ord)
		locks := NewLockTable()
		p := testProvisioner(orders, newFakeUserRepo(user), &fakeDNS{}, &fakeRegistrar{}, locks, nil)

		err := p.Provision(ctx, ord.ID)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.OrderStateAwaitingPayment, orders.get(ord.ID).State)
	})

	t.Run("registered domain inventory row is written", func(t *testing.T) {
		t.Parallel()

		user := testUser()
		ord := paidOrder(user)
		orders := newFakeOrderRepo(ord)
		domains := &fakeDomainRepo{}
		locks := NewLockTable()
		p := NewProvisioner(
			orders, newFakeUserRepo(user), domains, &fakeDNS{}, &fakeRegistrar{}, locks, nil,
			ProvisionConfig{MaxAttempts: 3, BackoffBase: time.Millisecond, CallTimeout: time.Second},
			testLogger(),
		)

		require.NoError(t, p.Provision(ctx, ord.ID))

		rows, err := domains.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, ord.DomainName, rows[0].DomainName)
		assert.Equal(t, ord.ID, rows[0].OrderID)
		assert.NotEmpty(t, rows[0].Nameservers)
	})
}
