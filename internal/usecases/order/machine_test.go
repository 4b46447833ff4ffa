package order

import (
	"testing"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		state   domain.OrderState
		event   Event
		want    domain.OrderState
		wantErr bool
	}{
		{
			name:  "address issued moves quoted to awaiting payment",
			state: domain.OrderStateQuoted,
			event: PaymentAddressIssued{Address: "bc1q"},
			want:  domain.OrderStateAwaitingPayment,
		},
		{
			name:  "confirmation moves awaiting payment to payment confirmed",
			state: domain.OrderStateAwaitingPayment,
			event: PaymentConfirmed{EventID: "e1", Amount: 1000},
			want:  domain.OrderStatePaymentConfirmed,
		},
		{
			name:  "dns ready moves payment confirmed to dns provisioned",
			state: domain.OrderStatePaymentConfirmed,
			event: DNSReady{ZoneRef: "z1"},
			want:  domain.OrderStateDNSProvisioned,
		},
		{
			name:  "registration completes the order",
			state: domain.OrderStateDNSProvisioned,
			event: RegistrationSucceeded{RegistrarRef: "r1"},
			want:  domain.OrderStateRegistered,
		},
		{
			name:  "step failure from any non-terminal state",
			state: domain.OrderStatePaymentConfirmed,
			event: StepFailed{Reason: "zone creation exhausted"},
			want:  domain.OrderStateFailed,
		},
		{
			name:  "timeout expires a quoted order",
			state: domain.OrderStateQuoted,
			event: TimeoutElapsed{},
			want:  domain.OrderStateExpired,
		},
		{
			name:  "timeout expires an awaiting payment order",
			state: domain.OrderStateAwaitingPayment,
			event: TimeoutElapsed{},
			want:  domain.OrderStateExpired,
		},
		{
			name:    "timeout after payment is rejected",
			state:   domain.OrderStatePaymentConfirmed,
			event:   TimeoutElapsed{},
			wantErr: true,
		},
		{
			name:    "confirmation before address issuance is rejected",
			state:   domain.OrderStateQuoted,
			event:   PaymentConfirmed{EventID: "e1"},
			wantErr: true,
		},
		{
			name:    "stale confirmation after provisioning is rejected",
			state:   domain.OrderStateDNSProvisioned,
			event:   PaymentConfirmed{EventID: "e2"},
			wantErr: true,
		},
		{
			name:    "dns ready without payment is rejected",
			state:   domain.OrderStateAwaitingPayment,
			event:   DNSReady{ZoneRef: "z1"},
			wantErr: true,
		},
		{
			name:    "registration without zone is rejected",
			state:   domain.OrderStatePaymentConfirmed,
			event:   RegistrationSucceeded{RegistrarRef: "r1"},
			wantErr: true,
		},
		{
			name:    "terminal registered accepts nothing",
			state:   domain.OrderStateRegistered,
			event:   StepFailed{Reason: "x"},
			wantErr: true,
		},
		{
			name:    "terminal failed accepts nothing",
			state:   domain.OrderStateFailed,
			event:   PaymentConfirmed{EventID: "e3"},
			wantErr: true,
		},
		{
			name:    "terminal expired accepts nothing",
			state:   domain.OrderStateExpired,
			event:   TimeoutElapsed{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Transition(tt.state, tt.event)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Equal(t, tt.state, got, "rejected event must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("mutates order fields per event", func(t *testing.T) {
		t.Parallel()

		ord := &domain.Order{State: domain.OrderStateQuoted}

		require.NoError(t, Apply(ord, PaymentAddressIssued{Address: "bc1q", PaymentLink: "https://nmd.ly/abc"}, now))
		require.NotNil(t, ord.PaymentAddress)
		assert.Equal(t, "bc1q", *ord.PaymentAddress)
		assert.Equal(t, domain.OrderStateAwaitingPayment, ord.State)
		assert.Equal(t, now, ord.UpdatedAt)

		require.NoError(t, Apply(ord, PaymentConfirmed{EventID: "e1", Amount: 1000}, now))
		assert.Equal(t, 1, ord.ConfirmationsSeen)

		require.NoError(t, Apply(ord, DNSReady{ZoneRef: "zone-1"}, now))
		require.NotNil(t, ord.DNSZoneRef)
		assert.Equal(t, "zone-1", *ord.DNSZoneRef)

		require.NoError(t, Apply(ord, RegistrationSucceeded{RegistrarRef: "reg-1"}, now))
		require.NotNil(t, ord.RegistrarRef)
		assert.Equal(t, "reg-1", *ord.RegistrarRef)
		assert.Equal(t, domain.OrderStateRegistered, ord.State)
	})

	t.Run("rejected event leaves order untouched", func(t *testing.T) {
		t.Parallel()

		ord := &domain.Order{State: domain.OrderStateQuoted, ConfirmationsSeen: 0}
		err := Apply(ord, PaymentConfirmed{EventID: "e1", Amount: 1000}, now)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.OrderStateQuoted, ord.State)
		assert.Zero(t, ord.ConfirmationsSeen)
		assert.True(t, ord.UpdatedAt.IsZero())
	})

	t.Run("failure reason is preserved", func(t *testing.T) {
		t.Parallel()

		ord := &domain.Order{State: domain.OrderStatePaymentConfirmed}
		require.NoError(t, Apply(ord, StepFailed{Reason: "dns zone creation: boom"}, now))
		require.NotNil(t, ord.FailureReason)
		assert.Equal(t, "dns zone creation: boom", *ord.FailureReason)
		assert.Equal(t, domain.OrderStateFailed, ord.State)
	})
}
