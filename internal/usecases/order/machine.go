package order

import (
	"fmt"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
)

// Event drives an order state transition
type Event interface {
	Name() string
}

// PaymentAddressIssued the gateway assigned a receive address for the order
type PaymentAddressIssued struct {
	Address     string
	PaymentLink string
}

// PaymentConfirmed a deduplicated gateway confirmation was applied
type PaymentConfirmed struct {
	EventID  string
	Amount   int64
	Currency string
}

// DNSReady the DNS zone for the domain was created
type DNSReady struct {
	ZoneRef string
}

// RegistrationSucceeded the registrar completed the registration
type RegistrationSucceeded struct {
	RegistrarRef string
}

// StepFailed a provisioning step failed terminally
type StepFailed struct {
	Reason string
}

// TimeoutElapsed the order went unpaid past its expiry
type TimeoutElapsed struct{}

func (PaymentAddressIssued) Name() string  { return "payment_address_issued" }
func (PaymentConfirmed) Name() string      { return "payment_confirmed" }
func (DNSReady) Name() string              { return "dns_ready" }
func (RegistrationSucceeded) Name() string { return "registration_succeeded" }
func (StepFailed) Name() string            { return "step_failed" }
func (TimeoutElapsed) Name() string        { return "timeout_elapsed" }

// Transition is the order state machine: a pure function of (state, event).
// It returns the next state, or domain.ErrInvalidTransition when the event is
// not legal for the current state. Illegal events never mutate anything; the
// caller decides whether the rejection is worth more than a log line.
func Transition(state domain.OrderState, ev Event) (domain.OrderState, error) {
	switch ev.(type) {
	case PaymentAddressIssued:
		if state == domain.OrderStateQuoted {
			return domain.OrderStateAwaitingPayment, nil
		}
	case PaymentConfirmed:
		if state == domain.OrderStateAwaitingPayment {
			return domain.OrderStatePaymentConfirmed, nil
		}
	case DNSReady:
		if state == domain.OrderStatePaymentConfirmed {
			return domain.OrderStateDNSProvisioned, nil
		}
	case RegistrationSucceeded:
		if state == domain.OrderStateDNSProvisioned {
			return domain.OrderStateRegistered, nil
		}
	case StepFailed:
		if !state.IsTerminal() {
			return domain.OrderStateFailed, nil
		}
	case TimeoutElapsed:
		// Only before payment: money received must never silently vanish.
		if state == domain.OrderStateQuoted || state == domain.OrderStateAwaitingPayment {
			return domain.OrderStateExpired, nil
		}
	default:
		return state, fmt.Errorf("unknown event %T: %w", ev, domain.ErrInvalidTransition)
	}

	return state, fmt.Errorf("event %s not allowed in state %s: %w", ev.Name(), state, domain.ErrInvalidTransition)
}

// Apply validates the transition and mutates the order accordingly. The only
// place in the codebase that writes Order.State.
func Apply(order *domain.Order, ev Event, now time.Time) error {
	next, err := Transition(order.State, ev)
	if err != nil {
		return err
	}

	switch e := ev.(type) {
	case PaymentAddressIssued:
		order.PaymentAddress = &e.Address
		if e.PaymentLink != "" {
			order.PaymentLink = &e.PaymentLink
		}
	case PaymentConfirmed:
		order.ConfirmationsSeen++
	case DNSReady:
		order.DNSZoneRef = &e.ZoneRef
	case RegistrationSucceeded:
		order.RegistrarRef = &e.RegistrarRef
	case StepFailed:
		order.FailureReason = &e.Reason
	}

	order.State = next
	order.UpdatedAt = now
	return nil
}
