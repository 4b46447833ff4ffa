package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderState lifecycle state of a domain purchase order
type OrderState string

const (
	OrderStateQuoted           OrderState = "quoted"            // price quoted, no payment address yet
	OrderStateAwaitingPayment  OrderState = "awaiting_payment"  // payment address issued, waiting for gateway confirmation
	OrderStatePaymentConfirmed OrderState = "payment_confirmed" // payment received, provisioning not finished
	OrderStateDNSProvisioned   OrderState = "dns_provisioned"   // DNS zone created, registration pending
	OrderStateRegistered       OrderState = "registered"        // domain registered, order complete
	OrderStateFailed           OrderState = "failed"            // provisioning failed after payment, kept for manual recovery
	OrderStateExpired          OrderState = "expired"           // abandoned before payment
)

func (s OrderState) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed from the state
func (s OrderState) IsTerminal() bool {
	switch s {
	case OrderStateRegistered, OrderStateFailed, OrderStateExpired:
		return true
	}
	return false
}

// IsValid reports whether the value is a known order state
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateQuoted, OrderStateAwaitingPayment, OrderStatePaymentConfirmed,
		OrderStateDNSProvisioned, OrderStateRegistered, OrderStateFailed, OrderStateExpired:
		return true
	}
	return false
}

// Order one domain purchase attempt and its lifecycle state.
// State is mutated only through the order state machine; repositories persist,
// they never decide transitions.
type Order struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	DomainName        string     `json:"domain_name" db:"domain_name"`
	State             OrderState `json:"state" db:"state"`
	PriceAmount       int64      `json:"price_amount" db:"price_amount"` // cents
	Currency          string     `json:"currency" db:"currency"`         // "USD"
	Crypto            string     `json:"crypto" db:"crypto"`             // payment coin ticker, e.g. "btc"
	PaymentAddress    *string    `json:"payment_address,omitempty" db:"payment_address"`
	PaymentLink       *string    `json:"payment_link,omitempty" db:"payment_link"` // shortened payment page URL
	ConfirmationsSeen int        `json:"confirmations_seen" db:"confirmations_seen"`
	DNSZoneRef        *string    `json:"dns_zone_ref,omitempty" db:"dns_zone_ref"`
	RegistrarRef      *string    `json:"registrar_ref,omitempty" db:"registrar_ref"`
	FailureReason     *string    `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	ExpiresAt         time.Time  `json:"expires_at" db:"expires_at"`
}

// InFlight reports whether the order still occupies the (user, domain) slot.
// At most one in-flight order may exist per user and domain name.
func (o *Order) InFlight() bool {
	return !o.State.IsTerminal()
}

// ConfirmationEvent gateway-delivered notice that a payment was observed for
// an order. Delivery is at-least-once: the same event may arrive multiple
// times and must be applied at most once, keyed by EventID.
type ConfirmationEvent struct {
	OrderID       uuid.UUID `json:"order_id" db:"order_id"`
	EventID       string    `json:"event_id" db:"event_id"`
	Amount        int64     `json:"amount" db:"amount"` // cents, fiat value credited by the gateway
	Currency      string    `json:"currency" db:"currency"`
	TxID          string    `json:"txid" db:"tx_id"`
	Confirmations int       `json:"confirmations" db:"confirmations"`
	ReceivedAt    time.Time `json:"received_at" db:"received_at"`
}
