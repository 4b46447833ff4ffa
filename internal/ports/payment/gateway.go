package payment

import (
	"context"

	"github.com/google/uuid"
)

// CreateAddressRequest request for a gateway receive address for one order
type CreateAddressRequest struct {
	OrderID     uuid.UUID
	Crypto      string // coin ticker, e.g. "btc"
	Amount      int64  // cents, fiat value to collect
	Currency    string
	CallbackURL string // webhook the gateway will call with confirmation events
}

// PaymentAddress gateway-assigned receive address
type PaymentAddress struct {
	Address    string
	PaymentURL string // gateway-hosted checkout page, if any
}

// IGateway narrow capability interface for the crypto payment gateway.
// Confirmation events arrive asynchronously on the callback URL; polling the
// gateway is never used as a source of payment truth.
type IGateway interface {
	CreatePaymentAddress(ctx context.Context, req CreateAddressRequest) (*PaymentAddress, error)
}
