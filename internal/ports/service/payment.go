package service

import (
	"context"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
)

// IPaymentIngest idempotent ingestion endpoint for gateway confirmation
// events, keyed by event id
type IPaymentIngest interface {
	IngestConfirmation(ctx context.Context, event domain.ConfirmationEvent) error
}
