package repository

import (
	"context"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/google/uuid"
)

// IDomainRepo persistence for provisioned domains
type IDomainRepo interface {
	Create(ctx context.Context, d *domain.RegisteredDomain) error
	GetByName(ctx context.Context, domainName string) (*domain.RegisteredDomain, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.RegisteredDomain, error)
}
