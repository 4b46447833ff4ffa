package repository

import (
	"context"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/google/uuid"
)

// IUserRepo persistence for bot customers
type IUserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error
	SetContactEmail(ctx context.Context, id uuid.UUID, email string) error
}
