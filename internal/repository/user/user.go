package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/persistence"
	ports "github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/google/uuid"
)

type userColumns struct {
	TableName      string
	ID             string
	TelegramUserID string
	TelegramChatID string
	FirstName      string
	LastName       string
	Username       string
	ContactEmail   string
	CreatedAt      string
	UpdatedAt      string
	LastSeenAt     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
}

// New creates a repository for bot customers
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	cols := userColumns{
		TableName:      "tg_users",
		ID:             "id",
		TelegramUserID: "tg_id",
		TelegramChatID: "chat_id",
		FirstName:      "first_name",
		LastName:       "last_name",
		Username:       "username",
		ContactEmail:   "contact_email",
		CreatedAt:      "created_at",
		UpdatedAt:      "updated_at",
		LastSeenAt:     "last_seen_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns returns the column list for SELECT/INSERT (10 fields)
func (r *Repository) allColumns() string {
	return strings.Join([]string{
		r.columns.ID,
		r.columns.TelegramUserID,
		r.columns.TelegramChatID,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.Username,
		r.columns.ContactEmail,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.LastSeenAt,
	}, ", ")
}

// Create inserts a new user
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err := r.db.Exec(ctx, query,
		user.ID,
		user.TelegramUserID,
		user.TelegramChatID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.ContactEmail,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastSeenAt,
	)
	if err != nil {
		r.Log.Error("failed to create user",
			"error", err,
			"user_id", user.ID,
			"tg_id", user.TelegramUserID,
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.Log.Debug("user created", "user_id", user.ID, "tg_id", user.TelegramUserID)
	return nil
}

// GetByID returns the user by internal id, nil when unknown
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	var user domain.User
	err := r.db.Get(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to get user", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByTelegramID returns the user by Telegram account id, nil when unknown
func (r *Repository) GetByTelegramID(ctx context.Context, tgID int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.TelegramUserID,
	)

	var user domain.User
	err := r.db.Get(ctx, &user, query, tgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to get user by telegram id", "error", err, "tg_id", tgID)
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}

	return &user, nil
}

// Update rewrites the mutable profile fields
func (r *Repository) Update(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5 WHERE %s = $6`,
		r.columns.TableName,
		r.columns.TelegramChatID,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.Username,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query,
		user.TelegramChatID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		r.Log.Error("failed to update user", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// UpdateLastSeen bumps the last activity timestamp
func (r *Repository) UpdateLastSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.LastSeenAt,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query, seenAt, seenAt, id)
	if err != nil {
		r.Log.Error("failed to update last seen", "error", err, "user_id", id)
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	return nil
}

// SetContactEmail stores the registrant contact email
func (r *Repository) SetContactEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.ContactEmail,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query, email, time.Now().UTC(), id)
	if err != nil {
		r.Log.Error("failed to set contact email", "error", err, "user_id", id)
		return fmt.Errorf("failed to set contact email: %w", err)
	}

	r.Log.Debug("contact email updated", "user_id", id)
	return nil
}
