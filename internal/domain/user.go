package domain

import (
	"time"

	"github.com/google/uuid"
)

// User a bot customer. One row per Telegram account.
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TelegramUserID int64      `json:"telegram_user_id" db:"tg_id"`
	TelegramChatID int64      `json:"telegram_chat_id" db:"chat_id"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       *string    `json:"last_name,omitempty" db:"last_name"`
	Username       *string    `json:"username,omitempty" db:"username"`
	ContactEmail   *string    `json:"contact_email,omitempty" db:"contact_email"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
}
