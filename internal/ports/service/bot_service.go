package service

import (
	"context"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
)

// IBotService interface for the business logic behind one bot
type IBotService interface {
	HandleCommand(ctx context.Context, botID domain.BotId, user *domain.User, command string, updateID int64) error
	HandleText(ctx context.Context, botID domain.BotId, user *domain.User, text string, updateID int64) error
	HandleCallback(ctx context.Context, botID domain.BotId, user *domain.User, callbackID string, data string) error
	GetOrCreateUser(ctx context.Context, botID domain.BotId, tgUser *domain.TelegramUser, chat *domain.Chat) (*domain.User, error)
}
