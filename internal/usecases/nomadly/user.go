package nomadly

import (
	"context"
	"fmt"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/google/uuid"
)

// GetOrCreateUser finds the user by Telegram ID or creates a new one
func (s *Service) GetOrCreateUser(ctx context.Context, botID domain.BotId, tgUser *domain.TelegramUser, chat *domain.Chat) (*domain.User, error) {
	user, err := s.UserRepo.GetByTelegramID(ctx, tgUser.ID)
	if err == nil && user != nil {
		// Known user, refresh the profile if it changed
		needsUpdate := false
		if user.FirstName != tgUser.FirstName {
			user.FirstName = tgUser.FirstName
			needsUpdate = true
		}
		if (tgUser.LastName != nil && (user.LastName == nil || *user.LastName != *tgUser.LastName)) ||
			(tgUser.LastName == nil && user.LastName != nil) {
			user.LastName = tgUser.LastName
			needsUpdate = true
		}
		if (tgUser.Username != nil && (user.Username == nil || *user.Username != *tgUser.Username)) ||
			(tgUser.Username == nil && user.Username != nil) {
			user.Username = tgUser.Username
			needsUpdate = true
		}
		if chat != nil && user.TelegramChatID != chat.ID {
			user.TelegramChatID = chat.ID
			needsUpdate = true
		}

		if needsUpdate {
			user.UpdatedAt = time.Now().UTC()
			if err := s.UserRepo.Update(ctx, user); err != nil {
				s.Log.Warn("failed to update user",
					"error", err,
					"user_id", user.ID,
				)
			}
		}

		if err := s.UserRepo.UpdateLastSeen(ctx, user.ID, time.Now().UTC()); err != nil {
			s.Log.Warn("failed to update last seen",
				"error", err,
				"user_id", user.ID,
			)
		}

		return user, nil
	}

	chatID := tgUser.ID
	if chat != nil {
		chatID = chat.ID
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:             uuid.New(),
		TelegramUserID: tgUser.ID,
		TelegramChatID: chatID,
		FirstName:      tgUser.FirstName,
		LastName:       tgUser.LastName,
		Username:       tgUser.Username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.Log.Info("user created",
		"user_id", user.ID,
		"telegram_user_id", tgUser.ID,
		"bot_id", botID,
	)

	return user, nil
}
