package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
)

// HandleUpdate entry point for all update kinds
func (s *Service) HandleUpdate(ctx context.Context, botID domain.BotId, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	if update.Message != nil {
		return s.HandleMessage(ctx, botID, update.Message, update.UpdateID)
	}

	if update.CallbackQuery != nil {
		return s.HandleCallbackQuery(ctx, botID, update.CallbackQuery, update.UpdateID)
	}

	return nil
}

// HandleMessage routes an incoming message to the bot's use case
func (s *Service) HandleMessage(ctx context.Context, botID domain.BotId, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat != nil && message.Chat.Type != "private" {
		s.Log.Warn("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", message.Chat.Type,
			"chat_id", message.Chat.ID,
		)
		return nil
	}

	botService, err := s.botService(botID)
	if err != nil {
		return err
	}

	user, err := botService.GetOrCreateUser(ctx, botID, message.From, message.Chat)
	if err != nil {
		s.Log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", message.From.ID,
			"update_id", updateID,
			"bot_id", botID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	if message.Text != nil {
		return s.routeTextMessage(ctx, botID, botService, user, *message.Text, updateID)
	}

	return nil
}

// HandleCallbackQuery routes an inline keyboard press to the bot's use case
func (s *Service) HandleCallbackQuery(ctx context.Context, botID domain.BotId, query *domain.CallbackQuery, updateID int64) error {
	if query == nil || query.From == nil {
		return fmt.Errorf("callback query is nil or has no from")
	}

	if query.Data == nil || *query.Data == "" {
		s.Log.Debug("ignoring callback query without data", "update_id", updateID)
		return nil
	}

	botService, err := s.botService(botID)
	if err != nil {
		return err
	}

	var chat *domain.Chat
	if query.Message != nil {
		chat = query.Message.Chat
	}

	user, err := botService.GetOrCreateUser(ctx, botID, query.From, chat)
	if err != nil {
		s.Log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", query.From.ID,
			"update_id", updateID,
			"bot_id", botID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	return botService.HandleCallback(ctx, botID, user, query.ID, *query.Data)
}

// botService resolves the use case behind a botID
func (s *Service) botService(botID domain.BotId) (service.IBotService, error) {
	botType, err := s.GetBotType(botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot_type for bot_id %s: %w", botID, err)
	}

	botService, ok := s.BotTypeToUsecase[botType]
	if !ok {
		return nil, fmt.Errorf("unknown bot_type: %s", botType)
	}

	return botService, nil
}

// routeTextMessage splits commands from plain text
func (s *Service) routeTextMessage(ctx context.Context, botID domain.BotId, botService service.IBotService, user *domain.User, text string, updateID int64) error {
	if IsCommand(text) {
		command := ParseCommand(text)
		return botService.HandleCommand(ctx, botID, user, command, updateID)
	}

	return botService.HandleText(ctx, botID, user, text, updateID)
}

func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	if idx := strings.Index(text, " "); idx != -1 {
		text = text[:idx]
	}

	return text
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
