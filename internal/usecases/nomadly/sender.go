package nomadly

import (
	"context"
	"fmt"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
)

// sendMessage sends a plain text message to the user
func (s *Service) sendMessage(ctx context.Context, botID domain.BotId, chatID int64, text string) error {
	if err := s.Telegram.SendMessage(ctx, botID, chatID, text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// sendMessageWithKeyboard sends a message with an inline keyboard
func (s *Service) sendMessageWithKeyboard(ctx context.Context, botID domain.BotId, chatID int64, text string, keyboard map[string]interface{}) error {
	if err := s.Telegram.SendMessageWithKeyboard(ctx, botID, chatID, text, keyboard); err != nil {
		return fmt.Errorf("failed to send message with keyboard: %w", err)
	}
	return nil
}

// answerCallback acknowledges an inline keyboard press, failures are only logged
func (s *Service) answerCallback(ctx context.Context, botID domain.BotId, callbackID string, text string, showAlert bool) {
	if err := s.Telegram.AnswerCallbackQuery(ctx, botID, callbackID, text, showAlert); err != nil {
		s.Log.Warn("failed to answer callback query",
			"error", err,
			"callback_id", callbackID,
		)
	}
}

// inlineButton one inline keyboard button
func inlineButton(text, callbackData string) map[string]interface{} {
	return map[string]interface{}{
		"text":          text,
		"callback_data": callbackData,
	}
}

// inlineKeyboard builds the reply_markup payload from button rows
func inlineKeyboard(rows ...[]map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"inline_keyboard": rows,
	}
}
