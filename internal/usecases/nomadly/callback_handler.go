package nomadly

import (
	"context"
	"errors"
	"strings"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/usecases/nomadly/texts"
)

// HandleCallback routes inline keyboard presses.
// Data formats: "search", "buy:<domain>", "pay:<crypto>:<domain>"
func (s *Service) HandleCallback(ctx context.Context, botID domain.BotId, user *domain.User, callbackID string, data string) error {
	s.answerCallback(ctx, botID, callbackID, "", false)

	switch {
	case data == "search":
		return s.HandleSearch(ctx, botID, user)
	case strings.HasPrefix(data, "buy:"):
		return s.handleBuy(ctx, botID, user, strings.TrimPrefix(data, "buy:"))
	case strings.HasPrefix(data, "pay:"):
		return s.handlePay(ctx, botID, user, strings.TrimPrefix(data, "pay:"))
	default:
		s.Log.Warn("unknown callback data",
			"data", data,
			"user_id", user.ID,
		)
		return nil
	}
}

// handleBuy reacts to the buy button under a search result
func (s *Service) handleBuy(ctx context.Context, botID domain.BotId, user *domain.User, domainName string) error {
	session := s.loadSession(ctx, user.ID)
	if session.LastQuote == nil || session.LastQuote.DomainName != domainName {
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.QuoteExpired)
	}

	// The registry requires a contact email before the first purchase
	if user.ContactEmail == nil || *user.ContactEmail == "" {
		session.Step = domain.SessionStepAwaitingEmail
		session.PendingBuy = &domainName
		s.saveSession(ctx, user.ID, session)
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.EmailPrompt)
	}

	return s.offerCryptoChoice(ctx, botID, user, domainName)
}

// offerCryptoChoice shows the coin selection keyboard for a quoted domain
func (s *Service) offerCryptoChoice(ctx context.Context, botID domain.BotId, user *domain.User, domainName string) error {
	var rows [][]map[string]interface{}
	for _, crypto := range s.Cfg.SupportedCryptos {
		rows = append(rows, []map[string]interface{}{
			inlineButton(strings.ToUpper(crypto), "pay:"+crypto+":"+domainName),
		})
	}

	return s.sendMessageWithKeyboard(ctx, botID, user.TelegramChatID, texts.PickCrypto, inlineKeyboard(rows...))
}

// handlePay creates the order and sends the payment instructions
func (s *Service) handlePay(ctx context.Context, botID domain.BotId, user *domain.User, data string) error {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		s.Log.Warn("malformed pay callback", "data", data, "user_id", user.ID)
		return nil
	}
	crypto, domainName := parts[0], parts[1]

	if !s.cryptoSupported(crypto) {
		s.Log.Warn("unsupported crypto in callback", "crypto", crypto, "user_id", user.ID)
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.OrderFailed)
	}

	session := s.loadSession(ctx, user.ID)
	if session.LastQuote == nil || session.LastQuote.DomainName != domainName {
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.QuoteExpired)
	}

	order, err := s.OrderService.CreateOrder(ctx, user, session.LastQuote, crypto)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderInFlight):
			return s.sendMessage(ctx, botID, user.TelegramChatID, texts.OrderInFlight)
		case errors.Is(err, domain.ErrDomainUnavailable):
			s.clearSession(ctx, user.ID)
			return s.sendMessage(ctx, botID, user.TelegramChatID, texts.DomainGone)
		default:
			s.Log.Error("failed to create order",
				"error", err,
				"user_id", user.ID,
				"domain", domainName,
			)
			return s.sendMessage(ctx, botID, user.TelegramChatID, texts.OrderFailed)
		}
	}

	s.clearSession(ctx, user.ID)

	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.FormatPaymentInstructions(order))
}
