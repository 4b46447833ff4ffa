package nomadly

import (
	"context"
	"regexp"
	"strings"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/usecases/nomadly/texts"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// HandleText routes plain text by the conversation step
func (s *Service) HandleText(ctx context.Context, botID domain.BotId, user *domain.User, text string, updateID int64) error {
	text = strings.TrimSpace(text)
	session := s.loadSession(ctx, user.ID)

	switch session.Step {
	case domain.SessionStepAwaitingEmail:
		return s.handleEmailInput(ctx, botID, user, session, text)
	case domain.SessionStepAwaitingQuery:
		return s.handleSearchQuery(ctx, botID, user, text)
	default:
		// Outside of a dialog a domain-shaped message is treated as a search
		if _, err := orderUsecase.NormalizeDomainName(text); err == nil {
			return s.handleSearchQuery(ctx, botID, user, text)
		}
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.SearchHint)
	}
}

// handleSearchQuery quotes a domain and offers to buy it
func (s *Service) handleSearchQuery(ctx context.Context, botID domain.BotId, user *domain.User, query string) error {
	quote, err := s.OrderService.Quote(ctx, query)
	if err != nil {
		if domain.IsRetryable(err) {
			s.Log.Warn("domain lookup unavailable",
				"error", err,
				"query", query,
				"user_id", user.ID,
			)
			return s.sendMessage(ctx, botID, user.TelegramChatID, texts.SearchFailed)
		}
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.InvalidDomainName)
	}

	if !quote.Available {
		s.saveSession(ctx, user.ID, &domain.Session{Step: domain.SessionStepAwaitingQuery})
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.FormatQuoteTaken(quote.DomainName))
	}

	s.saveSession(ctx, user.ID, &domain.Session{
		Step:      domain.SessionStepIdle,
		LastQuote: quote,
	})

	keyboard := inlineKeyboard(
		[]map[string]interface{}{
			inlineButton(texts.FormatBuyButton(quote), "buy:"+quote.DomainName),
		},
		[]map[string]interface{}{
			inlineButton("🔎 New search", "search"),
		},
	)

	return s.sendMessageWithKeyboard(ctx, botID, user.TelegramChatID, texts.FormatQuoteAvailable(quote), keyboard)
}

// handleEmailInput stores the contact email and resumes a pending purchase
func (s *Service) handleEmailInput(ctx context.Context, botID domain.BotId, user *domain.User, session *domain.Session, text string) error {
	email := strings.ToLower(text)
	if !emailRe.MatchString(email) {
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.EmailInvalid)
	}

	if err := s.UserRepo.SetContactEmail(ctx, user.ID, email); err != nil {
		s.Log.Error("failed to save contact email",
			"error", err,
			"user_id", user.ID,
		)
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.OrderFailed)
	}
	user.ContactEmail = &email

	session.Step = domain.SessionStepIdle
	pending := session.PendingBuy
	session.PendingBuy = nil
	s.saveSession(ctx, user.ID, session)

	if err := s.sendMessage(ctx, botID, user.TelegramChatID, texts.EmailSaved); err != nil {
		return err
	}

	// The email was asked for mid-purchase, continue where we left off
	if pending != nil && session.LastQuote != nil && session.LastQuote.DomainName == *pending {
		return s.offerCryptoChoice(ctx, botID, user, *pending)
	}
	return nil
}
