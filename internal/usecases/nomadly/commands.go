package nomadly

import (
	"context"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/usecases/nomadly/texts"
)

func (s *Service) HandleCommand(ctx context.Context, botID domain.BotId, user *domain.User, command string, updateID int64) error {
	switch command {
	case "start":
		return s.HandleStart(ctx, botID, user)
	case "help":
		return s.HandleHelp(ctx, botID, user)
	case "search":
		return s.HandleSearch(ctx, botID, user)
	case "my_domains":
		return s.HandleMyDomains(ctx, botID, user)
	case "orders":
		return s.HandleOrders(ctx, botID, user)
	case "email":
		return s.HandleEmail(ctx, botID, user)
	default:
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.FormatUnknownCommand(command))
	}
}

// HandleStart greets the user and resets the conversation
func (s *Service) HandleStart(ctx context.Context, botID domain.BotId, user *domain.User) error {
	s.clearSession(ctx, user.ID)
	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.Start)
}

// HandleHelp handles the /help command
func (s *Service) HandleHelp(ctx context.Context, botID domain.BotId, user *domain.User) error {
	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.Help)
}

// HandleSearch puts the conversation into search mode
func (s *Service) HandleSearch(ctx context.Context, botID domain.BotId, user *domain.User) error {
	s.saveSession(ctx, user.ID, &domain.Session{Step: domain.SessionStepAwaitingQuery})
	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.SearchPrompt)
}

// HandleMyDomains handles the /my_domains command
func (s *Service) HandleMyDomains(ctx context.Context, botID domain.BotId, user *domain.User) error {
	domains, err := s.OrderService.ListDomains(ctx, user.ID)
	if err != nil {
		s.Log.Error("failed to list domains",
			"error", err,
			"user_id", user.ID,
		)
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.SearchFailed)
	}

	if len(domains) == 0 {
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.NoDomains)
	}

	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.FormatDomainList(domains))
}

// HandleOrders handles the /orders command
func (s *Service) HandleOrders(ctx context.Context, botID domain.BotId, user *domain.User) error {
	orders, err := s.OrderService.ListOrders(ctx, user.ID, s.Cfg.OrdersListLimit)
	if err != nil {
		s.Log.Error("failed to list orders",
			"error", err,
			"user_id", user.ID,
		)
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.SearchFailed)
	}

	if len(orders) == 0 {
		return s.sendMessage(ctx, botID, user.TelegramChatID, texts.NoOrders)
	}

	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.FormatOrderList(orders))
}

// HandleEmail asks for the registrant contact email
func (s *Service) HandleEmail(ctx context.Context, botID domain.BotId, user *domain.User) error {
	session := s.loadSession(ctx, user.ID)
	session.Step = domain.SessionStepAwaitingEmail
	s.saveSession(ctx, user.ID, session)
	return s.sendMessage(ctx, botID, user.TelegramChatID, texts.EmailPrompt)
}
