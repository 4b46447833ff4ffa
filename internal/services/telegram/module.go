package telegram

import (
	"fmt"

	"log/slog"

	TgClient "github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/telegram"
	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
)

type Service struct {
	BotIDToType      map[domain.BotId]domain.BotType        // botID -> botType, routes updates to a use case
	BotTypeToUsecase map[domain.BotType]service.IBotService // botType -> use case
	TelegramClients  map[domain.BotId]*TgClient.Client      // botID -> API client
	Log              *slog.Logger
}

func New(
	botIDToType map[domain.BotId]domain.BotType,
	botServices map[domain.BotType]service.IBotService,
	telegramClients map[domain.BotId]*TgClient.Client,
	log *slog.Logger,
) *Service {
	return &Service{
		BotIDToType:      botIDToType,
		BotTypeToUsecase: botServices,
		TelegramClients:  telegramClients,
		Log:              log,
	}
}

// SetBotServices replaces botServices after construction. The bot use case
// needs this service for sending, so wiring happens in two steps.
func (s *Service) SetBotServices(botServices map[domain.BotType]service.IBotService) {
	s.BotTypeToUsecase = botServices
}

// GetBotType returns the botType for a botID
func (s *Service) GetBotType(botID domain.BotId) (domain.BotType, error) {
	botType, ok := s.BotIDToType[botID]
	if !ok {
		return "", fmt.Errorf("bot_type not found for bot_id: %s", botID)
	}
	return botType, nil
}
