package nomadly

import (
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/ports/cache"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
)

// Config bot behavior settings
type Config struct {
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	OrdersListLimit  int           `envconfig:"ORDERS_LIST_LIMIT" default:"10"`
	SupportedCryptos []string      `envconfig:"SUPPORTED_CRYPTOS" default:"btc,ltc,eth,usdt_trc20"`
}

// Service business logic of the domain purchase bot. Conversation state
// lives in the cache, everything else is delegated to the order service.
type Service struct {
	UserRepo     repository.IUserRepo
	OrderService *orderUsecase.Service
	Cache        cache.Cache
	Telegram     service.ITelegramService
	Cfg          Config
	Log          *slog.Logger
}

// New creates the bot service
func New(
	userRepo repository.IUserRepo,
	orderService *orderUsecase.Service,
	sessionCache cache.Cache,
	telegram service.ITelegramService,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		UserRepo:     userRepo,
		OrderService: orderService,
		Cache:        sessionCache,
		Telegram:     telegram,
		Cfg:          cfg,
		Log:          log,
	}
}

func (s *Service) cryptoSupported(crypto string) bool {
	for _, c := range s.Cfg.SupportedCryptos {
		if c == crypto {
			return true
		}
	}
	return false
}
