package app

import (
	"fmt"

	server "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http"
	paymentController "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http/controllers/payment"
	alerterAdapter "github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/alerter"
	"github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/dns/cloudflare"
	kafkaAdapter "github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/kafka"
	"github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/payment/blockbee"
	"github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/registrar/openprovider"
	"github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/Moxx-Company/Nomadly2/internal/adapters/secondary/telegram"
	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/pkg/logger"
	nomadlyUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/nomadly"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres  *pg.Config                `envconfig:"POSTGRES"`
	Redis     *redisAdapter.Config      `envconfig:"REDIS"`
	S3        *s3Adapter.Config         `envconfig:"S3"`
	Log       *logger.Config            `envconfig:"LOG"`
	Server    *server.Config            `envconfig:"APISERVER"`
	Telegram  *tgAdapter.Config         `envconfig:"TELEGRAM"`
	Bots      BotsConfig                `envconfig:"BOTS"`
	Kafka     *kafkaAdapter.Config      `envconfig:"KAFKA"`
	Alerter   *alerterAdapter.Config    `envconfig:"ALERTER"`
	Registrar *openprovider.Config      `envconfig:"REGISTRAR"`
	DNS       *cloudflare.Config        `envconfig:"DNS"`
	Gateway   *blockbee.Config          `envconfig:"GATEWAY"`
	Payment   *paymentController.Config `envconfig:"PAYMENT"`
	Order     orderUsecase.Config       `envconfig:"ORDER"`
	Bot       nomadlyUsecase.Config     `envconfig:"BOT"`
}

// BotsConfig bot fleet configuration
type BotsConfig struct {
	Count int         `envconfig:"COUNT" default:"1"`
	List  []BotConfig `envconfig:"-"` // loaded manually, envconfig cannot size slices
}

// Load reads the per-bot configuration from environment variables
func (bc *BotsConfig) Load(envPrefix string) error {
	bc.List = make([]BotConfig, bc.Count)
	for i := 0; i < bc.Count; i++ {
		prefix := fmt.Sprintf("%s_BOTS_%d", envPrefix, i) // NOMADLY_BOTS_0, NOMADLY_BOTS_1, ...
		var bot BotConfig
		if err := envconfig.Process(prefix, &bot); err != nil {
			return fmt.Errorf("failed to load bot %d: %w", i, err)
		}
		bc.List[i] = bot
	}
	return nil
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Bots.Load(envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load bots config: %w", err)
	}

	return cfg, nil
}

// BotConfig one bot's configuration
type BotConfig struct {
	BotID    string `envconfig:"ID" required:"true"`    // NOMADLY_BOTS_0_ID, ...
	BotType  string `envconfig:"TYPE" required:"true"`  // NOMADLY_BOTS_0_TYPE, ...
	BotToken string `envconfig:"TOKEN" required:"true"` // NOMADLY_BOTS_0_TOKEN, ...
}

func (c *BotConfig) Validate() error {
	if c.BotID == "" {
		return fmt.Errorf("bot_id is required")
	}
	if c.BotType == "" {
		return fmt.Errorf("bot_type is required")
	}
	if c.BotToken == "" {
		return fmt.Errorf("bot_token is required")
	}

	botType := domain.BotType(c.BotType)
	if !botType.IsValid() {
		return fmt.Errorf("invalid bot_type: %s", c.BotType)
	}

	return nil
}

func (c *BotConfig) ToDomain() (domain.BotId, domain.BotType, error) {
	if err := c.Validate(); err != nil {
		return "", "", fmt.Errorf("invalid bot config: %w", err)
	}

	return domain.BotId(c.BotID), domain.BotType(c.BotType), nil
}
