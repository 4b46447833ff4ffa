package app

import (
	"context"
	"fmt"
	"net/http"

	server "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http"
	adminController "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http/controllers/admin"
	alerterController "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http/controllers/alerter"
	healthcheckController "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http/controllers/healthcheck"
	paymentController "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http/controllers/payment"
	telegramController "github.com/Moxx-Company/Nomadly2/internal/adapters/primary/http/controllers/telegram"
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
	"github.com/Moxx-Company/Nomadly2/internal/ports/cache"
	dnsPort "github.com/Moxx-Company/Nomadly2/internal/ports/dns"
	kafkaPort "github.com/Moxx-Company/Nomadly2/internal/ports/kafka"
	paymentPort "github.com/Moxx-Company/Nomadly2/internal/ports/payment"
	registrarPort "github.com/Moxx-Company/Nomadly2/internal/ports/registrar"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
	"github.com/Moxx-Company/Nomadly2/internal/ports/storage"
	domainRepo "github.com/Moxx-Company/Nomadly2/internal/repository/domain"
	orderRepo "github.com/Moxx-Company/Nomadly2/internal/repository/order"
	userRepo "github.com/Moxx-Company/Nomadly2/internal/repository/user"
	alerterService "github.com/Moxx-Company/Nomadly2/internal/services/alerter"
	jobScheduler "github.com/Moxx-Company/Nomadly2/internal/services/jobs"
	notifierService "github.com/Moxx-Company/Nomadly2/internal/services/notifier"
	telegramService "github.com/Moxx-Company/Nomadly2/internal/services/telegram"
	nomadlyUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/nomadly"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB              *sqlx.DB
	HTTPServer      *http.Server
	TelegramService *telegramService.Service
	TelegramClients map[domain.BotId]*tgAdapter.Client
	TelegramPoller  *tgAdapter.Poller
	PrimaryBotID    domain.BotId
	KafkaProducer   kafkaPort.IEventProducer
	Cache           cache.Cache
	JobScheduler    *jobScheduler.Scheduler
}

// initDependencies wires the whole application together
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	repos := a.initRepositories(db)

	telegramClients, tgService, primaryBotID, err := a.initTelegram(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram: %w", err)
	}

	ext, err := a.initExternalServices()
	if err != nil {
		return nil, fmt.Errorf("failed to init external services: %w", err)
	}

	notifier := notifierService.New(ext.KafkaProducer, tgService, repos.User, primaryBotID, a.Log)

	orderCore := a.initOrderCore(repos, ext, notifier)

	botUseCase := nomadlyUsecase.New(repos.User, orderCore.Service, ext.Cache, tgService, a.Cfg.Bot, a.Log)
	tgService.SetBotServices(map[domain.BotType]service.IBotService{
		domain.BotTypeNomadly: botUseCase,
	})

	httpServer, err := a.initHTTP(db, tgService, orderCore, ext.Alerter)
	if err != nil {
		return nil, fmt.Errorf("failed to init http server: %w", err)
	}

	poller, err := a.initTelegramMode(ctx, tgService, telegramClients, primaryBotID)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram mode: %w", err)
	}

	scheduler := a.initJobScheduler(ext.Alerter, orderCore.Service, repos.Order)

	return &Dependencies{
		DB:              db,
		HTTPServer:      httpServer,
		TelegramService: tgService,
		TelegramClients: telegramClients,
		TelegramPoller:  poller,
		PrimaryBotID:    primaryBotID,
		KafkaProducer:   ext.KafkaProducer,
		Cache:           ext.Cache,
		JobScheduler:    scheduler,
	}, nil
}

// repositories the initialized database repositories
type repositories struct {
	User   repository.IUserRepo
	Order  repository.IOrderRepo
	Domain repository.IDomainRepo
}

func (a *App) initRepositories(db *sqlx.DB) *repositories {
	persistenceLayer := pg.NewDB(db)
	return &repositories{
		User:   userRepo.New(persistenceLayer, a.Log),
		Order:  orderRepo.New(persistenceLayer, a.Log),
		Domain: domainRepo.New(persistenceLayer, a.Log),
	}
}

// externalServices external collaborators. Registrar, DNS and the payment
// gateway are mandatory, the rest degrade gracefully when not configured.
type externalServices struct {
	Registrar     registrarPort.IRegistrar
	DNS           dnsPort.IProvider
	Gateway       paymentPort.IGateway
	Links         storage.ILinkStore
	Alerter       service.IAlerterService
	Cache         cache.Cache
	KafkaProducer kafkaPort.IEventProducer
}

func (a *App) initExternalServices() (*externalServices, error) {
	services := &externalServices{}

	if a.Cfg.Registrar == nil {
		return nil, fmt.Errorf("registrar configuration is missing")
	}
	services.Registrar = openprovider.NewClient(a.Cfg.Registrar, a.Log)

	if a.Cfg.DNS == nil {
		return nil, fmt.Errorf("dns provider configuration is missing")
	}
	services.DNS = cloudflare.NewClient(a.Cfg.DNS, a.Log)

	if a.Cfg.Gateway == nil {
		return nil, fmt.Errorf("payment gateway configuration is missing")
	}
	services.Gateway = blockbee.NewClient(a.Cfg.Gateway, a.Log)

	// Alerter - optional
	if a.Cfg.Alerter != nil {
		alerterClient := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)
		services.Alerter = alerterService.New(alerterClient)
	}

	// Redis cache - optional, sessions fall back to stateless behavior
	if a.Cfg.Redis != nil {
		redisClient, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			a.Log.Warn("failed to init redis cache, continuing without cache", "error", err)
		} else {
			services.Cache = redisAdapter.NewClient(redisClient)
			a.Log.Info("redis cache connected successfully")
		}
	}

	// S3 link shortener - optional, payment links stay long without it
	if a.Cfg.S3 != nil {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			a.Log.Warn("failed to init s3 link store, continuing without link shortening", "error", err)
		} else {
			services.Links = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Cfg.S3.PublicBaseURL, a.Log)
			a.Log.Info("s3 link store connected successfully")
		}
	}

	// Kafka producer - optional, order events are skipped without it
	if a.Cfg.Kafka != nil && a.Cfg.Kafka.Brokers != "" {
		producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			a.Log.Warn("failed to create kafka producer, continuing without order events", "error", err)
		} else {
			services.KafkaProducer = producer
		}
	}

	return services, nil
}

// initTelegram creates the Telegram clients and the update routing service
func (a *App) initTelegram(ctx context.Context) (
	clients map[domain.BotId]*tgAdapter.Client,
	tgSvc *telegramService.Service,
	primaryBotID domain.BotId,
	err error,
) {
	if len(a.Cfg.Bots.List) == 0 {
		return nil, nil, "", fmt.Errorf("no bots configured: at least one bot must be specified via BOTS_COUNT and BOTS_0_* environment variables")
	}

	botIDToType := make(map[domain.BotId]domain.BotType)
	clients = make(map[domain.BotId]*tgAdapter.Client)

	for i, botCfg := range a.Cfg.Bots.List {
		botID, botType, err := botCfg.ToDomain()
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to convert bot config at index %d: %w", i, err)
		}

		if i == 0 {
			primaryBotID = botID
		}
		botIDToType[botID] = botType
		clients[botID] = tgAdapter.NewClient(botCfg.BotToken, a.Log)

		if err := a.registerBotCommands(ctx, clients[botID]); err != nil {
			a.Log.Warn("failed to register bot commands", "error", err, "bot_id", botID)
		}
	}

	tgSvc = telegramService.New(
		botIDToType,
		make(map[domain.BotType]service.IBotService), // filled in once the use cases exist
		clients,
		a.Log,
	)

	return clients, tgSvc, primaryBotID, nil
}

// initHTTP creates the HTTP server and its controllers
func (a *App) initHTTP(
	db *sqlx.DB,
	tgService *telegramService.Service,
	orderCore *orderCore,
	alerterSvc service.IAlerterService,
) (*http.Server, error) {
	if a.Cfg.Payment == nil {
		return nil, fmt.Errorf("payment webhook configuration is missing")
	}

	controllers := []server.Controller{
		healthcheckController.New(db, a.Log),
		telegramController.New(tgService, a.Log),
		paymentController.New(orderCore.Reconciler, a.Cfg.Payment, a.Log),
		adminController.New(orderCore.Service, a.Log),
	}

	if alerterSvc != nil {
		controllers = append(controllers, alerterController.New(alerterSvc, a.Log))
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...), nil
}

// initTelegramMode selects webhook (prod) or polling (local dev)
func (a *App) initTelegramMode(
	ctx context.Context,
	tgService *telegramService.Service,
	telegramClients map[domain.BotId]*tgAdapter.Client,
	primaryBotID domain.BotId,
) (*tgAdapter.Poller, error) {
	a.Log.Info("telegram configuration",
		"use_webhook", a.Cfg.Telegram.IsWebhookEnabled(),
		"webhook_url", a.Cfg.Telegram.WebhookURL,
	)

	if a.Cfg.Telegram.IsWebhookEnabled() {
		if err := a.setupWebhooks(ctx, telegramClients); err != nil {
			return nil, fmt.Errorf("failed to setup webhooks: %w", err)
		}
		return nil, nil // webhook mode, no poller needed
	}

	a.Log.Warn("polling mode enabled - this should only be used for local development")

	handler := func(ctx context.Context, botID string, update *domain.Update) error {
		return tgService.HandleUpdate(ctx, domain.BotId(botID), update)
	}

	return tgAdapter.NewPoller(
		telegramClients[primaryBotID],
		a.Cfg.Telegram,
		handler,
		a.Log,
	), nil
}

// initJobScheduler registers the periodic maintenance jobs
func (a *App) initJobScheduler(
	alerterSvc service.IAlerterService,
	orderService *orderUsecase.Service,
	orders repository.IOrderRepo,
) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.Log, alerterSvc)

	expirer := jobScheduler.NewOrderExpirer(orderService, a.Cfg.Order.ExpireSweepInterval, a.Log)
	scheduler.Register(expirer)
	a.Log.Info("order expirer job registered")

	retrier := jobScheduler.NewProvisioningRetrier(orders, orderService, a.Cfg.Order.RetrySweepInterval, a.Cfg.Order.StuckAfter, a.Log)
	scheduler.Register(retrier)
	a.Log.Info("provisioning retrier job registered")

	return scheduler
}

// setupWebhooks registers the webhook for every bot
func (a *App) setupWebhooks(ctx context.Context, telegramClients map[domain.BotId]*tgAdapter.Client) error {
	if a.Cfg.Telegram.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required when use_webhook is true")
	}

	webhookURL := fmt.Sprintf("%s/webhook", a.Cfg.Telegram.WebhookURL)

	for botID, client := range telegramClients {
		if err := client.SetWebhook(ctx, webhookURL, string(botID)); err != nil {
			a.Log.Error("failed to set webhook", "error", err, "bot_id", botID, "webhook_url", webhookURL)
			return fmt.Errorf("failed to set webhook for bot %s: %w", botID, err)
		}

		a.Log.Info("webhook set successfully", "bot_id", botID, "webhook_url", webhookURL)
	}

	return nil
}

// registerBotCommands publishes the command menu in Telegram
func (a *App) registerBotCommands(ctx context.Context, client *tgAdapter.Client) error {
	commands := []tgAdapter.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "search", Description: "Search for a domain"},
		{Command: "my_domains", Description: "Your registered domains"},
		{Command: "orders", Description: "Your recent orders"},
		{Command: "email", Description: "Set your contact email"},
		{Command: "help", Description: "How it works"},
	}

	return client.SetMyCommands(ctx, commands)
}

// initPostgres connects to PostgreSQL and runs migrations
func (a *App) initPostgres() (*sqlx.DB, error) {
	if a.Cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres configuration is missing")
	}

	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(db, a.Log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
