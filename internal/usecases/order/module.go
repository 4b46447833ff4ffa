package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/notify"
	paymentPort "github.com/Moxx-Company/Nomadly2/internal/ports/payment"
	registrarPort "github.com/Moxx-Company/Nomadly2/internal/ports/registrar"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/Moxx-Company/Nomadly2/internal/ports/storage"
	"github.com/google/uuid"
)

var domainNameRe = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// Config order service settings
type Config struct {
	MarkupPercent   int             `envconfig:"MARKUP_PERCENT" default:"30"`
	OrderTTL        time.Duration   `envconfig:"ORDER_TTL" default:"24h"`
	DefaultCrypto   string          `envconfig:"DEFAULT_CRYPTO" default:"btc"`
	CallbackBaseURL string          `envconfig:"CALLBACK_BASE_URL"`
	Provision       ProvisionConfig `envconfig:"PROVISION"`

	ExpireSweepInterval time.Duration `envconfig:"EXPIRE_SWEEP_INTERVAL" default:"1m"`
	RetrySweepInterval  time.Duration `envconfig:"RETRY_SWEEP_INTERVAL" default:"5m"`
	StuckAfter          time.Duration `envconfig:"STUCK_AFTER" default:"10m"`
}

// Service order lifecycle facade: search and quote, order creation, payment
// address issuance, retries and expiry. All state changes go through the
// state machine under the per-order lock.
type Service struct {
	Orders      repository.IOrderRepo
	Users       repository.IUserRepo
	Domains     repository.IDomainRepo
	Registrar   registrarPort.IRegistrar
	Gateway     paymentPort.IGateway
	Links       storage.ILinkStore
	Provisioner *Provisioner
	Locks       *LockTable
	Notifier    notify.INotifier
	Cfg         Config
	Log         *slog.Logger
}

func NewService(
	orders repository.IOrderRepo,
	users repository.IUserRepo,
	domains repository.IDomainRepo,
	reg registrarPort.IRegistrar,
	gateway paymentPort.IGateway,
	links storage.ILinkStore,
	provisioner *Provisioner,
	locks *LockTable,
	notifier notify.INotifier,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		Orders:      orders,
		Users:       users,
		Domains:     domains,
		Registrar:   reg,
		Gateway:     gateway,
		Links:       links,
		Provisioner: provisioner,
		Locks:       locks,
		Notifier:    notifier,
		Cfg:         cfg,
		Log:         log,
	}
}

// NormalizeDomainName lowercases and validates a user-supplied domain name
func NormalizeDomainName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimSuffix(name, ".")
	if !domainNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid domain name %q", raw)
	}
	return name, nil
}

// Quote checks availability at the registrar and returns the retail price
// (registrar price plus markup)
func (s *Service) Quote(ctx context.Context, domainName string) (*domain.DomainQuote, error) {
	name, err := NormalizeDomainName(domainName)
	if err != nil {
		return nil, err
	}

	avail, err := s.Registrar.CheckAvailability(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check availability for %s: %w", name, err)
	}

	quote := &domain.DomainQuote{
		DomainName: name,
		Available:  avail.Available,
		Currency:   avail.Currency,
	}
	if avail.Available {
		quote.PriceAmount = avail.PriceAmount + avail.PriceAmount*int64(s.Cfg.MarkupPercent)/100
	}

	s.Log.Debug("domain quoted",
		"domain", name,
		"available", quote.Available,
		"price", quote.PriceAmount,
	)
	return quote, nil
}

// CreateOrder creates a quoted order and immediately issues a payment
// address for it. At most one in-flight order may exist per (user, domain).
func (s *Service) CreateOrder(ctx context.Context, user *domain.User, quote *domain.DomainQuote, crypto string) (*domain.Order, error) {
	if !quote.Available {
		return nil, domain.ErrDomainUnavailable
	}
	if crypto == "" {
		crypto = s.Cfg.DefaultCrypto
	}

	existing, err := s.Orders.GetInFlight(ctx, user.ID, quote.DomainName)
	if err != nil {
		return nil, fmt.Errorf("check in-flight order: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("order %s: %w", existing.ID, domain.ErrOrderInFlight)
	}

	now := time.Now().UTC()
	ord := &domain.Order{
		ID:          uuid.New(),
		UserID:      user.ID,
		DomainName:  quote.DomainName,
		State:       domain.OrderStateQuoted,
		PriceAmount: quote.PriceAmount,
		Currency:    quote.Currency,
		Crypto:      crypto,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.Cfg.OrderTTL),
	}

	if err := s.Orders.Create(ctx, ord); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.Log.Info("order created",
		"order_id", ord.ID,
		"user_id", user.ID,
		"domain", ord.DomainName,
		"price", ord.PriceAmount,
		"crypto", crypto,
	)

	if err := s.IssuePaymentAddress(ctx, ord.ID); err != nil {
		return nil, err
	}

	return s.Orders.GetByID(ctx, ord.ID)
}

// IssuePaymentAddress requests a receive address from the gateway and moves
// the order to awaiting_payment
func (s *Service) IssuePaymentAddress(ctx context.Context, orderID uuid.UUID) error {
	unlock := s.Locks.Lock(orderID)
	defer unlock()

	ord, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order %s: %w", orderID, err)
	}

	addr, err := s.Gateway.CreatePaymentAddress(ctx, paymentPort.CreateAddressRequest{
		OrderID:     ord.ID,
		Crypto:      ord.Crypto,
		Amount:      ord.PriceAmount,
		Currency:    ord.Currency,
		CallbackURL: s.callbackURL(ord.ID),
	})
	if err != nil {
		return fmt.Errorf("create payment address for order %s: %w", ord.ID, err)
	}

	link := addr.PaymentURL
	if link != "" && s.Links != nil {
		short, err := s.Links.Shorten(ctx, ord.ID.String()[:8], link)
		if err != nil {
			// The long gateway URL still works; shortening is cosmetic.
			s.Log.Warn("failed to shorten payment link",
				"order_id", ord.ID,
				"error", err,
			)
		} else {
			link = short
		}
	}

	from := ord.State
	if err := Apply(ord, PaymentAddressIssued{Address: addr.Address, PaymentLink: link}, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.Orders.Update(ctx, ord); err != nil {
		return fmt.Errorf("update order %s: %w", ord.ID, err)
	}

	s.Log.Info("payment address issued",
		"order_id", ord.ID,
		"crypto", ord.Crypto,
	)

	if s.Notifier != nil {
		s.Notifier.OrderStateChanged(ctx, ord, from, ord.State)
	}
	return nil
}

// RetryProvisioning resumes provisioning for a paid order stuck mid-flight
func (s *Service) RetryProvisioning(ctx context.Context, orderID uuid.UUID) error {
	return s.Provisioner.Provision(ctx, orderID)
}

// ExpireStale transitions unpaid orders past their expiry to expired.
// Orders already past payment are untouched regardless of age.
func (s *Service) ExpireStale(ctx context.Context, now time.Time, limit int) (int, error) {
	stale, err := s.Orders.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("list expirable orders: %w", err)
	}

	expired := 0
	for i := range stale {
		if err := s.expireOne(ctx, stale[i].ID, now); err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				// Paid between listing and locking; leave it alone.
				continue
			}
			s.Log.Error("failed to expire order",
				"order_id", stale[i].ID,
				"error", err,
			)
			continue
		}
		expired++
	}

	return expired, nil
}

func (s *Service) expireOne(ctx context.Context, orderID uuid.UUID, now time.Time) error {
	unlock := s.Locks.Lock(orderID)
	defer unlock()

	ord, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	from := ord.State
	if err := Apply(ord, TimeoutElapsed{}, now); err != nil {
		return err
	}
	if err := s.Orders.Update(ctx, ord); err != nil {
		return err
	}

	s.Log.Info("order expired", "order_id", ord.ID, "domain", ord.DomainName)

	if s.Notifier != nil {
		s.Notifier.OrderStateChanged(ctx, ord, from, ord.State)
	}
	return nil
}

// ListOrders returns the user's recent orders
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Order, error) {
	return s.Orders.ListByUser(ctx, userID, limit)
}

// ListDomains returns the user's provisioned domains
func (s *Service) ListDomains(ctx context.Context, userID uuid.UUID) ([]domain.RegisteredDomain, error) {
	return s.Domains.ListByUser(ctx, userID)
}

// callbackURL webhook the gateway calls with confirmation events for an order
func (s *Service) callbackURL(orderID uuid.UUID) string {
	base := strings.TrimSuffix(s.Cfg.CallbackBaseURL, "/")
	return fmt.Sprintf("%s/webhooks/payment/%s", base, orderID)
}
