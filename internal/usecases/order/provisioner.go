package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	dnsPort "github.com/Moxx-Company/Nomadly2/internal/ports/dns"
	"github.com/Moxx-Company/Nomadly2/internal/ports/notify"
	registrarPort "github.com/Moxx-Company/Nomadly2/internal/ports/registrar"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/google/uuid"
)

// ProvisionConfig retry and timeout policy for external provisioning calls
type ProvisionConfig struct {
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	BackoffBase time.Duration `envconfig:"BACKOFF_BASE" default:"5s"`
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" default:"30s"`
}

// Provisioner performs the side-effecting half of a paid order: DNS zone
// creation followed by registrar registration. It resumes from the last
// successful step and never redoes a completed side effect - a zone that
// exists is reused, registration alone is retried.
type Provisioner struct {
	Orders    repository.IOrderRepo
	Users     repository.IUserRepo
	Domains   repository.IDomainRepo
	DNS       dnsPort.IProvider
	Registrar registrarPort.IRegistrar
	Locks     *LockTable
	Notifier  notify.INotifier
	Cfg       ProvisionConfig
	Log       *slog.Logger
}

func NewProvisioner(
	orders repository.IOrderRepo,
	users repository.IUserRepo,
	domains repository.IDomainRepo,
	dns dnsPort.IProvider,
	reg registrarPort.IRegistrar,
	locks *LockTable,
	notifier notify.INotifier,
	cfg ProvisionConfig,
	log *slog.Logger,
) *Provisioner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Provisioner{
		Orders:    orders,
		Users:     users,
		Domains:   domains,
		DNS:       dns,
		Registrar: reg,
		Locks:     locks,
		Notifier:  notifier,
		Cfg:       cfg,
		Log:       log,
	}
}

// Provision drives a paid order to registered. Safe to call again after any
// failure: it restarts at the first step whose external reference is missing.
// Orders that are not past payment are rejected with ErrInvalidTransition.
func (p *Provisioner) Provision(ctx context.Context, orderID uuid.UUID) error {
	unlock := p.Locks.Lock(orderID)
	defer unlock()

	ord, err := p.Orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order %s: %w", orderID, err)
	}

	switch ord.State {
	case domain.OrderStatePaymentConfirmed, domain.OrderStateDNSProvisioned:
	default:
		return fmt.Errorf("order %s in state %s cannot be provisioned: %w",
			ord.ID, ord.State, domain.ErrInvalidTransition)
	}

	if ord.State == domain.OrderStatePaymentConfirmed {
		if err := p.provisionZone(ctx, ord); err != nil {
			// No zone exists yet; money was received, so the order is parked
			// in failed with the reason preserved for manual recovery.
			return p.markFailed(ctx, ord, "dns zone creation", err)
		}
	}

	if err := p.register(ctx, ord); err != nil {
		var rejected *domain.ExternalServiceRejected
		if errors.As(err, &rejected) {
			return p.markFailed(ctx, ord, "domain registration", err)
		}
		// Transient registrar trouble: the zone is kept and the order stays
		// at dns_provisioned, so a later retry resumes at registration only.
		p.Log.Warn("registration incomplete, order left for retry",
			"order_id", ord.ID,
			"domain", ord.DomainName,
			"error", err,
		)
		return err
	}

	return nil
}

// provisionZone creates the DNS zone and advances to dns_provisioned
func (p *Provisioner) provisionZone(ctx context.Context, ord *domain.Order) error {
	var zoneRef string
	err := p.callWithRetry(ctx, "create_zone", func(callCtx context.Context) error {
		ref, err := p.DNS.CreateZone(callCtx, ord.DomainName)
		if err != nil {
			return err
		}
		zoneRef = ref
		return nil
	})
	if err != nil {
		return err
	}

	from := ord.State
	if err := Apply(ord, DNSReady{ZoneRef: zoneRef}, time.Now().UTC()); err != nil {
		return err
	}
	if err := p.Orders.Update(ctx, ord); err != nil {
		return fmt.Errorf("update order %s: %w", ord.ID, err)
	}

	p.Log.Info("dns zone provisioned",
		"order_id", ord.ID,
		"domain", ord.DomainName,
		"zone_ref", zoneRef,
	)

	if p.Notifier != nil {
		p.Notifier.OrderStateChanged(ctx, ord, from, ord.State)
	}
	return nil
}

// register registers the domain with the zone's nameservers and completes the
// order. Requires dns_zone_ref to be set; the zone is never recreated here.
func (p *Provisioner) register(ctx context.Context, ord *domain.Order) error {
	if ord.DNSZoneRef == nil {
		return fmt.Errorf("order %s has no dns zone ref: %w", ord.ID, domain.ErrInvalidTransition)
	}

	var nameservers []string
	err := p.callWithRetry(ctx, "list_nameservers", func(callCtx context.Context) error {
		ns, err := p.DNS.ListNameservers(callCtx, *ord.DNSZoneRef)
		if err != nil {
			return err
		}
		nameservers = ns
		return nil
	})
	if err != nil {
		return err
	}

	contact, err := p.registrantContact(ctx, ord)
	if err != nil {
		return err
	}

	var registrarRef string
	err = p.callWithRetry(ctx, "register_domain", func(callCtx context.Context) error {
		ref, err := p.Registrar.RegisterDomain(callCtx, registrarPort.RegisterRequest{
			DomainName:  ord.DomainName,
			Nameservers: nameservers,
			Contact:     contact,
		})
		if err != nil {
			return err
		}
		registrarRef = ref
		return nil
	})
	if err != nil {
		return err
	}

	from := ord.State
	now := time.Now().UTC()
	if err := Apply(ord, RegistrationSucceeded{RegistrarRef: registrarRef}, now); err != nil {
		return err
	}
	if err := p.Orders.Update(ctx, ord); err != nil {
		return fmt.Errorf("update order %s: %w", ord.ID, err)
	}

	registered := &domain.RegisteredDomain{
		ID:           uuid.New(),
		UserID:       ord.UserID,
		OrderID:      ord.ID,
		DomainName:   ord.DomainName,
		DNSZoneRef:   *ord.DNSZoneRef,
		RegistrarRef: registrarRef,
		Nameservers:  nameservers,
		RegisteredAt: now,
	}
	if err := p.Domains.Create(ctx, registered); err != nil {
		// The order is already registered; inventory row is recoverable from
		// the order record, so log instead of failing the order.
		p.Log.Error("failed to store registered domain",
			"order_id", ord.ID,
			"domain", ord.DomainName,
			"error", err,
		)
	}

	p.Log.Info("domain registered",
		"order_id", ord.ID,
		"domain", ord.DomainName,
		"registrar_ref", registrarRef,
	)

	if p.Notifier != nil {
		p.Notifier.OrderStateChanged(ctx, ord, from, ord.State)
	}
	return nil
}

// markFailed records a terminal provisioning failure. The order is preserved
// with its reason for manual recovery - money was received, the state must
// never silently vanish.
func (p *Provisioner) markFailed(ctx context.Context, ord *domain.Order, step string, cause error) error {
	reason := fmt.Sprintf("%s: %v", step, cause)
	from := ord.State

	if err := Apply(ord, StepFailed{Reason: reason}, time.Now().UTC()); err != nil {
		p.Log.Error("failed to mark order failed",
			"order_id", ord.ID,
			"state", ord.State,
			"error", err,
		)
		return cause
	}
	if err := p.Orders.Update(ctx, ord); err != nil {
		p.Log.Error("failed to persist failed order",
			"order_id", ord.ID,
			"error", err,
		)
		return cause
	}

	p.Log.Error("provisioning failed",
		"order_id", ord.ID,
		"domain", ord.DomainName,
		"step", step,
		"error", cause,
	)

	if p.Notifier != nil {
		p.Notifier.OrderStateChanged(ctx, ord, from, ord.State)
	}
	return cause
}

// registrantContact builds registrar contact data from the order's owner
func (p *Provisioner) registrantContact(ctx context.Context, ord *domain.Order) (registrarPort.Contact, error) {
	user, err := p.Users.GetByID(ctx, ord.UserID)
	if err != nil {
		return registrarPort.Contact{}, fmt.Errorf("get user %s: %w", ord.UserID, err)
	}

	contact := registrarPort.Contact{FirstName: user.FirstName}
	if user.LastName != nil {
		contact.LastName = *user.LastName
	}
	if user.ContactEmail != nil {
		contact.Email = *user.ContactEmail
	}
	return contact, nil
}

// callWithRetry runs one external call with a per-attempt timeout and
// exponential backoff. Transient errors (domain.ExternalServiceError) are
// retried up to the configured attempt count; rejections stop immediately.
func (p *Provisioner) callWithRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.Cfg.MaxAttempts; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if p.Cfg.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.Cfg.CallTimeout)
		}
		err := fn(callCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err

		var rejected *domain.ExternalServiceRejected
		if errors.As(err, &rejected) {
			return err
		}
		if !domain.IsRetryable(err) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if attempt == p.Cfg.MaxAttempts {
			break
		}

		backoff := p.Cfg.BackoffBase * time.Duration(1<<(attempt-1))
		p.Log.Warn("external call failed, will retry",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, p.Cfg.MaxAttempts, lastErr)
}
