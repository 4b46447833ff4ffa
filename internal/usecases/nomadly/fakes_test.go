package nomadly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	dnsPort "github.com/Moxx-Company/Nomadly2/internal/ports/dns"
	paymentPort "github.com/Moxx-Company/Nomadly2/internal/ports/payment"
	registrarPort "github.com/Moxx-Company/Nomadly2/internal/ports/registrar"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// sentMessage one captured outgoing message
type sentMessage struct {
	chatID   int64
	text     string
	keyboard map[string]interface{}
}

// fakeTelegram captures outgoing messages instead of hitting the Bot API
type fakeTelegram struct {
	mu        sync.Mutex
	messages  []sentMessage
	callbacks []string
}

func (f *fakeTelegram) SendMessage(_ context.Context, _ domain.BotId, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeTelegram) SendMessageWithKeyboard(_ context.Context, _ domain.BotId, chatID int64, text string, keyboard map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeTelegram) AnswerCallbackQuery(_ context.Context, _ domain.BotId, callbackID string, _ string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, callbackID)
	return nil
}

func (f *fakeTelegram) lastMessage() *sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil
	}
	return &f.messages[len(f.messages)-1]
}

// fakeCache in-memory cache.Cache
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", fmt.Errorf("key %s not found", key)
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok, nil
}

func (c *fakeCache) Close() error { return nil }

// fakeUserRepo in-memory IUserRepo
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, tgID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramUserID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func (r *fakeUserRepo) SetContactEmail(_ context.Context, id uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.ContactEmail = &email
	}
	return nil
}

// fakeOrderRepo in-memory IOrderRepo, just enough for the bot flows
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	events map[string]bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		events: make(map[string]bool),
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrUnknownOrder)
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetInFlight(_ context.Context, userID uuid.UUID, domainName string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.DomainName == domainName && o.InFlight() {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) HasConfirmationEvent(_ context.Context, orderID uuid.UUID, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[orderID.String()+"/"+eventID], nil
}

func (r *fakeOrderRepo) InsertConfirmationEvent(_ context.Context, e *domain.ConfirmationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := e.OrderID.String() + "/" + e.EventID
	if r.events[key] {
		return domain.ErrDuplicateEvent
	}
	r.events[key] = true
	return nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID && len(out) < limit {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListExpirable(_ context.Context, _ time.Time, _ int) ([]domain.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) ListStuckProvisioning(_ context.Context, _ time.Time, _ int) ([]domain.Order, error) {
	return nil, nil
}

// fakeDomainRepo in-memory IDomainRepo
type fakeDomainRepo struct {
	mu      sync.Mutex
	domains []domain.RegisteredDomain
}

func (r *fakeDomainRepo) Create(_ context.Context, d *domain.RegisteredDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains = append(r.domains, *d)
	return nil
}

func (r *fakeDomainRepo) GetByName(_ context.Context, domainName string) (*domain.RegisteredDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.domains {
		if r.domains[i].DomainName == domainName {
			cp := r.domains[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDomainRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.RegisteredDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RegisteredDomain
	for i := range r.domains {
		if r.domains[i].UserID == userID {
			out = append(out, r.domains[i])
		}
	}
	return out, nil
}

// fakeRegistrar scripted IRegistrar
type fakeRegistrar struct {
	unavailable bool
	checkErr    error
	priceCents  int64
}

func (f *fakeRegistrar) CheckAvailability(_ context.Context, domainName string) (*registrarPort.Availability, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	price := f.priceCents
	if price == 0 {
		price = 1000
	}
	return &registrarPort.Availability{
		DomainName:  domainName,
		Available:   !f.unavailable,
		PriceAmount: price,
		Currency:    "USD",
	}, nil
}

func (f *fakeRegistrar) RegisterDomain(_ context.Context, req registrarPort.RegisterRequest) (string, error) {
	return "reg-" + req.DomainName, nil
}

// fakeGateway scripted IGateway
type fakeGateway struct {
	err error
}

func (f *fakeGateway) CreatePaymentAddress(_ context.Context, req paymentPort.CreateAddressRequest) (*paymentPort.PaymentAddress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &paymentPort.PaymentAddress{
		Address:    "addr-" + req.OrderID.String()[:8],
		PaymentURL: "https://pay.example/" + req.OrderID.String(),
	}, nil
}

// fakeDNS scripted IProvider
type fakeDNS struct{}

func (f *fakeDNS) CreateZone(_ context.Context, domainName string) (string, error) {
	return "zone-" + domainName, nil
}

func (f *fakeDNS) ListNameservers(_ context.Context, _ string) ([]string, error) {
	return []string{"ana.ns.example", "bob.ns.example"}, nil
}

var _ dnsPort.IProvider = (*fakeDNS)(nil)

// testService wires the bot service over in-memory collaborators
func testService(users *fakeUserRepo, reg *fakeRegistrar, gw *fakeGateway) (*Service, *fakeTelegram, *fakeOrderRepo) {
	orders := newFakeOrderRepo()
	domains := &fakeDomainRepo{}
	locks := orderUsecase.NewLockTable()
	log := testLogger()

	provisioner := orderUsecase.NewProvisioner(
		orders, users, domains, &fakeDNS{}, reg, locks, nil,
		orderUsecase.ProvisionConfig{MaxAttempts: 2, BackoffBase: time.Millisecond, CallTimeout: time.Second},
		log,
	)
	orderService := orderUsecase.NewService(
		orders, users, domains, reg, gw, nil, provisioner, locks, nil,
		orderUsecase.Config{MarkupPercent: 30, OrderTTL: 24 * time.Hour, DefaultCrypto: "btc", CallbackBaseURL: "https://bot.example"},
		log,
	)

	tg := &fakeTelegram{}
	svc := New(users, orderService, newFakeCache(), tg, Config{
		SessionTTL:       30 * time.Minute,
		OrdersListLimit:  10,
		SupportedCryptos: []string{"btc", "ltc"},
	}, log)

	return svc, tg, orders
}
