package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	paymentPort "github.com/Moxx-Company/Nomadly2/internal/ports/payment"
	registrarPort "github.com/Moxx-Company/Nomadly2/internal/ports/registrar"
	"github.com/google/uuid"
)

// fakeOrderRepo in-memory IOrderRepo for tests
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	events map[uuid.UUID]map[string]bool
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		events: make(map[uuid.UUID]map[string]bool),
	}
	for _, o := range orders {
		cp := *o
		r.orders[o.ID] = &cp
	}
	return r
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
		return nil, domain.ErrUnknownOrder
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
	if _, ok := r.orders[o.ID]; !ok {
		return domain.ErrUnknownOrder
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) HasConfirmationEvent(_ context.Context, orderID uuid.UUID, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[orderID][eventID], nil
}

func (r *fakeOrderRepo) InsertConfirmationEvent(_ context.Context, ev *domain.ConfirmationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events[ev.OrderID][ev.EventID] {
		return domain.ErrDuplicateEvent
	}
	if r.events[ev.OrderID] == nil {
		r.events[ev.OrderID] = make(map[string]bool)
	}
	r.events[ev.OrderID][ev.EventID] = true
	return nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, _ int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListExpirable(_ context.Context, now time.Time, _ int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		switch o.State {
		case domain.OrderStateQuoted, domain.OrderStateAwaitingPayment:
			if o.ExpiresAt.Before(now) {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListStuckProvisioning(_ context.Context, olderThan time.Time, _ int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		switch o.State {
		case domain.OrderStatePaymentConfirmed, domain.OrderStateDNSProvisioned:
			if o.UpdatedAt.Before(olderThan) {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) get(id uuid.UUID) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id]
}

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
		return nil, fmt.Errorf("user %s not found", id)
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

func (r *fakeUserRepo) UpdateLastSeen(_ context.Context, id uuid.UUID, seenAt time.Time) error {
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
	for _, d := range r.domains {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeDNS scriptable dns.IProvider
type fakeDNS struct {
	mu              sync.Mutex
	createZoneCalls int
	createZoneErrs  []error // consumed per call; nil entry means success
	zoneRef         string
	nameservers     []string
}

func (f *fakeDNS) CreateZone(_ context.Context, domainName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.createZoneCalls
	f.createZoneCalls++
	if call < len(f.createZoneErrs) && f.createZoneErrs[call] != nil {
		return "", f.createZoneErrs[call]
	}
	if f.zoneRef == "" {
		f.zoneRef = "zone-" + domainName
	}
	return f.zoneRef, nil
}

func (f *fakeDNS) ListNameservers(_ context.Context, zoneRef string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.nameservers) == 0 {
		return []string{"ns1.example-dns.net", "ns2.example-dns.net"}, nil
	}
	return f.nameservers, nil
}

// fakeRegistrar scriptable registrar.IRegistrar
type fakeRegistrar struct {
	mu            sync.Mutex
	registerCalls int
	registerErrs  []error
	availability  map[string]registrarPort.Availability
}

func (f *fakeRegistrar) CheckAvailability(_ context.Context, domainName string) (*registrarPort.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.availability[domainName]; ok {
		return &a, nil
	}
	return &registrarPort.Availability{DomainName: domainName, Available: true, PriceAmount: 1000, Currency: "USD"}, nil
}

func (f *fakeRegistrar) RegisterDomain(_ context.Context, req registrarPort.RegisterRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.registerCalls
	f.registerCalls++
	if call < len(f.registerErrs) && f.registerErrs[call] != nil {
		return "", f.registerErrs[call]
	}
	return "reg-" + req.DomainName, nil
}

// fakeGateway payment.IGateway returning a static address
type fakeGateway struct {
	mu       sync.Mutex
	requests []paymentPort.CreateAddressRequest
}

func (f *fakeGateway) CreatePaymentAddress(_ context.Context, req paymentPort.CreateAddressRequest) (*paymentPort.PaymentAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &paymentPort.PaymentAddress{
		Address:    "bc1q-test-address",
		PaymentURL: "https://gateway.example/pay/" + req.OrderID.String(),
	}, nil
}

// recordingNotifier captures order state change notifications
type recordingNotifier struct {
	mu      sync.Mutex
	changes []string
}

func (n *recordingNotifier) OrderStateChanged(_ context.Context, ord *domain.Order, from, to domain.OrderState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, fmt.Sprintf("%s->%s", from, to))
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.changes...)
}

func transientErr(service, op string) error {
	return &domain.ExternalServiceError{Service: service, Op: op, Err: fmt.Errorf("503 service unavailable")}
}
