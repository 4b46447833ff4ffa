package nomadly

import (
	"context"
	"testing"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotID = domain.BotId("bot-1")

func testUser(email string) *domain.User {
	now := time.Now().UTC()
	u := &domain.User{
		ID:             uuid.New(),
		TelegramUserID: 4242,
		TelegramChatID: 4242,
		FirstName:      "Ada",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if email != "" {
		u.ContactEmail = &email
	}
	return u
}

func TestGetOrCreateUser_CreatesOnFirstContact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	users := newFakeUserRepo()
	svc, _, _ := testService(users, &fakeRegistrar{}, &fakeGateway{})

	tgUser := &domain.TelegramUser{ID: 777, FirstName: "Linus"}
	chat := &domain.Chat{ID: 777, Type: "private"}

	user, err := svc.GetOrCreateUser(ctx, testBotID, tgUser, chat)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(777), user.TelegramUserID)

	again, err := svc.GetOrCreateUser(ctx, testBotID, tgUser, chat)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestGetOrCreateUser_RefreshesProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	existing := testUser("")
	users := newFakeUserRepo(existing)
	svc, _, _ := testService(users, &fakeRegistrar{}, &fakeGateway{})

	newName := "grace"
	tgUser := &domain.TelegramUser{ID: existing.TelegramUserID, FirstName: "Grace", Username: &newName}
	chat := &domain.Chat{ID: existing.TelegramChatID, Type: "private"}

	user, err := svc.GetOrCreateUser(ctx, testBotID, tgUser, chat)
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.FirstName)
	require.NotNil(t, user.Username)
	assert.Equal(t, "grace", *user.Username)
}

func TestHandleCommand_UnknownCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleCommand(ctx, testBotID, user, "frobnicate", 1))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "/frobnicate")
}

func TestHandleSearch_ThenQuery_Available(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{priceCents: 1000}, &fakeGateway{})

	require.NoError(t, svc.HandleSearch(ctx, testBotID, user))
	require.NoError(t, svc.HandleText(ctx, testBotID, user, "Example.COM", 2))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "example.com is available")
	// 1000 cents + 30% markup
	assert.Contains(t, msg.text, "13.00 USD")
	require.NotNil(t, msg.keyboard)

	session := svc.loadSession(ctx, user.ID)
	require.NotNil(t, session.LastQuote)
	assert.Equal(t, "example.com", session.LastQuote.DomainName)
}

func TestHandleText_TakenDomain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{unavailable: true}, &fakeGateway{})

	require.NoError(t, svc.HandleSearch(ctx, testBotID, user))
	require.NoError(t, svc.HandleText(ctx, testBotID, user, "taken.com", 2))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "already taken")

	// stays in search mode for the next attempt
	session := svc.loadSession(ctx, user.ID)
	assert.Equal(t, domain.SessionStepAwaitingQuery, session.Step)
}

func TestHandleText_RegistrarDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	reg := &fakeRegistrar{checkErr: &domain.ExternalServiceError{Service: "registrar", Op: "check", Err: context.DeadlineExceeded}}
	svc, tg, _ := testService(newFakeUserRepo(user), reg, &fakeGateway{})

	require.NoError(t, svc.HandleSearch(ctx, testBotID, user))
	require.NoError(t, svc.HandleText(ctx, testBotID, user, "example.com", 2))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "temporarily unavailable")
}

func TestHandleText_IdleDomainShapedMessageSearches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "example.org", 1))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "example.org is available")
}

func TestHandleText_IdleChatterGetsHint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "hello there", 1))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "/search")
}

func TestHandleCallback_BuyWithoutEmailAsksForIt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	users := newFakeUserRepo(user)
	svc, tg, _ := testService(users, &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "example.com", 1))
	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-1", "buy:example.com"))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "email")
	assert.Equal(t, []string{"cb-1"}, tg.callbacks)

	session := svc.loadSession(ctx, user.ID)
	assert.Equal(t, domain.SessionStepAwaitingEmail, session.Step)
	require.NotNil(t, session.PendingBuy)
	assert.Equal(t, "example.com", *session.PendingBuy)
}

func TestHandleText_EmailInputResumesPurchase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	users := newFakeUserRepo(user)
	svc, tg, _ := testService(users, &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "example.com", 1))
	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-1", "buy:example.com"))

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "bad email", 2))
	assert.Contains(t, tg.lastMessage().text, "does not look like an email")

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "Ada@Example.com", 3))

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ContactEmail)
	assert.Equal(t, "ada@example.com", *stored.ContactEmail)

	// coin choice follows straight away
	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "Pick the coin")
	require.NotNil(t, msg.keyboard)
}

func TestHandleCallback_PayCreatesOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("ada@example.com")
	svc, tg, orders := testService(newFakeUserRepo(user), &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "example.com", 1))
	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-1", "buy:example.com"))
	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-2", "pay:btc:example.com"))

	msg := tg.lastMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.text, "Send the payment to")
	assert.Contains(t, msg.text, "BTC")

	created, err := orders.GetInFlight(ctx, user.ID, "example.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.OrderStateAwaitingPayment, created.State)
	require.NotNil(t, created.PaymentAddress)

	// session is spent, a second buy needs a fresh search
	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-3", "buy:example.com"))
	assert.Contains(t, tg.lastMessage().text, "expired")
}

func TestHandleCallback_PayTwiceReportsInFlight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("ada@example.com")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleText(ctx, testBotID, user, "example.com", 1))
	session := svc.loadSession(ctx, user.ID)

	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-1", "pay:btc:example.com"))

	// replay the old quote against the open order
	s2 := *session
	svc.saveSession(ctx, user.ID, &s2)
	require.NoError(t, svc.HandleCallback(ctx, testBotID, user, "cb-2", "pay:btc:example.com"))

	assert.Contains(t, tg.lastMessage().text, "already have an open order")
}

func TestHandleMyDomains_Empty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := testUser("")
	svc, tg, _ := testService(newFakeUserRepo(user), &fakeRegistrar{}, &fakeGateway{})

	require.NoError(t, svc.HandleMyDomains(ctx, testBotID, user))
	assert.Contains(t, tg.lastMessage().text, "no registered domains")
}
