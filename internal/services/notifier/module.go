package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/kafka"
	"github.com/Moxx-Company/Nomadly2/internal/ports/notify"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	"github.com/Moxx-Company/Nomadly2/internal/ports/service"
)

// Service fans order lifecycle events out to Kafka and to the user's chat.
// Both sinks are best-effort: a delivery failure is logged and dropped, the
// state change that produced the event is already committed.
type Service struct {
	producer kafka.IEventProducer
	telegram service.ITelegramService
	users    repository.IUserRepo
	botID    domain.BotId
	log      *slog.Logger
}

func New(
	producer kafka.IEventProducer,
	telegram service.ITelegramService,
	users repository.IUserRepo,
	botID domain.BotId,
	log *slog.Logger,
) notify.INotifier {
	return &Service{
		producer: producer,
		telegram: telegram,
		users:    users,
		botID:    botID,
		log:      log,
	}
}

// orderEvent the Kafka payload for one state transition
type orderEvent struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	DomainName string    `json:"domain_name"`
	FromState  string    `json:"from_state"`
	ToState    string    `json:"to_state"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderStateChanged publishes the transition and messages the order's owner
func (s *Service) OrderStateChanged(ctx context.Context, order *domain.Order, from, to domain.OrderState) {
	s.publishEvent(ctx, order, from, to)
	s.notifyUser(ctx, order, to)
}

func (s *Service) publishEvent(ctx context.Context, order *domain.Order, from, to domain.OrderState) {
	if s.producer == nil {
		return
	}

	event := orderEvent{
		OrderID:    order.ID.String(),
		UserID:     order.UserID.String(),
		DomainName: order.DomainName,
		FromState:  from.String(),
		ToState:    to.String(),
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal order event", "error", err, "order_id", order.ID)
		return
	}

	if err := s.producer.SendOrderEvent(ctx, order.ID.String(), payload); err != nil {
		s.log.Error("failed to publish order event",
			"error", err,
			"order_id", order.ID,
			"to_state", to,
		)
	}
}

func (s *Service) notifyUser(ctx context.Context, order *domain.Order, to domain.OrderState) {
	if s.telegram == nil {
		return
	}

	text := messageFor(order, to)
	if text == "" {
		return
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil || user == nil {
		s.log.Error("failed to load order owner for notification",
			"error", err,
			"order_id", order.ID,
			"user_id", order.UserID,
		)
		return
	}

	if err := s.telegram.SendMessage(ctx, s.botID, user.TelegramChatID, text); err != nil {
		s.log.Error("failed to notify user about order",
			"error", err,
			"order_id", order.ID,
			"chat_id", user.TelegramChatID,
		)
	}
}

// messageFor returns the chat message for a transition, or "" for states the
// user does not need to hear about
func messageFor(order *domain.Order, to domain.OrderState) string {
	switch to {
	case domain.OrderStatePaymentConfirmed:
		return fmt.Sprintf("✅ Payment received for %s. Setting up your domain now.", order.DomainName)
	case domain.OrderStateRegistered:
		return fmt.Sprintf("🎉 %s is yours! The domain is registered and DNS is live.", order.DomainName)
	case domain.OrderStateFailed:
		reason := "something went wrong on our side"
		if order.FailureReason != nil && *order.FailureReason != "" {
			reason = *order.FailureReason
		}
		return fmt.Sprintf("❌ We could not complete the order for %s: %s.\nSupport will reach out to you.", order.DomainName, reason)
	case domain.OrderStateExpired:
		return fmt.Sprintf("⌛ The payment window for %s has closed. Start a new search if you still want it.", order.DomainName)
	default:
		return ""
	}
}
