package jobs

import (
	"context"
	"log/slog"
	"time"

	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
)

const orderExpirerName = "order-expirer"

// expireBatchLimit caps how many orders a single sweep expires
const expireBatchLimit = 100

// OrderExpirer sweeps unpaid orders past their payment window into expired
type OrderExpirer struct {
	orderService *orderUsecase.Service
	interval     time.Duration
	log          *slog.Logger
}

func NewOrderExpirer(
	orderService *orderUsecase.Service,
	interval time.Duration,
	log *slog.Logger,
) *OrderExpirer {
	if interval <= 0 {
		interval = time.Minute
	}

	return &OrderExpirer{
		orderService: orderService,
		interval:     interval,
		log:          log,
	}
}

func (j *OrderExpirer) Name() string {
	return orderExpirerName
}

// NextRun runs on a fixed interval
func (j *OrderExpirer) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Run expires stale orders in one batch
func (j *OrderExpirer) Run(ctx context.Context) error {
	expired, err := j.orderService.ExpireStale(ctx, time.Now().UTC(), expireBatchLimit)
	if err != nil {
		return err
	}

	if expired > 0 {
		j.log.Info("expired stale orders", "count", expired)
	}
	return nil
}
