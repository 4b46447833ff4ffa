package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/Moxx-Company/Nomadly2/internal/ports/repository"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
)

const provisioningRetrierName = "provisioning-retrier"

const retryBatchLimit = 20

// ProvisioningRetrier resumes paid orders whose provisioning stalled on a
// transient provider failure. Orders younger than stuckAfter are left alone
// so retries never race a provisioning run that is still in flight.
type ProvisioningRetrier struct {
	orders       repository.IOrderRepo
	orderService *orderUsecase.Service
	interval     time.Duration
	stuckAfter   time.Duration
	log          *slog.Logger
}

func NewProvisioningRetrier(
	orders repository.IOrderRepo,
	orderService *orderUsecase.Service,
	interval time.Duration,
	stuckAfter time.Duration,
	log *slog.Logger,
) *ProvisioningRetrier {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if stuckAfter <= 0 {
		stuckAfter = 10 * time.Minute
	}

	return &ProvisioningRetrier{
		orders:       orders,
		orderService: orderService,
		interval:     interval,
		stuckAfter:   stuckAfter,
		log:          log,
	}
}

func (j *ProvisioningRetrier) Name() string {
	return provisioningRetrierName
}

// NextRun runs on a fixed interval
func (j *ProvisioningRetrier) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Run retries every stuck order in the batch. A single failed retry does not
// stop the sweep, the order stays in place for the next one.
func (j *ProvisioningRetrier) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.stuckAfter)

	stuck, err := j.orders.ListStuckProvisioning(ctx, cutoff, retryBatchLimit)
	if err != nil {
		return err
	}

	for _, order := range stuck {
		if err := j.orderService.RetryProvisioning(ctx, order.ID); err != nil {
			if errors.Is(err, domain.ErrOrderInFlight) || errors.Is(err, domain.ErrInvalidTransition) {
				continue
			}
			j.log.Warn("provisioning retry failed",
				"order_id", order.ID,
				"domain_name", order.DomainName,
				"state", order.State,
				"error", err,
			)
		}
	}

	return nil
}
