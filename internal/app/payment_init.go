package app

import (
	"github.com/Moxx-Company/Nomadly2/internal/ports/notify"
	orderUsecase "github.com/Moxx-Company/Nomadly2/internal/usecases/order"
)

// orderCore the order lifecycle machinery: the service facade, the payment
// reconciler behind the gateway webhook and the provisioning orchestrator.
// All three share one lock table, one order per lock at a time.
type orderCore struct {
	Service     *orderUsecase.Service
	Reconciler  *orderUsecase.Reconciler
	Provisioner *orderUsecase.Provisioner
	Locks       *orderUsecase.LockTable
}

// initOrderCore wires the order state machine to its collaborators
func (a *App) initOrderCore(
	repos *repositories,
	ext *externalServices,
	notifier notify.INotifier,
) *orderCore {
	locks := orderUsecase.NewLockTable()

	provisioner := orderUsecase.NewProvisioner(
		repos.Order,
		repos.User,
		repos.Domain,
		ext.DNS,
		ext.Registrar,
		locks,
		notifier,
		a.Cfg.Order.Provision,
		a.Log,
	)

	orderService := orderUsecase.NewService(
		repos.Order,
		repos.User,
		repos.Domain,
		ext.Registrar,
		ext.Gateway,
		ext.Links,
		provisioner,
		locks,
		notifier,
		a.Cfg.Order,
		a.Log,
	)

	reconciler := orderUsecase.NewReconciler(
		repos.Order,
		locks,
		provisioner,
		notifier,
		a.Log,
	)

	a.Log.Info("order core initialized")

	return &orderCore{
		Service:     orderService,
		Reconciler:  reconciler,
		Provisioner: provisioner,
		Locks:       locks,
	}
}
