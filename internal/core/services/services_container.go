package services

import (
	portsint "github.com/openlancer/payments-backend/internal/core/ports/integrations"
	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/openlancer/payments-backend/internal/core/ports/services"
)

// NewServiceContainer wires the repositories and integrations into the
// application services consumed by the handlers.
func NewServiceContainer(
	repos portsrepo.RepositoryProvider,
	source portsint.ApplicationSource,
	publisher portsint.EventPublisher,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Wallet:  NewWalletService(repos.WalletRepo),
		Payment: NewPaymentService(repos.MilestoneRepo, repos.WalletRepo, repos.KVRepo, publisher),
		Sync:    NewApplicationSyncService(source, repos.MilestoneRepo, repos.KVRepo),
	}
}
