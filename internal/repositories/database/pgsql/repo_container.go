package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	walletRepo := newPgxWalletRepository(dbPool)
	milestoneRepo := newPgxMilestoneRepository(dbPool, walletRepo)
	kvRepo := newPgxKVRepository(dbPool)

	return portsrepo.RepositoryProvider{
		WalletRepo:    walletRepo,
		MilestoneRepo: milestoneRepo,
		KVRepo:        kvRepo,
	}
}
