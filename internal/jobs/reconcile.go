package jobs

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
)

// Reconciler verifies that every wallet balance equals the sum of its
// transaction log. A mismatch indicates a write that bypassed the ledger
// and is reported but never auto-corrected.
type Reconciler struct {
	walletRepo portsrepo.WalletRepositoryFacade
	logger     *slog.Logger
	timeout    time.Duration
}

// NewReconciler creates a Reconciler over the given wallet repository.
func NewReconciler(walletRepo portsrepo.WalletRepositoryFacade, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		walletRepo: walletRepo,
		logger:     logger,
		timeout:    2 * time.Minute,
	}
}

// Run checks all wallets and returns the number of mismatched ones.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	wallets, err := r.walletRepo.ListWallets(ctx)
	if err != nil {
		return 0, err
	}

	mismatched := 0
	for _, w := range wallets {
		sum, err := r.walletRepo.SumTransactions(ctx, w.WalletID)
		if err != nil {
			r.logger.Error("Failed to sum transactions during reconciliation",
				slog.String("wallet_id", w.WalletID), slog.String("error", err.Error()))
			continue
		}
		if !w.Balance.Equal(sum) {
			mismatched++
			r.logger.Warn("Wallet balance does not match transaction log",
				slog.String("wallet_id", w.WalletID),
				slog.String("balance", w.Balance.String()),
				slog.String("transaction_sum", sum.String()))
		}
	}

	r.logger.Info("Wallet reconciliation finished",
		slog.Int("wallets", len(wallets)), slog.Int("mismatched", mismatched))
	return mismatched, nil
}
