package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
	"github.com/openlancer/payments-backend/internal/middleware"
)

// WalletService implements the wallet ledger operations. All four mutations
// funnel through applyTransaction, which serializes per wallet and relies on
// the repository to adjust the balance and append the ledger row atomically.
type WalletService struct {
	walletRepo portsrepo.WalletRepositoryWithTx
	locks      *keyedMutex
}

func NewWalletService(repo portsrepo.WalletRepositoryWithTx) *WalletService {
	return &WalletService{
		walletRepo: repo,
		locks:      newKeyedMutex(),
	}
}

func (s *WalletService) GetWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find wallet by ID in repository", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
		}
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) GetWalletByUser(ctx context.Context, userID string, role domain.WalletRole) (*domain.Wallet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	wallet, err := s.walletRepo.FindWalletByUser(ctx, userID, role)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find wallet by user in repository", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
		return nil, err
	}
	return wallet, nil
}

// ListTransactions retrieves the append-only transaction log, oldest first.
func (s *WalletService) ListTransactions(ctx context.Context, walletID string, limit int, offset int) ([]domain.WalletTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	txns, err := s.walletRepo.ListTransactions(ctx, walletID, limit, offset)
	if err != nil {
		logger.Error("Failed to list wallet transactions", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		return []domain.WalletTransaction{}, nil
	}
	return txns, nil
}

// Deposit credits amount to the wallet and appends a DEPOSIT transaction.
func (s *WalletService) Deposit(ctx context.Context, walletID string, amount decimal.Decimal, userID string) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: deposit amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	return s.applyTransaction(ctx, walletID, domain.Deposit, amount, "Funds added to wallet", userID)
}

// Withdraw debits amount from the wallet and appends a WITHDRAWAL
// transaction with a negative amount.
func (s *WalletService) Withdraw(ctx context.Context, walletID string, amount decimal.Decimal, userID string) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	return s.applyTransaction(ctx, walletID, domain.Withdrawal, amount.Neg(), "Withdrawal from wallet", userID)
}

// RecordPayment credits a received milestone payment to the wallet.
func (s *WalletService) RecordPayment(ctx context.Context, walletID string, amount decimal.Decimal, description string, userID string) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	return s.applyTransaction(ctx, walletID, domain.Payment, amount, description, userID)
}

// Debit takes a milestone payment out of the payer wallet.
func (s *WalletService) Debit(ctx context.Context, walletID string, amount decimal.Decimal, description string, userID string) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	return s.applyTransaction(ctx, walletID, domain.Payment, amount.Neg(), description, userID)
}

func (s *WalletService) applyTransaction(ctx context.Context, walletID string, txnType domain.TransactionType, signedAmount decimal.Decimal, description string, userID string) (*domain.Wallet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	unlock := s.locks.Lock(walletID)
	defer unlock()

	now := time.Now().UTC()
	txn := domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      walletID,
		Type:          txnType,
		Amount:        signedAmount,
		Date:          now,
		Description:   description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	wallet, err := s.walletRepo.ApplyTransaction(ctx, txn)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to apply wallet transaction in repository", slog.String("error", err.Error()), slog.String("wallet_id", walletID), slog.String("type", string(txnType)))
		}
		return nil, err
	}

	logger.Info("Wallet transaction applied",
		slog.String("wallet_id", walletID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txnType)),
		slog.String("amount", signedAmount.String()),
		slog.String("balance", wallet.Balance.String()),
	)
	return wallet, nil
}
