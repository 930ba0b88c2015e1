package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlancer/payments-backend/internal/apperrors"
	portssvc "github.com/openlancer/payments-backend/internal/core/ports/services"
	"github.com/openlancer/payments-backend/internal/dto"
	"github.com/openlancer/payments-backend/internal/middleware"
)

// walletHandler handles HTTP requests related to wallets.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// newWalletHandler creates a new walletHandler.
func newWalletHandler(ws portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{
		walletService: ws,
	}
}

// RegisterWalletRoutes registers routes related to wallets.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := rg.Group("/wallets")
	{
		wallets.GET("/:walletID", h.getWallet)
		wallets.GET("/:walletID/transactions", h.listTransactions)
		wallets.POST("/:walletID/deposits", h.deposit)
		wallets.POST("/:walletID/withdrawals", h.withdraw)
	}
}

// getWallet godoc
// @Summary Get a wallet by ID
// @Description Retrieves the wallet balance and metadata
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} dto.WalletResponse
// @Failure 404 {object} map[string]string "Wallet not found"
// @Failure 500 {object} map[string]string "Failed to retrieve wallet"
// @Router /wallets/{walletID} [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	wallet, err := h.walletService.GetWalletByID(c.Request.Context(), walletID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Wallet not found", slog.String("wallet_id", walletID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		} else {
			logger.Error("Failed to get wallet from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// listTransactions godoc
// @Summary List wallet transactions
// @Description Retrieves the wallet's transaction log, oldest first
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /wallets/{walletID}/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.walletService.ListTransactions(c.Request.Context(), walletID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list transactions from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// deposit godoc
// @Summary Add funds to a wallet
// @Description Credits the wallet with the entered amount and appends a deposit transaction
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param request body dto.AmountRequest true "Amount to add"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Failure 500 {object} map[string]string "Failed to add funds"
// @Router /wallets/{walletID}/deposits [post]
func (h *walletHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount"})
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount"})
		return
	}

	wallet, err := h.walletService.Deposit(c.Request.Context(), walletID, amount, req.UserID)
	if err != nil {
		h.renderWalletError(c, err, "Failed to add funds")
		return
	}

	logger.Info("Funds added to wallet", slog.String("wallet_id", walletID), slog.String("amount", amount.String()))
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// withdraw godoc
// @Summary Withdraw funds from a wallet
// @Description Debits the wallet and appends a withdrawal transaction with a negative amount
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param request body dto.AmountRequest true "Amount to withdraw"
// @Success 200 {object} dto.WalletResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to withdraw funds"
// @Router /wallets/{walletID}/withdrawals [post]
func (h *walletHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("walletID")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount"})
		return
	}

	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount"})
		return
	}

	wallet, err := h.walletService.Withdraw(c.Request.Context(), walletID, amount, req.UserID)
	if err != nil {
		h.renderWalletError(c, err, "Failed to withdraw funds")
		return
	}

	logger.Info("Funds withdrawn from wallet", slog.String("wallet_id", walletID), slog.String("amount", amount.String()))
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

func (h *walletHandler) renderWalletError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid amount"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds in your wallet. Please add more funds."})
	default:
		logger.Error("Wallet operation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
