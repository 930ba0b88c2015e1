package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portssvc "github.com/openlancer/payments-backend/internal/core/ports/services"
	"github.com/openlancer/payments-backend/internal/dto"
	"github.com/openlancer/payments-backend/internal/middleware"
)

// paymentHandler handles HTTP requests related to milestone payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
	syncService    portssvc.ApplicationSyncSvc
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade, ss portssvc.ApplicationSyncSvc) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
		syncService:    ss,
	}
}

// RegisterPaymentRoutes registers routes related to milestone payments.
func RegisterPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade, syncService portssvc.ApplicationSyncSvc) {
	h := newPaymentHandler(paymentService, syncService)

	payments := rg.Group("/payments")
	{
		payments.GET("", h.listPayments)
		payments.POST("/sync", h.syncPayments)
		payments.GET("/:paymentID", h.getPayment)
		payments.POST("/:paymentID/done", h.markDone)
		payments.POST("/:paymentID/receive", h.receivePayment)
		payments.POST("/:paymentID/pay", h.payNow)
	}
}

// listPayments godoc
// @Summary List milestone payments
// @Description Retrieves payment records for a user, filterable by viewpoint, status, search text and due-date range
// @Tags payments
// @Produce json
// @Param userID query string false "User ID the records belong to"
// @Param viewpoint query string false "Viewpoint" Enums(CLIENT, FREELANCER)
// @Param status query string false "Status filter" Enums(PENDING, DONE, PAID, OVERDUE)
// @Param search query string false "Case-insensitive match against job title and client name"
// @Param dueFrom query string false "Due date lower bound (YYYY-MM-DD)"
// @Param dueTo query string false "Due date upper bound (YYYY-MM-DD)"
// @Param limit query int false "Limit number of results" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	filter, err := params.ToPaymentFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.Now = time.Now()

	payments, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		logger.Error("Failed to list payments from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListPaymentsResponse(payments))
}

// getPayment godoc
// @Summary Get a payment record by ID
// @Tags payments
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 500 {object} map[string]string "Failed to retrieve payment"
// @Router /payments/{paymentID} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to get payment from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// markDone godoc
// @Summary Mark a milestone as done
// @Description Freelancer asserts completion of a pending milestone
// @Tags payments
// @Accept json
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Param request body dto.PaymentActionRequest true "Acting user"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Milestone is not in a state that can be marked done"
// @Failure 500 {object} map[string]string "Failed to mark milestone done"
// @Router /payments/{paymentID}/done [post]
func (h *paymentHandler) markDone(c *gin.Context) {
	h.runAction(c, "mark milestone done", h.paymentService.MarkDone)
}

// receivePayment godoc
// @Summary Receive payment for a done milestone
// @Description Settles a done milestone into the freelancer's wallet
// @Tags payments
// @Accept json
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Param request body dto.PaymentActionRequest true "Acting user"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Payment or wallet not found"
// @Failure 409 {object} map[string]string "Milestone is not ready to be paid"
// @Failure 500 {object} map[string]string "Failed to receive payment"
// @Router /payments/{paymentID}/receive [post]
func (h *paymentHandler) receivePayment(c *gin.Context) {
	h.runAction(c, "receive payment", h.paymentService.ReceivePayment)
}

// payNow godoc
// @Summary Pay a milestone from the client wallet
// @Description Debits the client's wallet and marks the milestone paid
// @Tags payments
// @Accept json
// @Produce json
// @Param paymentID path string true "Payment ID"
// @Param request body dto.PaymentActionRequest true "Acting user"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Payment or wallet not found"
// @Failure 409 {object} map[string]string "Milestone has already been paid"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 500 {object} map[string]string "Failed to pay milestone"
// @Router /payments/{paymentID}/pay [post]
func (h *paymentHandler) payNow(c *gin.Context) {
	h.runAction(c, "pay milestone", h.paymentService.PayNow)
}

// syncPayments godoc
// @Summary Import accepted applications
// @Description Fetches the user's accepted applications from the remote source and upserts their milestones as payment records
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.SyncPaymentsRequest true "Applicant user"
// @Success 200 {object} dto.SyncPaymentsResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 502 {object} map[string]string "Remote source unavailable"
// @Failure 504 {object} map[string]string "Remote source timed out"
// @Router /payments/sync [post]
func (h *paymentHandler) syncPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SyncPaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SyncPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	imported, err := h.syncService.SyncAccepted(c.Request.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTimeout):
			logger.Error("Application source timed out", slog.String("error", err.Error()))
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Timed out fetching applications. Please try again."})
		case errors.Is(err, apperrors.ErrRemoteFetch):
			logger.Error("Application source fetch failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Error loading applications. Please try again."})
		default:
			logger.Error("Failed to sync payments", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync payments"})
		}
		return
	}

	logger.Info("Accepted applications imported", slog.String("user_id", req.UserID), slog.Int("imported", imported))
	c.JSON(http.StatusOK, dto.SyncPaymentsResponse{Imported: imported})
}

// runAction binds the acting user and applies a payment transition, mapping
// service errors onto HTTP statuses.
func (h *paymentHandler) runAction(c *gin.Context, name string, action func(ctx context.Context, paymentID, userID string) (*domain.MilestonePayment, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("paymentID")

	var req dto.PaymentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for payment action", slog.String("action", name), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	payment, err := action(c.Request.Context(), paymentID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found for this user"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		case errors.Is(err, apperrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds in your wallet. Please add more funds."})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Payment action failed", slog.String("action", name), slog.String("payment_id", paymentID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + name})
		}
		return
	}

	logger.Info("Payment action applied", slog.String("action", name), slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}
