package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portssvc "github.com/openlancer/payments-backend/internal/core/ports/services"
	"github.com/openlancer/payments-backend/internal/dto"
	"github.com/openlancer/payments-backend/internal/handlers"
)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetPaymentByID(ctx context.Context, paymentID string) (*domain.MilestonePayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MilestonePayment), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.MilestonePayment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MilestonePayment), args.Error(1)
}

func (m *MockPaymentService) MarkDone(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error) {
	args := m.Called(ctx, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MilestonePayment), args.Error(1)
}

func (m *MockPaymentService) ReceivePayment(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error) {
	args := m.Called(ctx, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MilestonePayment), args.Error(1)
}

func (m *MockPaymentService) PayNow(ctx context.Context, paymentID string, userID string) (*domain.MilestonePayment, error) {
	args := m.Called(ctx, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MilestonePayment), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock ApplicationSyncService ---
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncAccepted(ctx context.Context, applicantUserID string) (int, error) {
	args := m.Called(ctx, applicantUserID)
	return args.Int(0), args.Error(1)
}

var _ portssvc.ApplicationSyncSvc = (*MockSyncService)(nil)

// --- Test Suite ---
type PaymentHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockPaymentSvc  *MockPaymentService
	mockSyncService *MockSyncService
}

func (suite *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterCustomValidators()

	suite.router = gin.New()
	suite.mockPaymentSvc = new(MockPaymentService)
	suite.mockSyncService = new(MockSyncService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterPaymentRoutes(v1, suite.mockPaymentSvc, suite.mockSyncService)
}

func (suite *PaymentHandlerTestSuite) postJSON(url string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func paidPayment(paymentID string) *domain.MilestonePayment {
	return &domain.MilestonePayment{
		PaymentID:        paymentID,
		JobID:            "job-1",
		JobTitle:         "Website Redesign",
		ClientUserID:     "client-1",
		FreelancerUserID: "freelancer-1",
		Description:      "UI Mockups",
		Amount:           decimal.NewFromInt(300),
		Status:           domain.StatusPaid,
		Done:             true,
	}
}

// --- Test Cases ---

func (suite *PaymentHandlerTestSuite) TestMarkDone_Success() {
	payment := paidPayment("job-1_ms_0")
	payment.Status = domain.StatusDone

	suite.mockPaymentSvc.On("MarkDone", mock.Anything, "job-1_ms_0", "freelancer-1").Return(payment, nil).Once()

	w := suite.postJSON("/api/v1/payments/job-1_ms_0/done", dto.PaymentActionRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusDone, resp.Status)
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestMarkDone_InvalidTransition() {
	suite.mockPaymentSvc.On("MarkDone", mock.Anything, "job-1_ms_0", "freelancer-1").
		Return(nil, apperrors.ErrInvalidTransition).Once()

	w := suite.postJSON("/api/v1/payments/job-1_ms_0/done", dto.PaymentActionRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestMarkDone_MissingUserID() {
	w := suite.postJSON("/api/v1/payments/job-1_ms_0/done", map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentSvc.AssertNotCalled(suite.T(), "MarkDone", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentHandlerTestSuite) TestReceivePayment_Success() {
	suite.mockPaymentSvc.On("ReceivePayment", mock.Anything, "job-1_ms_0", "freelancer-1").
		Return(paidPayment("job-1_ms_0"), nil).Once()

	w := suite.postJSON("/api/v1/payments/job-1_ms_0/receive", dto.PaymentActionRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusPaid, resp.Status)
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestPayNow_InsufficientFunds() {
	suite.mockPaymentSvc.On("PayNow", mock.Anything, "job-1_ms_0", "client-1").
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := suite.postJSON("/api/v1/payments/job-1_ms_0/pay", dto.PaymentActionRequest{UserID: "client-1"})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "Insufficient funds")
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestPayNow_NotFound() {
	suite.mockPaymentSvc.On("PayNow", mock.Anything, "missing", "client-1").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.postJSON("/api/v1/payments/missing/pay", dto.PaymentActionRequest{UserID: "client-1"})

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestReceivePayment_WalletMissing() {
	suite.mockPaymentSvc.On("ReceivePayment", mock.Anything, "job-1_ms_0", "freelancer-1").
		Return(nil, apperrors.ErrWalletNotFound).Once()

	w := suite.postJSON("/api/v1/payments/job-1_ms_0/receive", dto.PaymentActionRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Wallet not found for this user")
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestListPayments_FiltersBound() {
	payments := []domain.MilestonePayment{*paidPayment("job-1_ms_0")}

	suite.mockPaymentSvc.On("ListPayments", mock.Anything, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.UserID == "freelancer-1" &&
			f.Viewpoint == domain.RoleFreelancer &&
			f.Status == domain.FilterOverdue &&
			f.Search == "redesign"
	})).Return(payments, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/payments?userID=freelancer-1&viewpoint=FREELANCER&status=OVERDUE&search=redesign", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListPaymentsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Payments, 1)
	suite.Equal("job-1_ms_0", resp.Payments[0].PaymentID)
	suite.mockPaymentSvc.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestListPayments_RejectsUnknownStatus() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/payments?status=BOGUS", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentSvc.AssertNotCalled(suite.T(), "ListPayments", mock.Anything, mock.Anything)
}

func (suite *PaymentHandlerTestSuite) TestSyncPayments_Success() {
	suite.mockSyncService.On("SyncAccepted", mock.Anything, "freelancer-1").Return(3, nil).Once()

	w := suite.postJSON("/api/v1/payments/sync", dto.SyncPaymentsRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SyncPaymentsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(3, resp.Imported)
	suite.mockSyncService.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestSyncPayments_RemoteFailure() {
	suite.mockSyncService.On("SyncAccepted", mock.Anything, "freelancer-1").
		Return(0, apperrors.ErrRemoteFetch).Once()

	w := suite.postJSON("/api/v1/payments/sync", dto.SyncPaymentsRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Contains(w.Body.String(), "Error loading applications")
	suite.mockSyncService.AssertExpectations(suite.T())
}

func (suite *PaymentHandlerTestSuite) TestSyncPayments_Timeout() {
	suite.mockSyncService.On("SyncAccepted", mock.Anything, "freelancer-1").
		Return(0, apperrors.ErrTimeout).Once()

	w := suite.postJSON("/api/v1/payments/sync", dto.SyncPaymentsRequest{UserID: "freelancer-1"})

	suite.Equal(http.StatusGatewayTimeout, w.Code)
	suite.Contains(w.Body.String(), "Timed out")
	suite.mockSyncService.AssertExpectations(suite.T())
}

// Run the suite
func TestPaymentHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}
