package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openlancer/payments-backend/internal/apperrors"
	"github.com/openlancer/payments-backend/internal/core/domain"
	portsint "github.com/openlancer/payments-backend/internal/core/ports/integrations"
	"github.com/openlancer/payments-backend/internal/core/services"
)

// MockApplicationSource is a mock type for the ApplicationSource interface
type MockApplicationSource struct {
	mock.Mock
}

func (m *MockApplicationSource) FetchAccepted(ctx context.Context, applicantUserID string) ([]domain.AcceptedApplication, error) {
	args := m.Called(ctx, applicantUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AcceptedApplication), args.Error(1)
}

var _ portsint.ApplicationSource = (*MockApplicationSource)(nil)

// --- Test Suite Setup ---

type ApplicationSyncServiceTestSuite struct {
	suite.Suite
	mockSource        *MockApplicationSource
	mockMilestoneRepo *MockMilestoneRepository
	mockKV            *MockKVStore
	service           *services.ApplicationSyncService
}

func (suite *ApplicationSyncServiceTestSuite) SetupTest() {
	suite.mockSource = new(MockApplicationSource)
	suite.mockMilestoneRepo = new(MockMilestoneRepository)
	suite.mockKV = new(MockKVStore)
	suite.service = services.NewApplicationSyncService(suite.mockSource, suite.mockMilestoneRepo, suite.mockKV)
}

func acceptedApplications() []domain.AcceptedApplication {
	return []domain.AcceptedApplication{
		{
			JobID:           "job-1",
			JobTitle:        "Website Redesign",
			ClientName:      "Acme Corp",
			ClientUserID:    "client-1",
			ApplicantUserID: "freelancer-1",
			Milestones: []domain.JobMilestone{
				{Description: "UI Mockups", Amount: decimal.NewFromInt(300), Status: "Pending", DueDate: "2025-04-20"},
				{Description: "Implementation", Amount: decimal.NewFromInt(700), Status: "Paid", DueDate: "2025-05-10"},
			},
		},
		{
			JobID:           "job-2",
			JobTitle:        "Mobile App Development",
			ClientName:      "",
			ClientUserID:    "client-2",
			ApplicantUserID: "freelancer-1",
			Milestones: []domain.JobMilestone{
				{Description: "API Integration", Amount: decimal.NewFromInt(500), DueDate: "N/A"},
			},
		},
	}
}

// --- Test Cases ---

func (suite *ApplicationSyncServiceTestSuite) TestSyncAccepted_FlattensMilestones() {
	ctx := context.Background()

	suite.mockSource.On("FetchAccepted", ctx, "freelancer-1").Return(acceptedApplications(), nil).Once()
	suite.mockKV.On("Get", ctx, mock.AnythingOfType("string")).Return("", false, nil)

	var captured []domain.MilestonePayment
	suite.mockMilestoneRepo.On("UpsertPayments", ctx, mock.MatchedBy(func(records []domain.MilestonePayment) bool {
		captured = records
		return len(records) == 3
	})).Return(nil).Once()

	count, err := suite.service.SyncAccepted(ctx, "freelancer-1")

	suite.Require().NoError(err)
	suite.Equal(3, count)
	suite.Require().Len(captured, 3)

	first := captured[0]
	suite.Equal("job-1_ms_0", first.PaymentID)
	suite.Equal(0, first.MilestoneIndex)
	suite.Equal("Acme Corp", first.ClientName)
	suite.Equal("freelancer-1", first.FreelancerUserID)
	suite.Equal(domain.StatusPending, first.Status)
	suite.Require().NotNil(first.DueDate)
	suite.Equal(time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), *first.DueDate)

	second := captured[1]
	suite.Equal("job-1_ms_1", second.PaymentID)
	suite.Equal(domain.StatusPaid, second.Status)

	third := captured[2]
	suite.Equal("job-2_ms_0", third.PaymentID)
	suite.Equal("Unknown", third.ClientName)
	suite.Equal(domain.StatusPending, third.Status)
	suite.Nil(third.DueDate)

	suite.mockMilestoneRepo.AssertExpectations(suite.T())
}

func (suite *ApplicationSyncServiceTestSuite) TestSyncAccepted_DoneOverrideWins() {
	ctx := context.Background()

	suite.mockSource.On("FetchAccepted", ctx, "freelancer-1").Return(acceptedApplications(), nil).Once()
	suite.mockKV.On("Get", ctx, services.DoneOverrideKey("freelancer-1", "job-1_ms_0")).Return("true", true, nil).Once()
	suite.mockKV.On("Get", ctx, mock.AnythingOfType("string")).Return("", false, nil)

	var captured []domain.MilestonePayment
	suite.mockMilestoneRepo.On("UpsertPayments", ctx, mock.MatchedBy(func(records []domain.MilestonePayment) bool {
		captured = records
		return true
	})).Return(nil).Once()

	count, err := suite.service.SyncAccepted(ctx, "freelancer-1")

	suite.Require().NoError(err)
	suite.Equal(3, count)
	suite.Require().Len(captured, 3)
	suite.Equal(domain.StatusDone, captured[0].Status)
	suite.True(captured[0].Done)
	// Remote statuses without overrides are untouched
	suite.Equal(domain.StatusPaid, captured[1].Status)
}

func (suite *ApplicationSyncServiceTestSuite) TestSyncAccepted_FetchTimeout() {
	ctx := context.Background()

	suite.mockSource.On("FetchAccepted", ctx, "freelancer-1").Return(nil, apperrors.ErrTimeout).Once()

	count, err := suite.service.SyncAccepted(ctx, "freelancer-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrTimeout)
	suite.Zero(count)
	suite.mockMilestoneRepo.AssertNotCalled(suite.T(), "UpsertPayments", mock.Anything, mock.Anything)
}

func (suite *ApplicationSyncServiceTestSuite) TestSyncAccepted_FetchFailure() {
	ctx := context.Background()

	suite.mockSource.On("FetchAccepted", ctx, "freelancer-1").Return(nil, apperrors.ErrRemoteFetch).Once()

	count, err := suite.service.SyncAccepted(ctx, "freelancer-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRemoteFetch)
	suite.Zero(count)
	suite.mockMilestoneRepo.AssertNotCalled(suite.T(), "UpsertPayments", mock.Anything, mock.Anything)
}

func (suite *ApplicationSyncServiceTestSuite) TestSyncAccepted_NoApplications() {
	ctx := context.Background()

	suite.mockSource.On("FetchAccepted", ctx, "freelancer-1").Return([]domain.AcceptedApplication{}, nil).Once()

	count, err := suite.service.SyncAccepted(ctx, "freelancer-1")

	suite.Require().NoError(err)
	suite.Zero(count)
	suite.mockMilestoneRepo.AssertNotCalled(suite.T(), "UpsertPayments", mock.Anything, mock.Anything)
}

// Run the suite
func TestApplicationSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationSyncServiceTestSuite))
}
