package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/creditdesk/backend/internal/workflow/model"
)

// MockStepRepository is a mock implementation of StepRepository
type MockStepRepository struct {
	mock.Mock
}

func (m *MockStepRepository) CreateStepsInTx(ctx context.Context, tx *gorm.DB, steps []model.WorkflowStepDetail) ([]model.WorkflowStepDetail, error) {
	args := m.Called(ctx, tx, steps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkflowStepDetail), args.Error(1)
}

func (m *MockStepRepository) GetStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) (*model.WorkflowStepDetail, error) {
	args := m.Called(ctx, tx, stepID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkflowStepDetail), args.Error(1)
}

func (m *MockStepRepository) GetStepsByOrderIDInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]model.WorkflowStepDetail, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkflowStepDetail), args.Error(1)
}

func (m *MockStepRepository) ResolveStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, approval bool, approverID uuid.UUID, comment *string, decidedAt time.Time) (int64, error) {
	args := m.Called(ctx, tx, stepID, approval, approverID, comment, decidedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStepRepository) StartStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, startedAt time.Time) (int64, error) {
	args := m.Called(ctx, tx, stepID, startedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStepRepository) DeleteStepsByOrderIDInTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	args := m.Called(ctx, tx, orderID)
	return args.Error(0)
}

func timePtr(t time.Time) *time.Time { return &t }

func boolPtr(v bool) *bool { return &v }

func strPtr(s string) *string { return &s }

func TestInitializeSteps(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Two Jurisdictions Start Step One Only", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		orderID := uuid.New()
		analystID := uuid.New()
		managerID := uuid.New()

		mockRepo.On("CreateStepsInTx", ctx, (*gorm.DB)(nil), mock.MatchedBy(func(steps []model.WorkflowStepDetail) bool {
			if len(steps) != 2 {
				return false
			}
			return steps[0].StepNumber == 1 && steps[0].StartedAt != nil &&
				steps[1].StepNumber == 2 && steps[1].StartedAt == nil
		})).Return([]model.WorkflowStepDetail{
			{WorkflowOrderID: orderID, StepNumber: 1, JurisdictionID: analystID, StartedAt: &now},
			{WorkflowOrderID: orderID, StepNumber: 2, JurisdictionID: managerID},
		}, nil).Once()

		steps, err := sm.InitializeSteps(ctx, nil, orderID, []uuid.UUID{analystID, managerID}, now)
		assert.NoError(t, err)
		assert.Len(t, steps, 2)
		assert.Equal(t, analystID, steps[0].JurisdictionID)
		assert.Nil(t, steps[0].Approval)
		assert.Nil(t, steps[1].StartedAt)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Empty Jurisdiction List Is A Configuration Error", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		_, err := sm.InitializeSteps(ctx, nil, uuid.New(), nil, now)
		assert.ErrorIs(t, err, model.ErrNoJurisdictions)
		mockRepo.AssertNotCalled(t, "CreateStepsInTx")
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Approval Activates Next Step", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		orderID := uuid.New()
		approverID := uuid.New()
		step1 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      1,
			StartedAt:       timePtr(now.Add(-time.Hour)),
		}
		step2 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      2,
		}

		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), step1.ID).Return(&step1, nil).Once()
		mockRepo.On("ResolveStepInTx", ctx, (*gorm.DB)(nil), step1.ID, true, approverID, strPtr("ok"), mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()
		mockRepo.On("GetStepsByOrderIDInTx", ctx, (*gorm.DB)(nil), orderID).Return([]model.WorkflowStepDetail{step1, step2}, nil).Once()
		mockRepo.On("StartStepInTx", ctx, (*gorm.DB)(nil), step2.ID, mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()

		transition, err := sm.Decide(ctx, nil, step1.ID, model.DecisionApprove, approverID, strPtr("ok"), time.Now().UTC())
		assert.NoError(t, err)
		assert.NotNil(t, transition.Step.Approval)
		assert.True(t, *transition.Step.Approval)
		assert.NotNil(t, transition.Step.FinishedAt)
		assert.Equal(t, approverID, *transition.Step.ApproverID)
		assert.NotNil(t, transition.NextStep)
		assert.Equal(t, step2.ID, transition.NextStep.ID)
		assert.NotNil(t, transition.NextStep.StartedAt)
		assert.Equal(t, model.RequestStatusPending, transition.DerivedStatus)
		assert.False(t, transition.Terminal())
		mockRepo.AssertExpectations(t)
	})

	t.Run("Final Approval Is Terminal", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		orderID := uuid.New()
		approverID := uuid.New()
		step1 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      1,
			Approval:        boolPtr(true),
			StartedAt:       timePtr(now.Add(-2 * time.Hour)),
			FinishedAt:      timePtr(now.Add(-time.Hour)),
		}
		step2 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      2,
			StartedAt:       timePtr(now.Add(-time.Hour)),
		}

		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), step2.ID).Return(&step2, nil).Once()
		mockRepo.On("ResolveStepInTx", ctx, (*gorm.DB)(nil), step2.ID, true, approverID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()
		mockRepo.On("GetStepsByOrderIDInTx", ctx, (*gorm.DB)(nil), orderID).Return([]model.WorkflowStepDetail{step1, step2}, nil).Once()

		transition, err := sm.Decide(ctx, nil, step2.ID, model.DecisionApprove, approverID, nil, time.Now().UTC())
		assert.NoError(t, err)
		assert.Nil(t, transition.NextStep)
		assert.Equal(t, model.RequestStatusApproved, transition.DerivedStatus)
		assert.True(t, transition.Terminal())
		mockRepo.AssertNotCalled(t, "StartStepInTx")
	})

	t.Run("Rejection Activates Nothing", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		orderID := uuid.New()
		approverID := uuid.New()
		step1 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      1,
			StartedAt:       timePtr(now.Add(-time.Hour)),
		}
		step2 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      2,
		}

		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), step1.ID).Return(&step1, nil).Once()
		mockRepo.On("ResolveStepInTx", ctx, (*gorm.DB)(nil), step1.ID, false, approverID, strPtr("insufficient score"), mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()
		mockRepo.On("GetStepsByOrderIDInTx", ctx, (*gorm.DB)(nil), orderID).Return([]model.WorkflowStepDetail{step1, step2}, nil).Once()

		transition, err := sm.Decide(ctx, nil, step1.ID, model.DecisionReject, approverID, strPtr("insufficient score"), time.Now().UTC())
		assert.NoError(t, err)
		assert.Nil(t, transition.NextStep)
		assert.Equal(t, model.RequestStatusRejected, transition.DerivedStatus)
		assert.True(t, transition.Terminal())
		mockRepo.AssertNotCalled(t, "StartStepInTx")
	})

	t.Run("Second Decision On Resolved Step Fails", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		orderID := uuid.New()
		approverID := uuid.New()
		step1 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      1,
			Approval:        boolPtr(true),
			StartedAt:       timePtr(now.Add(-time.Hour)),
			FinishedAt:      timePtr(now),
		}

		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), step1.ID).Return(&step1, nil).Once()
		mockRepo.On("ResolveStepInTx", ctx, (*gorm.DB)(nil), step1.ID, true, approverID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()

		_, err := sm.Decide(ctx, nil, step1.ID, model.DecisionApprove, approverID, nil, time.Now().UTC())
		assert.ErrorIs(t, err, model.ErrStepNotActive)

		var stepErr *model.StepNotActiveError
		assert.ErrorAs(t, err, &stepErr)
		assert.Equal(t, step1.ID, stepErr.StepID)
		mockRepo.AssertNotCalled(t, "GetStepsByOrderIDInTx")
	})

	t.Run("Unstarted Step Cannot Be Decided", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		step2 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: uuid.New(),
			StepNumber:      2,
		}

		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), step2.ID).Return(&step2, nil).Once()
		mockRepo.On("ResolveStepInTx", ctx, (*gorm.DB)(nil), step2.ID, true, mock.Anything, (*string)(nil), mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()

		_, err := sm.Decide(ctx, nil, step2.ID, model.DecisionApprove, uuid.New(), nil, time.Now().UTC())
		assert.ErrorIs(t, err, model.ErrStepNotActive)
	})

	t.Run("Unknown Outcome Is Rejected", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		_, err := sm.Decide(ctx, nil, uuid.New(), model.DecisionOutcome("maybe"), uuid.New(), nil, time.Now().UTC())
		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "GetStepInTx")
	})

	t.Run("Missing Step Propagates NotFound", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		stepID := uuid.New()
		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), stepID).Return(nil, model.ErrNotFound).Once()

		_, err := sm.Decide(ctx, nil, stepID, model.DecisionApprove, uuid.New(), nil, time.Now().UTC())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Already Started Successor Aborts", func(t *testing.T) {
		mockRepo := new(MockStepRepository)
		sm := NewStepStateMachine(mockRepo)

		orderID := uuid.New()
		approverID := uuid.New()
		step1 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      1,
			StartedAt:       timePtr(now.Add(-time.Hour)),
		}
		step2 := model.WorkflowStepDetail{
			BaseModel:       model.BaseModel{ID: uuid.New()},
			WorkflowOrderID: orderID,
			StepNumber:      2,
			StartedAt:       timePtr(now),
		}

		mockRepo.On("GetStepInTx", ctx, (*gorm.DB)(nil), step1.ID).Return(&step1, nil).Once()
		mockRepo.On("ResolveStepInTx", ctx, (*gorm.DB)(nil), step1.ID, true, approverID, (*string)(nil), mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()
		mockRepo.On("GetStepsByOrderIDInTx", ctx, (*gorm.DB)(nil), orderID).Return([]model.WorkflowStepDetail{step1, step2}, nil).Once()
		mockRepo.On("StartStepInTx", ctx, (*gorm.DB)(nil), step2.ID, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()

		_, err := sm.Decide(ctx, nil, step1.ID, model.DecisionApprove, approverID, nil, time.Now().UTC())
		assert.ErrorIs(t, err, model.ErrStepNotActive)
	})
}

func TestActiveStep(t *testing.T) {
	now := time.Now().UTC()
	orderID := uuid.New()

	t.Run("Single Active Step", func(t *testing.T) {
		steps := []model.WorkflowStepDetail{
			{StepNumber: 1, Approval: boolPtr(true), StartedAt: timePtr(now)},
			{StepNumber: 2, StartedAt: timePtr(now)},
			{StepNumber: 3},
		}
		current := ActiveStep(orderID, steps)
		assert.NotNil(t, current)
		assert.Equal(t, 2, current.StepNumber)
	})

	t.Run("Terminal Order Has No Active Step", func(t *testing.T) {
		steps := []model.WorkflowStepDetail{
			{StepNumber: 1, Approval: boolPtr(true), StartedAt: timePtr(now)},
			{StepNumber: 2, Approval: boolPtr(false), StartedAt: timePtr(now)},
		}
		assert.Nil(t, ActiveStep(orderID, steps))
	})

	t.Run("Lowest Step Number Wins A Tie", func(t *testing.T) {
		// Two active steps cannot happen under correct engine usage; the
		// lowest step number must be authoritative anyway.
		steps := []model.WorkflowStepDetail{
			{StepNumber: 3, StartedAt: timePtr(now)},
			{StepNumber: 2, StartedAt: timePtr(now)},
		}
		current := ActiveStep(orderID, steps)
		assert.NotNil(t, current)
		assert.Equal(t, 2, current.StepNumber)
	})
}
