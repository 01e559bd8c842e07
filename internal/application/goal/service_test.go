package goal

import (
	"context"
	"testing"

	"github.com/linguahub/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGoalStore struct{ mock.Mock }

func (m *mockGoalStore) Put(ctx context.Context, g *domain.Goal) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockGoalStore) Get(ctx context.Context, goalID string) (*domain.Goal, error) {
	args := m.Called(ctx, goalID)
	if g, _ := args.Get(0).(*domain.Goal); g != nil {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockGoalStore) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	args := m.Called(ctx, userID)
	if gs, _ := args.Get(0).([]domain.Goal); gs != nil {
		return gs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockGoalStore) SetCompleted(ctx context.Context, goalID string, completed bool) error {
	return m.Called(ctx, goalID, completed).Error(0)
}
func (m *mockGoalStore) Delete(ctx context.Context, goalID string) error {
	return m.Called(ctx, goalID).Error(0)
}

// --- tests ---

func TestCreate_AssignsIDAndOwner(t *testing.T) {
	repo := &mockGoalStore{}
	repo.On("Put", mock.Anything, mock.MatchedBy(func(g *domain.Goal) bool {
		return g.GoalID != "" && g.UserID == "u1" && g.Title == "Finish unit 3" && !g.Preset
	})).Return(nil)

	svc := NewService(repo)
	g, err := svc.Create(context.Background(), "u1", domain.CreateGoalRequest{Title: "Finish unit 3"})

	require.NoError(t, err)
	assert.NotEmpty(t, g.GoalID)
}

func TestToggle_FlipsCompletion(t *testing.T) {
	repo := &mockGoalStore{}
	repo.On("Get", mock.Anything, "g1").Return(&domain.Goal{GoalID: "g1", UserID: "u1", Completed: false}, nil)
	repo.On("SetCompleted", mock.Anything, "g1", true).Return(nil)

	svc := NewService(repo)
	_, err := svc.Toggle(context.Background(), "u1", "g1")

	require.NoError(t, err)
	repo.AssertCalled(t, "SetCompleted", mock.Anything, "g1", true)
}

func TestToggle_PresetGoalRejected(t *testing.T) {
	repo := &mockGoalStore{}
	repo.On("Get", mock.Anything, "g1").Return(&domain.Goal{GoalID: "g1", UserID: "u1", Preset: true}, nil)

	svc := NewService(repo)
	_, err := svc.Toggle(context.Background(), "u1", "g1")

	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNotCalled(t, "SetCompleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggle_ForeignGoalReportedAsMissing(t *testing.T) {
	repo := &mockGoalStore{}
	repo.On("Get", mock.Anything, "g1").Return(&domain.Goal{GoalID: "g1", UserID: "someone-else"}, nil)

	svc := NewService(repo)
	_, err := svc.Toggle(context.Background(), "u1", "g1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_PresetGoalRejected(t *testing.T) {
	repo := &mockGoalStore{}
	repo.On("Get", mock.Anything, "g1").Return(&domain.Goal{GoalID: "g1", UserID: "u1", Preset: true}, nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), "u1", "g1")

	assert.ErrorIs(t, err, domain.ErrConflict)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_OwnCustomGoal(t *testing.T) {
	repo := &mockGoalStore{}
	repo.On("Get", mock.Anything, "g1").Return(&domain.Goal{GoalID: "g1", UserID: "u1"}, nil)
	repo.On("Delete", mock.Anything, "g1").Return(nil)

	svc := NewService(repo)
	assert.NoError(t, svc.Delete(context.Background(), "u1", "g1"))
}
