package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/linguahub/api/internal/domain"
	"github.com/linguahub/api/internal/pkg/id"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Goal, error)
	Create(ctx context.Context, userID string, req domain.CreateGoalRequest) (*domain.Goal, error)
	Toggle(ctx context.Context, userID, goalID string) (*domain.Goal, error)
	Delete(ctx context.Context, userID, goalID string) error
}

type goalStore interface {
	Put(ctx context.Context, g *domain.Goal) error
	Get(ctx context.Context, goalID string) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Goal, error)
	SetCompleted(ctx context.Context, goalID string, completed bool) error
	Delete(ctx context.Context, goalID string) error
}

type service struct {
	repo goalStore
}

func NewService(repo goalStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateGoalRequest) (*domain.Goal, error) {
	now := time.Now().UTC()
	g := &domain.Goal{
		GoalID:    id.New(),
		UserID:    userID,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Toggle flips a custom goal between done and not-done. Preset goals created
// by onboarding are fixed and cannot be toggled.
func (s *service) Toggle(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	g, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if g.Preset {
		return nil, fmt.Errorf("preset goals cannot be toggled: %w", domain.ErrConflict)
	}
	if err := s.repo.SetCompleted(ctx, goalID, !g.Completed); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, goalID)
}

func (s *service) Delete(ctx context.Context, userID, goalID string) error {
	g, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return err
	}
	if g.Preset {
		return fmt.Errorf("preset goals cannot be deleted: %w", domain.ErrConflict)
	}
	return s.repo.Delete(ctx, goalID)
}

func (s *service) owned(ctx context.Context, userID, goalID string) (*domain.Goal, error) {
	g, err := s.repo.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		// Report foreign goals as missing rather than leaking their existence.
		return nil, fmt.Errorf("goal not found: %w", domain.ErrNotFound)
	}
	return g, nil
}
