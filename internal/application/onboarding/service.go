package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/linguahub/api/internal/domain"
	"github.com/linguahub/api/internal/pkg/id"
)

type Service interface {
	Complete(ctx context.Context, userID string, req domain.OnboardingRequest) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type goalStore interface {
	Put(ctx context.Context, g *domain.Goal) error
}

type service struct {
	userRepo userStore
	goalRepo goalStore
}

func NewService(userRepo userStore, goalRepo goalStore) Service {
	return &service{userRepo: userRepo, goalRepo: goalRepo}
}

// Complete validates the onboarding selections, stores the learner profile
// and creates the preset dashboard goal derived from the selections.
// Re-running onboarding overwrites the profile but never duplicates the
// preset goal.
func (s *service) Complete(ctx context.Context, userID string, req domain.OnboardingRequest) error {
	level, ok := domain.NormalizeLevel(req.SelectedLevel)
	if !ok {
		return fmt.Errorf("unknown level %q: %w", req.SelectedLevel, domain.ErrBadRequest)
	}
	if req.DailyMinutes <= 0 {
		return fmt.Errorf("daily_minutes must be positive: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	profile := &domain.LearnerProfile{
		Language:     req.SelectedLanguage,
		Level:        level,
		Goal:         req.SelectedGoal,
		StudyTime:    req.SelectedTime,
		DailyMinutes: req.DailyMinutes,
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{
		"profile":   profile,
		"onboarded": true,
	}); err != nil {
		return err
	}
	if u.Onboarded {
		return nil
	}
	now := time.Now().UTC()
	return s.goalRepo.Put(ctx, &domain.Goal{
		GoalID:    id.New(),
		UserID:    userID,
		Title:     fmt.Sprintf("%s: %d min a day", req.SelectedGoal, req.DailyMinutes),
		Preset:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
