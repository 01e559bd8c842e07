package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/linguahub/api/internal/domain"
)

type Service interface {
	// ListModules returns the foundation catalog ordered by ordinal with the
	// user's progress merged in.
	ListModules(ctx context.Context, userID string) ([]domain.ModuleStatus, error)
	// CompleteLesson advances the user one lesson inside a module. Progress is
	// monotonic: completing an already-counted lesson changes nothing, and
	// lessons_done never exceeds the module's lesson count.
	CompleteLesson(ctx context.Context, userID, moduleID string, lesson int) (*domain.ModuleProgress, error)
	Summary(ctx context.Context, userID string) (*domain.ProgressSummary, error)
}

type moduleStore interface {
	Get(ctx context.Context, moduleID string) (*domain.Module, error)
	Scan(ctx context.Context) ([]domain.Module, error)
}

type progressStore interface {
	Put(ctx context.Context, p *domain.ModuleProgress) error
	Get(ctx context.Context, userID, moduleID string) (*domain.ModuleProgress, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ModuleProgress, error)
}

type service struct {
	modules  moduleStore
	progress progressStore
}

func NewService(modules moduleStore, progress progressStore) Service {
	return &service{modules: modules, progress: progress}
}

func (s *service) ListModules(ctx context.Context, userID string) ([]domain.ModuleStatus, error) {
	catalog, err := s.modules.Scan(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byModule := make(map[string]domain.ModuleProgress, len(rows))
	for _, p := range rows {
		byModule[p.ModuleID] = p
	}
	statuses := make([]domain.ModuleStatus, 0, len(catalog))
	for _, m := range catalog {
		st := domain.ModuleStatus{Module: m}
		if p, ok := byModule[m.ModuleID]; ok {
			st.LessonsDone = p.LessonsDone
			st.Completed = p.CompletedAt != nil
			st.CompletedAt = p.CompletedAt
		}
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Ordinal < statuses[j].Ordinal })
	return statuses, nil
}

func (s *service) CompleteLesson(ctx context.Context, userID, moduleID string, lesson int) (*domain.ModuleProgress, error) {
	if lesson < 1 {
		return nil, fmt.Errorf("lesson must be positive: %w", domain.ErrBadRequest)
	}
	m, err := s.modules.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if lesson > m.LessonCount {
		return nil, fmt.Errorf("module has only %d lessons: %w", m.LessonCount, domain.ErrBadRequest)
	}
	p, err := s.progress.Get(ctx, userID, moduleID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		p = &domain.ModuleProgress{UserID: userID, ModuleID: moduleID}
	}
	if lesson <= p.LessonsDone {
		return p, nil // already counted
	}
	p.LessonsDone = lesson
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.LessonsDone >= m.LessonCount && p.CompletedAt == nil {
		p.CompletedAt = &now
	}
	if err := s.progress.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Summary(ctx context.Context, userID string) (*domain.ProgressSummary, error) {
	statuses, err := s.ListModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := &domain.ProgressSummary{}
	for _, st := range statuses {
		sum.ModulesTotal++
		sum.LessonsTotal += st.LessonCount
		sum.LessonsDone += st.LessonsDone
		if st.Completed {
			sum.ModulesCompleted++
		}
	}
	return sum, nil
}
