package module

import (
	"context"
	"sort"

	"github.com/linguahub/api/internal/domain"
	"github.com/linguahub/api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldOrdinal     = "ordinal"
	fieldLessonCount = "lesson_count"
)

// Service manages the shared foundation-course catalog. Learner progress is
// handled separately; removing a catalog entry is a hard delete.
type Service interface {
	List(ctx context.Context) ([]domain.Module, error)
	Get(ctx context.Context, moduleID string) (*domain.Module, error)
	Create(ctx context.Context, input domain.ModuleInput) (*domain.Module, error)
	Update(ctx context.Context, moduleID string, input domain.ModuleInput) (*domain.Module, error)
	Delete(ctx context.Context, moduleID string) error
}

type moduleStore interface {
	Scan(ctx context.Context) ([]domain.Module, error)
	Get(ctx context.Context, moduleID string) (*domain.Module, error)
	Put(ctx context.Context, m *domain.Module) error
	Update(ctx context.Context, moduleID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, moduleID string) error
}

type service struct {
	repo moduleStore
}

func NewService(repo moduleStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Module, error) {
	modules, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Ordinal < modules[j].Ordinal })
	return modules, nil
}

func (s *service) Get(ctx context.Context, moduleID string) (*domain.Module, error) {
	return s.repo.Get(ctx, moduleID)
}

func (s *service) Create(ctx context.Context, input domain.ModuleInput) (*domain.Module, error) {
	m := &domain.Module{
		ModuleID:    id.New(),
		Title:       input.Title,
		Description: input.Description,
		Ordinal:     input.Ordinal,
		LessonCount: input.LessonCount,
	}
	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Update(ctx context.Context, moduleID string, input domain.ModuleInput) (*domain.Module, error) {
	if err := s.repo.Update(ctx, moduleID, map[string]interface{}{
		fieldTitle:       input.Title,
		fieldDescription: input.Description,
		fieldOrdinal:     input.Ordinal,
		fieldLessonCount: input.LessonCount,
	}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, moduleID)
}

func (s *service) Delete(ctx context.Context, moduleID string) error {
	return s.repo.HardDelete(ctx, moduleID)
}
