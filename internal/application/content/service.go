package content

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/linguahub/api/internal/domain"
)

// Presigned download links stay valid long enough for a lesson page to load
// its audio but not long enough to be worth sharing.
const downloadURLTTL = 15 * time.Minute

type Service interface {
	// UploadModuleAudio stores the intro audio for a module and records the
	// object key on the catalog entry.
	UploadModuleAudio(ctx context.Context, moduleID, filename string, r io.Reader) (string, error)
	// AudioURL returns a presigned download URL for a module's audio.
	AudioURL(ctx context.Context, moduleID string) (string, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type moduleStore interface {
	Get(ctx context.Context, moduleID string) (*domain.Module, error)
	Update(ctx context.Context, moduleID string, updates map[string]interface{}) error
}

type service struct {
	store      objectStore
	modules    moduleStore
	detectType func(filename string) string
}

func NewService(store objectStore, modules moduleStore, detectType func(string) string) Service {
	return &service{store: store, modules: modules, detectType: detectType}
}

func (s *service) UploadModuleAudio(ctx context.Context, moduleID, filename string, r io.Reader) (string, error) {
	if _, err := s.modules.Get(ctx, moduleID); err != nil {
		return "", err
	}
	key := fmt.Sprintf("modules/%s/%s", moduleID, filename)
	url, err := s.store.Upload(ctx, key, r, s.detectType(filename))
	if err != nil {
		return "", err
	}
	if err := s.modules.Update(ctx, moduleID, map[string]interface{}{"audio_key": key}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *service) AudioURL(ctx context.Context, moduleID string) (string, error) {
	m, err := s.modules.Get(ctx, moduleID)
	if err != nil {
		return "", err
	}
	if m.AudioKey == "" {
		return "", fmt.Errorf("module has no audio: %w", domain.ErrNotFound)
	}
	return s.store.PresignedURL(ctx, m.AudioKey, downloadURLTTL)
}
