package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"contacthub/internal/domain/model"
	"contacthub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Uploader stores an avatar object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) (string, error)
}

type UserService struct {
	users    repository.UserRepository
	cache    *IdentityCache
	uploader Uploader
}

func NewUserService(users repository.UserRepository, cache *IdentityCache, uploader Uploader) *UserService {
	return &UserService{users: users, cache: cache, uploader: uploader}
}

// UpdateAvatar uploads the image, points the principal's avatar at it, and
// refreshes the cached snapshot so the change is visible immediately.
func (s *UserService) UpdateAvatar(ctx context.Context, user *model.User, data io.Reader, size int64, contentType string) (*model.User, error) {
	key := "avatars/" + slug.Make(user.Username)
	url, err := s.uploader.Upload(ctx, key, data, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	// The object key is stable per user, so append a version marker to
	// defeat stale CDN/browser caches.
	url += "?v=" + uuid.NewString()[:8]

	updated, err := s.users.SetAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	if err := s.cache.Put(ctx, updated); err != nil {
		log.Printf("WARN: failed to refresh cached principal %q: %v", updated.Username, err)
	}
	return updated, nil
}
