// Package store persists the most recently extracted profile. Writes are
// last-write-wins; there are no transactions or history.
package store

import (
	"context"
	"errors"

	"github.com/jonathan/jobfit-analyzer/internal/types"
)

// ErrNotFound is returned by Get when no profile has been stored.
var ErrNotFound = errors.New("profile not found")

// ProfileStore holds a single profile record under types.ProfileStorageKey.
type ProfileStore interface {
	Put(ctx context.Context, profile *types.ExtractedProfile) error
	Get(ctx context.Context) (*types.ExtractedProfile, error)
}

// Open returns a RedisStore when redisURL is set and a FileStore at path
// otherwise. The returned close function releases the backend.
func Open(ctx context.Context, redisURL, path string, opts RedisOptions) (ProfileStore, func() error, error) {
	if redisURL != "" {
		s, err := DialRedis(ctx, redisURL, opts)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	if path == "" {
		return nil, nil, errors.New("either a redis url or a store path is required")
	}
	return NewFileStore(path), func() error { return nil }, nil
}
