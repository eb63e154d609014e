/*
Package history provides the daily store of notifications that have already
been sent. A store only ever covers one calendar day; a new day maps to a new
store and the old one is abandoned.
*/
package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shanehull/oslonotify/internal/types"
)

const dayLayout = "02_01_06"

// DayName formats t as DD_MM_YY in loc, or in the process local zone when
// loc is nil.
func DayName(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// FileStore is an append-only file of whitespace separated key tokens.
type FileStore struct {
	path     string
	mutex    sync.Mutex
	recorded types.KeySet
	logger   *slog.Logger
}

// Open resolves dir/day and creates an empty store when none exists. The
// directory itself is never created.
func Open(dir, day string) (*FileStore, error) {
	path := filepath.Join(dir, day)

	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open daily store %s: %w", types.ErrStorage, path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close daily store %s: %w", types.ErrStorage, path, err)
	}

	return &FileStore{
		path:     path,
		recorded: make(types.KeySet),
		logger:   slog.Default(),
	}, nil
}

// LoadKeys returns every key recorded today. Malformed tokens are dropped.
func (s *FileStore) LoadKeys(_ context.Context) (types.KeySet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: daily store %s disappeared: %w", types.ErrParse, s.path, err)
		}
		return nil, fmt.Errorf("%w: failed to read daily store %s: %w", types.ErrParse, s.path, err)
	}

	keys := types.ParseKeys(string(data))

	s.mutex.Lock()
	for k := range keys {
		s.recorded.Add(k)
	}
	s.mutex.Unlock()

	s.logger.Debug("loaded daily store", "path", s.path, "keys", keys.Len())
	return keys, nil
}

// Record appends key to the store and syncs it before returning. Keys
// already seen through this handle are not written twice.
func (s *FileStore) Record(_ context.Context, key types.Key) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.recorded.Has(key) {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w: failed to open daily store %s for append: %w", types.ErrStorage, s.path, err)
	}

	if _, err := f.WriteString(key.String() + " "); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to append to %s: %w", types.ErrStorage, s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to sync %s: %w", types.ErrStorage, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %w", types.ErrStorage, s.path, err)
	}

	s.recorded.Add(key)
	return nil
}

func (s *FileStore) Path() string {
	return s.path
}
