package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// ErrNotFound means the crawler has not published the requested snapshot yet.
var ErrNotFound = errors.New("snapshot not found")

const keyPrefix = "news/"

// Key returns the object key of the snapshot for the calendar day of now in loc.
func Key(now time.Time, loc *time.Location) string {
	return keyPrefix + now.In(loc).Format(time.DateOnly) + ".db"
}

type Store interface {
	Get(ctx context.Context, key string, w io.Writer) (int64, error)
	Name() string
}

// Snapshot is a downloaded snapshot file owned by the current run.
type Snapshot struct {
	Key  string
	Path string
	Size int64
}

// Close removes the local file. Removal errors are ignored.
func (s *Snapshot) Close() {
	if s == nil || s.Path == "" {
		return
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("snapshot cleanup failed", "path", s.Path, "error", err)
	}
}

type Fetcher struct {
	store Store
	dir   string
}

// NewFetcher downloads into dir, or the system temp dir when dir is empty.
func NewFetcher(store Store, dir string) *Fetcher {
	return &Fetcher{store: store, dir: dir}
}

// Fetch downloads key into a new temporary file. The caller owns the returned
// snapshot and must Close it.
func (f *Fetcher) Fetch(ctx context.Context, key string) (*Snapshot, error) {
	file, err := os.CreateTemp(f.dir, "trendradar-*.db")
	if err != nil {
		return nil, fmt.Errorf("create snapshot file: %w", err)
	}

	snap := &Snapshot{Key: key, Path: file.Name()}

	n, err := f.store.Get(ctx, key, file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close snapshot file: %w", closeErr)
	}
	if err != nil {
		snap.Close()
		return nil, err
	}

	snap.Size = n
	slog.Info("snapshot downloaded", "store", f.store.Name(), "key", key, "bytes", n)

	return snap, nil
}
