package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trendradar/db"
	"trendradar/internal/model"
	"trendradar/internal/repository"
	"trendradar/pkg/snapshot"
)

type SnapshotFetcher interface {
	Fetch(ctx context.Context, key string) (*snapshot.Snapshot, error)
}

// TopicLoader downloads the snapshot for a day, extracts its topics and
// removes the local copy before returning.
type TopicLoader struct {
	fetcher  SnapshotFetcher
	location *time.Location
	opts     repository.ExtractOptions
}

func NewTopicLoader(fetcher SnapshotFetcher, loc *time.Location, opts repository.ExtractOptions) *TopicLoader {
	return &TopicLoader{fetcher: fetcher, location: loc, opts: opts}
}

// Load returns snapshot.ErrNotFound (wrapped) when the day has no snapshot.
// A snapshot that cannot be read is treated as holding no topics.
func (l *TopicLoader) Load(ctx context.Context, date time.Time) (*model.Extraction, error) {
	key := snapshot.Key(date, l.location)

	snap, err := l.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer snap.Close()

	extraction, err := extract(ctx, snap.Path, l.opts)
	if err != nil {
		slog.Error("error reading snapshot, treating as empty", "key", key, "error", err)
		return &model.Extraction{Mode: model.ModeEmpty}, nil
	}

	slog.Info("topics extracted", "key", key, "mode", extraction.Mode, "table", extraction.Table, "count", len(extraction.Topics))
	return extraction, nil
}

func extract(ctx context.Context, path string, opts repository.ExtractOptions) (*model.Extraction, error) {
	conn, err := db.OpenSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return repository.NewTopicRepository(conn).Extract(ctx, opts)
}
