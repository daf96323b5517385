package snapshot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeStore struct {
	content string
	err     error
}

func (f *fakeStore) Get(ctx context.Context, key string, w io.Writer) (int64, error) {
	if f.err != nil {
		// partial write before failing
		w.Write([]byte("partial"))
		return 0, f.err
	}
	n, err := io.Copy(w, strings.NewReader(f.content))
	return n, err
}

func (f *fakeStore) Name() string {
	return "fake"
}

func TestKey(t *testing.T) {
	beijing := time.FixedZone("UTC+8", 8*60*60)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "same calendar day",
			now:  time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC),
			want: "news/2026-10-17.db",
		},
		{
			name: "utc evening is next day in UTC+8",
			now:  time.Date(2026, 10, 17, 16, 30, 0, 0, time.UTC),
			want: "news/2026-10-18.db",
		},
		{
			name: "year boundary",
			now:  time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC),
			want: "news/2026-01-01.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.now, beijing))
		})
	}
}

func TestFetch_WritesTempFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFetcher(&fakeStore{content: "sqlite bytes"}, dir)

	snap, err := f.Fetch(context.Background(), "news/2026-10-17.db")
	assert.Equal(t, nil, err)
	assert.Equal(t, "news/2026-10-17.db", snap.Key)
	assert.Equal(t, int64(12), snap.Size)

	data, err := os.ReadFile(snap.Path)
	assert.Equal(t, nil, err)
	assert.Equal(t, "sqlite bytes", string(data))

	snap.Close()
	_, err = os.Stat(snap.Path)
	assert.Equal(t, true, errors.Is(err, os.ErrNotExist))

	// second close is a no-op
	snap.Close()
}

func TestFetch_RemovesFileOnError(t *testing.T) {
	dir := t.TempDir()
	f := NewFetcher(&fakeStore{err: ErrNotFound}, dir)

	snap, err := f.Fetch(context.Background(), "news/2026-10-17.db")
	assert.Equal(t, true, snap == nil)
	assert.Equal(t, true, errors.Is(err, ErrNotFound))

	entries, err := os.ReadDir(dir)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(entries))
}

func TestCloseNilSnapshot(t *testing.T) {
	var snap *Snapshot
	snap.Close()
}

func newTestS3Store(t *testing.T, handler http.HandlerFunc) *S3Store {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), S3Config{
		Endpoint:        srv.URL,
		Region:          "auto",
		Bucket:          "trendradar",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestS3StoreGet(t *testing.T) {
	var gotPath string
	store := newTestS3Store(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("snapshot-data"))
	})

	var sb strings.Builder
	n, err := store.Get(context.Background(), "news/2026-10-17.db", &sb)

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(13), n)
	assert.Equal(t, "snapshot-data", sb.String())
	assert.Equal(t, "/trendradar/news/2026-10-17.db", gotPath)
}

func TestS3StoreGet_NotFound(t *testing.T) {
	store := newTestS3Store(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
	})

	var sb strings.Builder
	_, err := store.Get(context.Background(), "news/2026-10-17.db", &sb)

	assert.Equal(t, true, errors.Is(err, ErrNotFound))
}

func TestFetch_FromS3(t *testing.T) {
	store := newTestS3Store(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("db"))
	})

	dir := t.TempDir()
	snap, err := NewFetcher(store, dir).Fetch(context.Background(), "news/2026-10-17.db")
	assert.Equal(t, nil, err)
	defer snap.Close()

	assert.Equal(t, dir, filepath.Dir(snap.Path))
}
