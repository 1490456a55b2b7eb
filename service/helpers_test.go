package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vidshare/db"
	"vidshare/storage"

	"github.com/stretchr/testify/require"
)

// PNG signature followed by junk, enough to look like an image
var fakePNG = []byte("\x89PNG\r\n\x1a\nnot really an image")

func newTestStore(t *testing.T) *db.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	conn, err := db.Open("sqlite", path)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db.NewStore(conn)
}

func newTestFiles(t *testing.T) *storage.Local {
	t.Helper()

	l, err := storage.NewLocal(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)

	return l
}

type fakeExtractor struct {
	mu    sync.Mutex
	err   error
	calls []extractCall
}

type extractCall struct {
	Src, Dst string
	At       time.Duration
}

func (f *fakeExtractor) Extract(_ context.Context, src, dst string, at time.Duration) error {
	f.mu.Lock()
	f.calls = append(f.calls, extractCall{src, dst, at})
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	return os.WriteFile(dst, fakePNG, 0o644)
}

type fakeMirror struct {
	mu      sync.Mutex
	err     error
	objects map[string]mirrored
}

type mirrored struct {
	ContentType string
	Body        []byte
}

func (f *fakeMirror) Put(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.err != nil {
		return f.err
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	if int64(len(b)) != size {
		return fmt.Errorf("size mismatch for %s: %d != %d", key, len(b), size)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.objects == nil {
		f.objects = map[string]mirrored{}
	}
	f.objects[key] = mirrored{ContentType: contentType, Body: b}

	return nil
}
