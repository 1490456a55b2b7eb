package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobQueue_Run(t *testing.T) {
	q := NewJobQueue(2, 4)
	q.StartWorkerPool()
	t.Cleanup(q.Close)

	out, err := q.Run(context.Background(), "sh", "-c", "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))

	_, err = q.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestJobQueue_Full(t *testing.T) {
	// No workers started, so nothing drains the queue
	q := NewJobQueue(1, 1)

	require.NoError(t, q.Enqueue(&Job{Ctx: context.Background(), Bin: "true", Done: make(chan error, 1)}))
	assert.ErrorIs(t, q.Enqueue(&Job{Ctx: context.Background(), Bin: "true", Done: make(chan error, 1)}), ErrQueueFull)
	assert.Equal(t, 1, q.Pending())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := q.Run(ctx, "true")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestJobQueue_Cancelled(t *testing.T) {
	q := NewJobQueue(1, 1)
	q.StartWorkerPool()
	t.Cleanup(q.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := q.Run(ctx, "sleep", "5")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestJobQueue_Threads(t *testing.T) {
	assert.GreaterOrEqual(t, NewJobQueue(1000, 1).Threads(), 1)
}

// writeScript creates an executable shell script standing in for a media tool
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestFFmpegExtractor(t *testing.T) {
	dir := t.TempDir()

	// The fake ffmpeg writes a frame to its last argument and records its args
	ffmpeg := writeScript(t, dir, "ffmpeg", `echo "$@" > "`+filepath.Join(dir, "args")+`"
for last; do :; done
printf 'png' > "$last"`)
	ffprobe := writeScript(t, dir, "ffprobe", "echo 12.480000")

	q := NewJobQueue(1, 4)
	q.StartWorkerPool()
	t.Cleanup(q.Close)

	e := NewFFmpegExtractor(q, ffmpeg, ffprobe, time.Minute)

	d, err := e.Duration(context.Background(), "in.mp4")
	require.NoError(t, err)
	assert.Equal(t, 12480*time.Millisecond, d)

	dst := filepath.Join(dir, "out.png")
	require.NoError(t, e.Extract(context.Background(), "in.mp4", dst, 5*time.Second))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "-ss 00:00:05.000 -i in.mp4 -frames:v 1")
}

func TestFFmpegExtractor_Failures(t *testing.T) {
	dir := t.TempDir()

	q := NewJobQueue(1, 4)
	q.StartWorkerPool()
	t.Cleanup(q.Close)

	noop := writeScript(t, dir, "ffmpeg-noop", "exit 0")
	short := writeScript(t, dir, "ffprobe-short", "echo 2.5")
	long := writeScript(t, dir, "ffprobe-long", "echo 30")
	broken := writeScript(t, dir, "ffprobe-broken", "echo 'Invalid data found when processing input' >&2; exit 1")

	dst := filepath.Join(dir, "out.png")

	err := NewFFmpegExtractor(q, noop, short, 0).Extract(context.Background(), "in.mp4", dst, 5*time.Second)
	assert.ErrorIs(t, err, ErrClipTooShort)

	err = NewFFmpegExtractor(q, noop, broken, 0).Extract(context.Background(), "in.mp4", dst, 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")

	// ffmpeg exiting cleanly without writing anything is still a failure
	err = NewFFmpegExtractor(q, noop, long, 0).Extract(context.Background(), "in.mp4", dst, 5*time.Second)
	assert.Error(t, err)
}
