package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"vidshare/util"

	"go.uber.org/zap"
)

var ErrClipTooShort = errors.New("video is shorter than the preview offset")

// FFmpegExtractor grabs single frames with ffmpeg, going through the job
// queue so only a bounded number of processes run at once.
type FFmpegExtractor struct {
	queue   *JobQueue
	ffmpeg  string
	ffprobe string
	timeout time.Duration
}

// NewFFmpegExtractor returns an extractor using the given binaries. A zero
// timeout lets a job run for as long as its context allows.
func NewFFmpegExtractor(q *JobQueue, ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpegExtractor {
	return &FFmpegExtractor{
		queue:   q,
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		timeout: timeout,
	}
}

// Duration asks ffprobe for the length of the file at p
func (e *FFmpegExtractor) Duration(ctx context.Context, p string) (time.Duration, error) {
	out, err := e.queue.Run(ctx, e.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"-i", p,
	)
	if err != nil {
		return 0, err
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q, %w", out, err)
	}

	return time.Duration(math.Round(secs * float64(time.Second))), nil
}

func (e *FFmpegExtractor) Extract(ctx context.Context, src, dst string, at time.Duration) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	now := time.Now()

	d, err := e.Duration(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to determine video duration, %w", err)
	}

	if d < at {
		return fmt.Errorf("%w (%s < %s)", ErrClipTooShort, d, at)
	}

	// -ss before the input seeks on key frames, which is much faster
	_, err = e.queue.Run(ctx, e.ffmpeg,
		"-loglevel", "error",
		"-ss", util.Timestamp(at),
		"-i", src,
		"-frames:v", "1",
		"-threads", strconv.Itoa(e.queue.Threads()),
		"-y", dst,
	)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("ffmpeg produced no frame, %w", err)
	}

	zap.L().Debug("Extracted preview frame", zap.String("src", src), zap.Duration("took", time.Since(now)))
	return nil
}
