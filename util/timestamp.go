package util

import (
	"fmt"
	"time"
)

// Timestamp formats d as HH:MM:SS.mmm, the form ffmpeg accepts for -ss.
// Negative durations are clamped to zero.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	d = d.Round(time.Millisecond)

	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	secs := d / time.Second
	d -= secs * time.Second

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, d/time.Millisecond)
}
