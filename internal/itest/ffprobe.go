//go:build integration

package itest

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// renderedSeconds reads the container duration of an exported file, the
// number the trim and speed settings should add up to.
func renderedSeconds(path string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	v := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: bad duration %q", path, v)
	}
	return sec, nil
}
