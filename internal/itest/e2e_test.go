//go:build integration

package itest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/mediashop/internal/config"
	"github.com/forPelevin/mediashop/internal/domain/photo"
	"github.com/forPelevin/mediashop/internal/pipeline"
	"github.com/forPelevin/mediashop/internal/types"
)

func TestE2E_ExportTrimmedVideo(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}

	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")

	// 10s of colour bars with a tone underneath.
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "testsrc=s=320x240:d=10",
		"-f", "lavfi",
		"-i", "sine=frequency=440:duration=10",
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	cfg := testConfig(tmp)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var statuses []string
	adj := types.NeutralVideo()
	adj.Speed = 2
	adj.Brightness = 120

	res, err := pipeline.RunExport(ctx, pipeline.Config{
		App:    cfg,
		Status: func(msg string) { statuses = append(statuses, msg) },
	}, pipeline.ExportRequest{
		Input:  in,
		Start:  0.2,
		End:    0.8,
		Adjust: adj,
	})
	if err != nil {
		t.Fatalf("export failed: %v\nstatuses: %v", err, statuses)
	}
	if filepath.Base(res.Path) != "edited-video.mp4" {
		t.Fatalf("unexpected output name %q", res.Path)
	}
	if len(statuses) == 0 || !strings.HasPrefix(statuses[len(statuses)-1], "Export complete") {
		t.Fatalf("unexpected statuses: %v", statuses)
	}

	// 6s of source at 2x.
	got, err := renderedSeconds(res.Path)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if math.Abs(got-3) > 0.5 {
		t.Fatalf("output duration %.3fs, want about 3s", got)
	}

	jobs, err := pipeline.ListJobs(ctx, pipeline.Config{App: cfg}, 10)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].State != types.JobCompleted {
		t.Fatalf("unexpected job log: %+v", jobs)
	}
}

func TestE2E_PreviewDoesNotRender(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}

	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	ff := exec.Command("ffmpeg", "-y", "-f", "lavfi", "-i", "testsrc=s=160x120:d=4", "-pix_fmt", "yuv420p", in)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	cfg := testConfig(tmp)
	rep, err := pipeline.Preview(context.Background(), pipeline.Config{App: cfg}, pipeline.PreviewRequest{
		Input:  in,
		Start:  0.25,
		End:    0.75,
		Adjust: types.NeutralVideo(),
		For:    300 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if math.Abs(rep.Start-1) > 0.05 || math.Abs(rep.End-3) > 0.05 {
		t.Fatalf("unexpected window %.3f-%.3f", rep.Start, rep.End)
	}
	if rep.Position < rep.Start || rep.Position > rep.End {
		t.Fatalf("playhead %.3f outside window", rep.Position)
	}
	if entries, _ := os.ReadDir(cfg.Paths.OutDir); len(entries) != 0 {
		t.Fatalf("preview wrote artifacts: %v", entries)
	}
}

func TestE2E_ExportPhoto(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.png")
	if err := os.WriteFile(in, tinyPNG(t), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := testConfig(tmp)
	adj := types.NeutralPhoto()
	adj.Grayscale = 100

	res, err := pipeline.RunPhoto(context.Background(), pipeline.Config{App: cfg}, pipeline.PhotoRequest{
		Input:  in,
		Adjust: adj,
		Format: photo.WebP,
	})
	if err != nil {
		t.Fatalf("photo export failed: %v", err)
	}
	if filepath.Ext(res.Path) != ".webp" || res.Bytes == 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Paths.OutDir = filepath.Join(root, "out")
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LockDir = filepath.Join(root, "locks")
	cfg.Engine.CacheDir = filepath.Join(root, "cache")
	return &cfg
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}
