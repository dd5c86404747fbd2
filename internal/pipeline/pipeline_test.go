package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/mediashop/internal/config"
	"github.com/forPelevin/mediashop/internal/domain/playback"
	"github.com/forPelevin/mediashop/internal/types"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Video.mp4", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-video-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-video-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
		"Café Déjà Vu":      "cafe-deja-vu",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

type fakeProber struct{ d time.Duration }

func (p fakeProber) ProbeDuration(context.Context, string) (time.Duration, error) { return p.d, nil }

type noopScheduler struct{}

func (noopScheduler) Schedule(func()) {}

func TestLoadVideoAndApplyTrim(t *testing.T) {
	in := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(in, []byte("video"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	s := newSession(hclog.NewNullLogger(), playback.NewClock(0), noopScheduler{})
	if err := loadVideo(context.Background(), fakeProber{d: 10 * time.Second}, s, in); err != nil {
		t.Fatalf("load video: %v", err)
	}
	if s.Video().Duration != 10 || string(s.Video().Data) != "video" {
		t.Fatalf("unexpected video %+v", s.Video())
	}

	cases := []struct {
		name       string
		start, end float64
		wantStart  float64
		wantEnd    float64
	}{
		{name: "plain", start: 0.2, end: 0.8, wantStart: 0.2, wantEnd: 0.8},
		{name: "start beyond old end", start: 0.9, end: 0.95, wantStart: 0.9, wantEnd: 0.95},
		{name: "inverted is clamped", start: 0.5, end: 0.1, wantStart: 0.05, wantEnd: 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s.Range.Reset()
			applyTrim(s, tc.start, tc.end)
			start, end := s.Range.Fractions()
			if math.Abs(start-tc.wantStart) > 1e-9 || math.Abs(end-tc.wantEnd) > 1e-9 {
				t.Fatalf("range = [%g, %g], want [%g, %g]", start, end, tc.wantStart, tc.wantEnd)
			}
			if end-start < 0.05-1e-9 {
				t.Fatalf("window below minimum: [%g, %g]", start, end)
			}
		})
	}
}

func TestExportRequestValidate(t *testing.T) {
	in := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(in, nil, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	ok := ExportRequest{Input: in, Start: 0, End: 1, Adjust: types.NeutralVideo()}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid request: %v", err)
	}

	bad := map[string]ExportRequest{
		"missing input": {Input: filepath.Join(t.TempDir(), "nope.mp4"), End: 1, Adjust: types.NeutralVideo()},
		"inverted":      {Input: in, Start: 0.6, End: 0.4, Adjust: types.NeutralVideo()},
		"zero speed":    {Input: in, End: 1, Adjust: types.VideoAdjustments{Brightness: 100, Contrast: 100, Saturation: 100}},
		"both subs":     {Input: in, End: 1, Adjust: types.NeutralVideo(), SubtitlesFile: "a.srt", Captions: true},
	}
	for name, req := range bad {
		t.Run(name, func(t *testing.T) {
			if err := req.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRenderSettingsReadsFont(t *testing.T) {
	font := filepath.Join(t.TempDir(), "Inter.ttf")
	if err := os.WriteFile(font, []byte("ttf"), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	c := config.Default().Render
	c.FontPath = font
	c.CRF = 23
	r, err := renderSettings(c)
	if err != nil {
		t.Fatalf("render settings: %v", err)
	}
	if string(r.Font) != "ttf" || r.CRF != 23 || r.VideoCodec != "libx264" {
		t.Fatalf("unexpected settings %+v", r)
	}

	c.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	if _, err := renderSettings(c); err == nil {
		t.Fatalf("expected error for missing font")
	}
}

func TestListJobsEmpty(t *testing.T) {
	app := config.Default()
	app.Paths.DataDir = t.TempDir()
	jobs, err := ListJobs(context.Background(), Config{App: &app}, 10)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected empty job log, got %d", len(jobs))
	}
}
