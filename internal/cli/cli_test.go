package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/mediashop/internal/types"
)

func TestRenderJobs(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := renderJobs([]types.JobRecord{
		{JobID: "0123456789abcdef", Kind: types.JobExport, Medium: types.MediumVideo, State: types.JobCompleted,
			Output: "out/edited-video.mp4", StartedAt: t0, UpdatedAt: t0.Add(1500 * time.Millisecond), Transitions: 4},
		{JobID: "fedcba", Kind: types.JobCaptions, Medium: types.MediumVideo, State: types.JobFailed,
			Error: "transcribe: boom", StartedAt: t0, UpdatedAt: t0, Transitions: 3},
	})
	for _, want := range []string{"01234567", "export", "completed", "1.5s", "out/edited-video.mp4", "transcribe: boom", "fedcba"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Fatalf("job id should be shortened:\n%s", out)
	}
}

func TestQuoteArgs(t *testing.T) {
	got := quoteArgs([]string{"-vf", "eq=brightness=0.00,setpts=1*PTS", "subtitles=a b"})
	want := []string{"-vf", "'eq=brightness=0.00,setpts=1*PTS'", "'subtitles=a b'"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("quoteArgs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConfigSampleCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "sample"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "[engine]") || !strings.Contains(out.String(), "profile = \"auto\"") {
		t.Fatalf("unexpected sample output:\n%s", out.String())
	}
}

func TestExportRejectsBadArgs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDIASHOP_CONFIG", "")

	cases := map[string]struct {
		args []string
		want string
	}{
		"no args":      {args: []string{"export"}, want: "accepts 1 arg(s), received 0"},
		"unknown flag": {args: []string{"export", "x.mp4", "--wat"}, want: "unknown flag: --wat"},
		"bad speed":    {args: []string{"export", "x.mp4", "--speed", "fast"}, want: `invalid argument "fast" for "--speed"`},
		"missing file": {args: []string{"export", "does-not-exist.mp4"}, want: "config: stat input"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			root := newRootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&out)
			root.SetArgs(tc.args)
			err := root.Execute()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
