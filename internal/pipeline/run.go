package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/mediashop/internal/domain/filters"
	"github.com/forPelevin/mediashop/internal/domain/photo"
	"github.com/forPelevin/mediashop/internal/domain/playback"
	"github.com/forPelevin/mediashop/internal/jobstore"
	"github.com/forPelevin/mediashop/internal/ports/adapters/download"
	"github.com/forPelevin/mediashop/internal/types"
	"github.com/forPelevin/mediashop/internal/usecase"
)

type ExportRequest struct {
	Input  string
	Start  float64
	End    float64
	Adjust types.VideoAdjustments
	// SubtitlesFile is staged verbatim when set.
	SubtitlesFile string
	// Captions transcribes the input first and burns the result in.
	Captions bool
}

func (r ExportRequest) Validate() error {
	if r.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(r.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if r.Start < 0 || r.End > 1 || r.Start >= r.End {
		return fmt.Errorf("trim window [%g, %g] must satisfy 0 <= start < end <= 1", r.Start, r.End)
	}
	if r.Adjust.Speed <= 0 {
		return errors.New("speed must be > 0")
	}
	if r.SubtitlesFile != "" && r.Captions {
		return errors.New("subtitles file and captions are mutually exclusive")
	}
	return nil
}

func RunExport(ctx context.Context, cfg Config, req ExportRequest) (usecase.Result, error) {
	if err := req.Validate(); err != nil {
		return usecase.Result{}, err
	}
	rt, err := Open(cfg, req.Input)
	if err != nil {
		return usecase.Result{}, err
	}
	defer rt.Close()

	s := newSession(rt.log, playback.NewClock(0), playback.NewFrameScheduler(0))
	if err := loadVideo(ctx, rt.Engine, s, req.Input); err != nil {
		return usecase.Result{}, err
	}
	applyTrim(s, req.Start, req.End)
	s.SetVideoAdjustments(req.Adjust)

	switch {
	case req.SubtitlesFile != "":
		b, err := os.ReadFile(req.SubtitlesFile)
		if err != nil {
			return usecase.Result{}, fmt.Errorf("read subtitles: %w", err)
		}
		s.SetSubtitles(string(b))
	case req.Captions:
		if _, err := rt.Usecase.Captions(ctx, s, cfg.Status); err != nil {
			return usecase.Result{}, err
		}
	}
	return rt.Usecase.ExportVideo(ctx, s, cfg.Status)
}

type CaptionsRequest struct {
	Input string
}

// RunCaptions transcribes the input and saves the cues as an .srt file in the
// run directory.
func RunCaptions(ctx context.Context, cfg Config, req CaptionsRequest) (usecase.CaptionResult, string, error) {
	if _, err := os.Stat(req.Input); err != nil {
		return usecase.CaptionResult{}, "", fmt.Errorf("stat input: %w", err)
	}
	rt, err := Open(cfg, req.Input)
	if err != nil {
		return usecase.CaptionResult{}, "", err
	}
	defer rt.Close()

	s := newSession(rt.log, playback.NewClock(0), playback.NewFrameScheduler(0))
	if err := loadVideo(ctx, rt.Engine, s, req.Input); err != nil {
		return usecase.CaptionResult{}, "", err
	}
	res, err := rt.Usecase.Captions(ctx, s, cfg.Status)
	if err != nil {
		return res, "", err
	}

	name := normalizePathSegment(trimExt(filepath.Base(req.Input)))
	if name == "" {
		name = "captions"
	}
	path, err := download.New(rt.RunOutDir).Save(ctx, name+".srt", []byte(s.Subtitles()))
	return res, path, err
}

type PhotoRequest struct {
	Input            string
	Adjust           types.PhotoAdjustments
	Format           photo.Format
	RemoveBackground bool
}

func RunPhoto(ctx context.Context, cfg Config, req PhotoRequest) (usecase.Result, error) {
	data, err := os.ReadFile(req.Input)
	if err != nil {
		return usecase.Result{}, fmt.Errorf("read input: %w", err)
	}
	rt, err := Open(cfg, req.Input)
	if err != nil {
		return usecase.Result{}, err
	}
	defer rt.Close()

	s := newSession(rt.log, playback.NewClock(0), playback.NewFrameScheduler(0))
	if err := s.LoadPhoto(filepath.Base(req.Input), data); err != nil {
		return usecase.Result{}, err
	}
	if req.RemoveBackground {
		if _, err := rt.Usecase.RemoveBackground(ctx, s, cfg.Status); err != nil {
			return usecase.Result{}, err
		}
	}
	s.SetPhotoAdjustments(req.Adjust)
	return rt.Usecase.ExportPhoto(ctx, s, req.Format, cfg.Status)
}

type PreviewRequest struct {
	Input  string
	Start  float64
	End    float64
	Adjust types.VideoAdjustments
	// For is how long the preview loop runs before the report is taken.
	For time.Duration
	// Subtitles, when set, is treated as the subtitle buffer.
	Subtitles string
}

type PreviewReport struct {
	Duration  float64
	Start     float64
	End       float64
	Filter    string
	Graph     filters.Graph
	Args      []string
	Loops     int
	Position  float64
	Captioned bool
}

// Preview plays the trimmed window against a wall clock for req.For and
// reports what an export would run. Nothing is rendered.
func Preview(ctx context.Context, cfg Config, req PreviewRequest) (PreviewReport, error) {
	if cfg.App == nil {
		return PreviewReport{}, errors.New("pipeline: nil config")
	}
	log := cfg.logger()
	engine := newEngine(cfg.App, log)

	clock := playback.NewClock(0)
	sched := playback.NewFrameScheduler(playback.FrameInterval)
	defer sched.Close()

	s := newSession(log, clock, sched)
	if err := loadVideo(ctx, engine, s, req.Input); err != nil {
		return PreviewReport{}, err
	}
	applyTrim(s, req.Start, req.End)
	css := s.SetVideoAdjustments(req.Adjust)
	s.SetSubtitles(req.Subtitles)

	render, err := renderSettings(cfg.App.Render)
	if err != nil {
		return PreviewReport{}, err
	}
	plan, err := usecase.PlanExport(s, render)
	if err != nil {
		return PreviewReport{}, err
	}

	if req.For > 0 {
		if err := s.Playback.Play(ctx); err != nil {
			return PreviewReport{}, fmt.Errorf("start preview: %w", err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(req.For):
		}
		s.Playback.Pause()
	}

	return PreviewReport{
		Duration:  s.Video().Duration,
		Start:     plan.Window.Start,
		End:       plan.Window.End,
		Filter:    css,
		Graph:     plan.Graph,
		Args:      plan.Args,
		Loops:     s.Playback.Loops(),
		Position:  s.Playback.Position(),
		Captioned: plan.Captions,
	}, nil
}

// ListJobs returns the most recent jobs from the job log.
func ListJobs(ctx context.Context, cfg Config, limit int) ([]types.JobRecord, error) {
	if cfg.App == nil {
		return nil, errors.New("pipeline: nil config")
	}
	store, err := jobstore.Open(cfg.App.Paths.DataDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(ctx, limit)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
