package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/forPelevin/mediashop/internal/domain/filters"
	"github.com/forPelevin/mediashop/internal/domain/subtitles"
	"github.com/forPelevin/mediashop/internal/domain/trim"
	"github.com/forPelevin/mediashop/internal/editor"
	"github.com/forPelevin/mediashop/internal/types"
)

// VideoFileName is the download name of an exported video.
const VideoFileName = "edited-video.mp4"

// ExportPlan is the render an export of the session would run.
type ExportPlan struct {
	// Video and Subtitles are the session state the plan was built from.
	Video     *editor.Video
	Subtitles string
	Window    trim.Window
	Graph     filters.Graph
	Captions  bool
	Args      []string
}

// PlanExport computes the trim window, the filter graph and the engine argv
// from the session's current state.
func PlanExport(s *editor.Session, r RenderSettings) (ExportPlan, error) {
	v := s.Video()
	if v == nil {
		return ExportPlan{}, fmt.Errorf("%w: upload a video first", ErrNoMedia)
	}
	if v.Duration <= 0 {
		return ExportPlan{}, fmt.Errorf("%w: video duration is unknown", ErrNoMedia)
	}

	p := ExportPlan{
		Video:     v,
		Subtitles: s.Subtitles(),
		Window:    s.Range.Window(v.Duration),
	}
	p.Captions = subtitles.HasCues(p.Subtitles)
	opts := filters.RenderOptions{Style: r.Style}
	if p.Captions {
		opts.SubtitlesFile = engineSubs
		opts.Offset = math.Round(p.Window.Start*1000) / 1000
		if len(r.Font) > 0 {
			opts.FontsDir = "."
		}
	}
	p.Graph = filters.Render(s.VideoAdjustments(), opts)
	p.Args = ExportArgs(p.Window, p.Graph, r)
	return p, nil
}

// ExportArgs seeks on the input, so -t is the window length in source
// seconds: a [0.2, 0.8] window of a 10 s clip is -ss 2 -t 6 whatever the
// speed. The speed stages then shrink those 6 s to 3 s of output.
func ExportArgs(w trim.Window, g filters.Graph, r RenderSettings) []string {
	return []string{
		"-ss", seconds(w.Start),
		"-t", seconds(w.Duration()),
		"-i", engineInput,
		"-vf", g.Video,
		"-af", g.Audio,
		"-c:v", r.VideoCodec,
		"-preset", r.Preset,
		"-crf", strconv.Itoa(r.CRF),
		"-c:a", r.AudioCodec,
		"-b:a", r.AudioBitrate,
		engineOutput,
	}
}

// ExportVideo renders the trimmed, filtered and optionally captioned video
// and hands it to the downloader.
func (u *Usecase) ExportVideo(ctx context.Context, s *editor.Session, status StatusFunc) (Result, error) {
	if s.Video() == nil {
		if status != nil {
			status("Please upload a video first!")
		}
		return Result{}, fmt.Errorf("%w: upload a video first", ErrNoMedia)
	}
	release, err := u.d.Guard.Acquire(types.JobExport, types.MediumVideo)
	if err != nil {
		return Result{}, err
	}
	defer release()

	j := u.newJob(types.JobExport, types.MediumVideo, status)
	res, err := u.exportVideo(ctx, j, s)
	res.JobID = j.id
	if err == nil {
		j.status("Export complete: " + res.Path)
	}
	return res, j.finish(ctx, res.Path, err)
}

func (u *Usecase) exportVideo(ctx context.Context, j *job, s *editor.Session) (Result, error) {
	plan, err := PlanExport(s, u.d.Render)
	if err != nil {
		return Result{}, err
	}

	j.to(ctx, types.JobLoadingEngine, "Loading engine...")
	if err := u.loadEngine(ctx); err != nil {
		return Result{}, err
	}

	u.workspace.Lock()
	defer u.workspace.Unlock()

	j.to(ctx, types.JobPreparingAssets, "Preparing assets...")
	var staged []string
	defer func() { u.cleanup(ctx, j.log, staged...) }()

	if len(u.d.Render.Font) > 0 {
		if err := u.stage(ctx, engineFont, u.d.Render.Font); err != nil {
			return Result{}, err
		}
		staged = append(staged, engineFont)
	}
	if err := u.stage(ctx, engineInput, plan.Video.Data); err != nil {
		return Result{}, err
	}
	staged = append(staged, engineInput)
	if plan.Captions {
		if err := u.stage(ctx, engineSubs, []byte(plan.Subtitles)); err != nil {
			return Result{}, err
		}
		staged = append(staged, engineSubs)
	}

	j.to(ctx, types.JobRendering, "Rendering...")
	j.log.Info("rendering",
		"start", plan.Window.Start, "duration", plan.Window.Duration(),
		"time_scale", plan.Graph.TimeScale, "tempo", plan.Graph.Tempo, "captions", plan.Captions)
	staged = append(staged, engineOutput)
	if err := u.run(ctx, "render", plan.Args); err != nil {
		return Result{}, err
	}
	out, err := u.fetch(ctx, engineOutput)
	if err != nil {
		return Result{}, err
	}

	path, err := u.d.Downloader.Save(ctx, VideoFileName, out)
	if err != nil {
		return Result{}, stageErr(KindStageIO, "save output", err)
	}
	return Result{Path: path, Bytes: len(out)}, nil
}

// seconds renders a time offset with millisecond precision and no trailing
// zeros.
func seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
