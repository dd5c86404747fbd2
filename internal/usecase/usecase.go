// Package usecase runs the multi-stage jobs of the editor: caption
// extraction and video export against the transcoding engine, background
// removal and photo export.
//
// Every job acquires its slot in the Guard first, reports progress through a
// StatusFunc, records each state transition, and ends back in Idle whatever
// the outcome.
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/mediashop/internal/domain/filters"
	"github.com/forPelevin/mediashop/internal/ports"
	"github.com/forPelevin/mediashop/internal/types"
)

// StatusFunc receives the user-facing status line of a running job.
type StatusFunc func(msg string)

type Deps struct {
	Engine     ports.Engine
	Recognizer ports.Recognizer
	Segmenter  ports.Segmenter
	Downloader ports.Downloader
	Recorder   ports.JobRecorder
	Device     ports.DeviceClassifier
	Guard      *Guard
	Logger     hclog.Logger

	Render RenderSettings
	Speech SpeechSettings
}

type RenderSettings struct {
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string

	// Font is staged as font.ttf next to the input. Without it the subtitle
	// stage falls back to the engine's default fonts.
	Font  []byte
	Style filters.SubtitleStyle
}

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		VideoCodec:   "libx264",
		Preset:       "veryfast",
		CRF:          18,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		Style:        filters.DefaultSubtitleStyle,
	}
}

type Profile string

const (
	ProfileAuto        Profile = "auto"
	ProfileLightweight Profile = "lightweight"
	ProfileAccurate    Profile = "accurate"
)

type SpeechSettings struct {
	Profile            Profile
	LightweightModel   string
	AccurateModel      string
	Language           string
	ChunkLengthSeconds float64
	StrideSeconds      float64
}

type Result struct {
	JobID string
	Path  string
	Bytes int
}

type Usecase struct {
	d   Deps
	log hclog.Logger

	// workspace serializes video jobs over the engine's single file space.
	workspace sync.Mutex
}

func New(d Deps) *Usecase {
	if d.Logger == nil {
		d.Logger = hclog.NewNullLogger()
	}
	if d.Guard == nil {
		d.Guard = NewGuard("")
	}
	return &Usecase{d: d, log: d.Logger}
}

type job struct {
	id     string
	kind   types.JobKind
	medium types.Medium
	state  types.JobState
	rec    ports.JobRecorder
	log    hclog.Logger
	status StatusFunc
}

func (u *Usecase) newJob(kind types.JobKind, medium types.Medium, status StatusFunc) *job {
	if status == nil {
		status = func(string) {}
	}
	id := uuid.NewString()
	return &job{
		id:     id,
		kind:   kind,
		medium: medium,
		state:  types.JobIdle,
		rec:    u.d.Recorder,
		log:    u.log.Named(string(kind)).With("job_id", id, "medium", medium),
		status: status,
	}
}

func (j *job) to(ctx context.Context, st types.JobState, msg string) {
	j.log.Debug("job state", "from", j.state, "to", st)
	j.state = st
	j.record(ctx, types.JobEvent{State: st})
	if msg != "" {
		j.status(msg)
	}
}

// finish moves the job to its terminal state and back to Idle. It returns err
// unchanged.
func (j *job) finish(ctx context.Context, output string, err error) error {
	if err != nil {
		j.state = types.JobFailed
		j.log.Error("job failed", "error", err)
		j.record(ctx, types.JobEvent{State: types.JobFailed, Error: err.Error()})
		j.status("Error: " + err.Error())
	} else {
		j.state = types.JobCompleted
		j.log.Info("job completed", "output", output)
		j.record(ctx, types.JobEvent{State: types.JobCompleted, Output: output})
	}
	j.state = types.JobIdle
	return err
}

func (j *job) record(ctx context.Context, ev types.JobEvent) {
	if j.rec == nil {
		return
	}
	ev.JobID, ev.Kind, ev.Medium, ev.At = j.id, j.kind, j.medium, time.Now()
	// The job log is an audit trail; a failing write never fails the job.
	if err := j.rec.Record(context.WithoutCancel(ctx), ev); err != nil {
		j.log.Warn("record job event", "state", ev.State, "error", err)
	}
}
