// Package pipeline wires configuration into adapters and runs one editor job
// per invocation: load the media into a session, apply the requested edits,
// hand the session to the use case.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/forPelevin/mediashop/internal/config"
	"github.com/forPelevin/mediashop/internal/domain/playback"
	"github.com/forPelevin/mediashop/internal/domain/trim"
	"github.com/forPelevin/mediashop/internal/editor"
	"github.com/forPelevin/mediashop/internal/jobstore"
	"github.com/forPelevin/mediashop/internal/ports"
	"github.com/forPelevin/mediashop/internal/ports/adapters/device"
	"github.com/forPelevin/mediashop/internal/ports/adapters/download"
	"github.com/forPelevin/mediashop/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/mediashop/internal/ports/adapters/segmentation"
	"github.com/forPelevin/mediashop/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/mediashop/internal/usecase"
)

type Config struct {
	App    *config.Config
	Logger hclog.Logger
	Status usecase.StatusFunc
}

func (c Config) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

// Runtime is the set of adapters behind one invocation.
type Runtime struct {
	Usecase   *usecase.Usecase
	Engine    *ffmpeg.Adapter
	Jobs      *jobstore.Store
	RunOutDir string

	log hclog.Logger
}

// Open builds the adapters. Artifacts produced by this run land in a fresh
// directory under paths.out_dir named after input.
func Open(cfg Config, input string) (*Runtime, error) {
	app := cfg.App
	if app == nil {
		return nil, errors.New("pipeline: nil config")
	}
	log := cfg.logger()

	engine := newEngine(app, log)

	jobs, err := jobstore.Open(app.Paths.DataDir)
	if err != nil {
		return nil, err
	}

	render, err := renderSettings(app.Render)
	if err != nil {
		_ = jobs.Close()
		return nil, err
	}

	runOutDir := buildRunOutDir(app.Paths.OutDir, input, time.Now().UTC())
	uc := usecase.New(usecase.Deps{
		Engine:     engine,
		Recognizer: whispercpp.New(app.Speech.WhisperBin, log.Named("whisper")),
		Segmenter:  segmentation.New(app.Segmentation.APIKey, app.Segmentation.Model, app.Segmentation.BaseURL),
		Downloader: download.New(runOutDir),
		Recorder:   jobs,
		Device:     device.New(device.DefaultThresholds),
		Guard:      usecase.NewGuard(app.Paths.LockDir),
		Logger:     log,
		Render:     render,
		Speech: usecase.SpeechSettings{
			Profile:            usecase.Profile(app.Speech.Profile),
			LightweightModel:   app.Speech.LightweightModel,
			AccurateModel:      app.Speech.AccurateModel,
			Language:           app.Speech.Language,
			ChunkLengthSeconds: app.Speech.ChunkLengthSeconds,
			StrideSeconds:      app.Speech.StrideSeconds,
		},
	})
	return &Runtime{Usecase: uc, Engine: engine, Jobs: jobs, RunOutDir: runOutDir, log: log}, nil
}

// Close sweeps the engine workspace and closes the job log.
func (r *Runtime) Close() error {
	return errors.Join(r.Engine.Close(), r.Jobs.Close())
}

func newEngine(app *config.Config, log hclog.Logger) *ffmpeg.Adapter {
	return ffmpeg.New(ffmpeg.Options{
		FFmpegPath:  app.Engine.FFmpegPath,
		FFprobePath: app.Engine.FFprobePath,
		Preload:     ffmpeg.Preload(app.Engine.Preload),
		RemoteURL:   app.Engine.RemoteURL,
		CacheDir:    app.Engine.CacheDir,
		Logger:      log.Named("engine"),
	})
}

func renderSettings(c config.Render) (usecase.RenderSettings, error) {
	r := usecase.DefaultRenderSettings()
	r.VideoCodec, r.Preset, r.CRF = c.VideoCodec, c.Preset, c.CRF
	r.AudioCodec, r.AudioBitrate = c.AudioCodec, c.AudioBitrate
	if c.FontPath != "" {
		b, err := os.ReadFile(c.FontPath)
		if err != nil {
			return usecase.RenderSettings{}, fmt.Errorf("read font: %w", err)
		}
		r.Font = b
	}
	return r, nil
}

// prober is the part of the engine adapter that measures media.
type prober interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

func newSession(log hclog.Logger, player playback.Player, sched playback.Scheduler) *editor.Session {
	return editor.New(player, sched, trim.Track{Left: 0, Width: 1}, log.Named("editor"))
}

// loadVideo reads input into the session once its duration is known.
func loadVideo(ctx context.Context, p prober, s *editor.Session, input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	d, err := p.ProbeDuration(ctx, input)
	if err != nil {
		return err
	}
	s.LoadVideo(filepath.Base(input), data, d.Seconds())
	return nil
}

// applyTrim moves the handles the way a user would, end first so a start
// past the old end is not clamped against it.
func applyTrim(s *editor.Session, start, end float64) {
	s.Drag.SetTrack(trim.Track{Left: 0, Width: 1})
	s.Drag.PointerDown(trim.HandleEnd)
	s.Drag.PointerMove(end)
	s.Drag.PointerUp()
	s.Drag.PointerDown(trim.HandleStart)
	s.Drag.PointerMove(start)
	s.Drag.PointerUp()
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizePathSegment(s string) string {
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.Engine = (*ffmpeg.Adapter)(nil)
var _ ports.Recognizer = (*whispercpp.Adapter)(nil)
var _ ports.Segmenter = (*segmentation.Client)(nil)
var _ ports.Downloader = (*download.Dir)(nil)
var _ ports.JobRecorder = (*jobstore.Store)(nil)
var _ ports.DeviceClassifier = (*device.Classifier)(nil)
var _ prober = (*ffmpeg.Adapter)(nil)
