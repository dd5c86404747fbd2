package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/forPelevin/mediashop/internal/domain/playback"
	"github.com/forPelevin/mediashop/internal/domain/trim"
	"github.com/forPelevin/mediashop/internal/editor"
	"github.com/forPelevin/mediashop/internal/ports"
	"github.com/forPelevin/mediashop/internal/types"
)

type fakeEngine struct {
	mu       sync.Mutex
	loads    int
	loadErr  error
	files    map[string][]byte
	execs    [][]string
	exitCode int
	// produce is written into the engine after a successful exec.
	produce map[string][]byte
	// block, when set, holds Exec until closed; started is signalled first.
	block   chan struct{}
	started chan struct{}
	// onLoad runs inside Load, between planning and staging.
	onLoad func()
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{files: map[string][]byte{}, produce: map[string][]byte{}}
}

func (e *fakeEngine) Load(context.Context) error {
	if e.onLoad != nil {
		e.onLoad()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads++
	return e.loadErr
}

func (e *fakeEngine) WriteFile(_ context.Context, name string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[name] = append([]byte(nil), data...)
	return nil
}

func (e *fakeEngine) Exec(_ context.Context, args []string) (ports.ExecResult, error) {
	e.mu.Lock()
	e.execs = append(e.execs, args)
	block, started := e.block, e.started
	e.mu.Unlock()

	if block != nil {
		if started != nil {
			close(started)
		}
		<-block
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.exitCode != 0 {
		return ports.ExecResult{ExitCode: e.exitCode, Output: "boom"}, nil
	}
	for name, b := range e.produce {
		e.files[name] = b
	}
	return ports.ExecResult{}, nil
}

func (e *fakeEngine) ReadFile(_ context.Context, name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}
	return b, nil
}

func (e *fakeEngine) DeleteFile(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.files[name]; !ok {
		return fmt.Errorf("delete %s: %w", name, fs.ErrNotExist)
	}
	delete(e.files, name)
	return nil
}

func (e *fakeEngine) fileNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for n := range e.files {
		out = append(out, n)
	}
	return out
}

type fakeRecognizer struct {
	rec  types.Recognition
	err  error
	opts types.TranscribeOptions
}

func (r *fakeRecognizer) Transcribe(_ context.Context, _ []byte, opts types.TranscribeOptions) (types.Recognition, error) {
	r.opts = opts
	return r.rec, r.err
}

type fakeSegmenter struct {
	segs []types.Segmentation
	err  error
}

func (s fakeSegmenter) Segment(context.Context, []byte, string) ([]types.Segmentation, error) {
	return s.segs, s.err
}

type fakeDownloader struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (d *fakeDownloader) Save(_ context.Context, name string, data []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saved == nil {
		d.saved = map[string][]byte{}
	}
	d.saved[name] = data
	return "out/" + name, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []types.JobEvent
}

func (r *fakeRecorder) Record(_ context.Context, ev types.JobEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeRecorder) states() []types.JobState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.JobState
	for _, ev := range r.events {
		out = append(out, ev.State)
	}
	return out
}

type fakeDevice struct {
	constrained bool
	err         error
}

func (d fakeDevice) Constrained(context.Context) (bool, error) { return d.constrained, d.err }

type noopScheduler struct{}

func (noopScheduler) Schedule(func()) {}

func newSession() *editor.Session {
	return editor.New(playback.NewClock(0), noopScheduler{}, trim.Track{Width: 100}, nil)
}

var errBoom = errors.New("boom")
