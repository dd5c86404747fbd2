package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Names inside the engine's file space.
const (
	engineInput  = "input.mp4"
	engineOutput = "output.mp4"
	engineAudio  = "audio.wav"
	engineFont   = "font.ttf"
	engineSubs   = "subs.srt"
)

func (u *Usecase) loadEngine(ctx context.Context) error {
	if err := u.d.Engine.Load(ctx); err != nil {
		return stageErr(KindEngineInit, "load engine", err)
	}
	return nil
}

func (u *Usecase) stage(ctx context.Context, name string, data []byte) error {
	if err := u.d.Engine.WriteFile(ctx, name, data); err != nil {
		return stageErr(KindStageIO, "stage "+name, err)
	}
	return nil
}

// run executes argv and turns a non-zero exit into a render failure.
func (u *Usecase) run(ctx context.Context, stage string, argv []string) error {
	res, err := u.d.Engine.Exec(ctx, argv)
	if err != nil {
		return stageErr(KindStageIO, stage, err)
	}
	if res.ExitCode != 0 {
		return stageErr(KindRender, stage, fmt.Errorf("engine exited with code %d: %s", res.ExitCode, tail(res.Output, 800)))
	}
	return nil
}

func (u *Usecase) fetch(ctx context.Context, name string) ([]byte, error) {
	b, err := u.d.Engine.ReadFile(ctx, name)
	if err != nil {
		return nil, stageErr(KindStageIO, "read "+name, err)
	}
	return b, nil
}

// cleanup deletes staged files. Missing files are expected when a run failed
// before producing them.
func (u *Usecase) cleanup(ctx context.Context, log hclog.Logger, names ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, n := range names {
		if err := u.d.Engine.DeleteFile(ctx, n); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("delete staged file", "name", n, "error", err)
		}
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
