package ffmpeg

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/mediashop/internal/ports"
)

type Preload string

const (
	PreloadLocal  Preload = "local"
	PreloadRemote Preload = "remote"
)

var ErrNotLoaded = errors.New("engine not loaded")

type Options struct {
	FFmpegPath  string
	FFprobePath string
	Preload     Preload
	// RemoteURL is fetched once into CacheDir when Preload is remote.
	RemoteURL  string
	CacheDir   string
	HTTPClient *http.Client
	Logger     hclog.Logger
}

// Adapter runs ffmpeg against a private temp directory that serves as the
// engine's file space.
type Adapter struct {
	ffmpeg  string
	ffprobe string
	opts    Options
	log     hclog.Logger

	mu     sync.Mutex
	loaded bool
	bin    string
	dir    string
}

func New(opts Options) *Adapter {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.Preload == "" {
		opts.Preload = PreloadLocal
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Adapter{ffmpeg: opts.FFmpegPath, ffprobe: opts.FFprobePath, opts: opts, log: log}
}

func (a *Adapter) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return nil
	}

	bin, err := a.resolve(ctx)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, bin, "-hide_banner", "-version")
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg version check: %w\n%s", err, string(b))
	}
	dir, err := os.MkdirTemp("", "mediashop-engine-*")
	if err != nil {
		return fmt.Errorf("create engine workspace: %w", err)
	}

	a.bin, a.dir, a.loaded = bin, dir, true
	a.log.Debug("engine loaded", "bin", bin, "workspace", dir, "preload", a.opts.Preload)
	return nil
}

func (a *Adapter) resolve(ctx context.Context) (string, error) {
	switch a.opts.Preload {
	case PreloadLocal:
		p, err := exec.LookPath(a.ffmpeg)
		if err != nil {
			return "", fmt.Errorf("ffmpeg binary not found: %w", err)
		}
		return p, nil
	case PreloadRemote:
		return a.fetchRemote(ctx)
	default:
		return "", fmt.Errorf("unknown engine preload %q", a.opts.Preload)
	}
}

func (a *Adapter) fetchRemote(ctx context.Context) (string, error) {
	if a.opts.RemoteURL == "" {
		return "", errors.New("remote preload requires a remote url")
	}
	sum := sha256.Sum256([]byte(a.opts.RemoteURL))
	target := filepath.Join(a.opts.CacheDir, "ffmpeg-"+hex.EncodeToString(sum[:])[:12])
	if st, err := os.Stat(target); err == nil && st.Mode().IsRegular() {
		return target, nil
	}
	if err := os.MkdirAll(a.opts.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create engine cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.RemoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("build engine download request: %w", err)
	}
	resp, err := a.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download engine: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download engine: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(a.opts.CacheDir, "ffmpeg-*.part")
	if err != nil {
		return "", fmt.Errorf("create engine download file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write engine download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("install engine binary: %w", err)
	}
	a.log.Info("engine downloaded", "url", a.opts.RemoteURL, "path", target)
	return target, nil
}

func (a *Adapter) WriteFile(_ context.Context, name string, data []byte) error {
	p, err := a.path(name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (a *Adapter) ReadFile(_ context.Context, name string) ([]byte, error) {
	p, err := a.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (a *Adapter) DeleteFile(_ context.Context, name string) error {
	p, err := a.path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Exec runs ffmpeg inside the workspace. A non-zero exit is reported through
// ExecResult; the error is reserved for failures to run at all.
func (a *Adapter) Exec(ctx context.Context, args []string) (ports.ExecResult, error) {
	a.mu.Lock()
	bin, dir, loaded := a.bin, a.dir, a.loaded
	a.mu.Unlock()
	if !loaded {
		return ports.ExecResult{}, ErrNotLoaded
	}

	argv := append([]string{"-hide_banner", "-nostdin", "-y"}, args...)
	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Dir = dir
	b, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ports.ExecResult{ExitCode: exitErr.ExitCode(), Output: string(b)}, nil
		}
		return ports.ExecResult{}, fmt.Errorf("ffmpeg exec: %w", err)
	}
	return ports.ExecResult{Output: string(b)}, nil
}

// Close removes the workspace, including anything a failed run left behind.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return nil
	}
	a.loaded = false
	return os.RemoveAll(a.dir)
}

func (a *Adapter) path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid engine file name %q", name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loaded {
		return "", ErrNotLoaded
	}
	return filepath.Join(a.dir, name), nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func (a *Adapter) ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}
