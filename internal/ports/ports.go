package ports

import (
	"context"

	"github.com/forPelevin/mediashop/internal/types"
)

// ExecResult is what one engine invocation left behind.
type ExecResult struct {
	ExitCode int
	Output   string
}

// Engine is a transcoder with its own private, flat file namespace. Inputs
// are staged with WriteFile, Exec runs against staged names, and results are
// fetched with ReadFile.
type Engine interface {
	// Load prepares the engine. Once it has succeeded, further calls are no-ops.
	Load(ctx context.Context) error
	WriteFile(ctx context.Context, name string, data []byte) error
	Exec(ctx context.Context, args []string) (ExecResult, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
	DeleteFile(ctx context.Context, name string) error
}

type Recognizer interface {
	Transcribe(ctx context.Context, audio []byte, opts types.TranscribeOptions) (types.Recognition, error)
}

type Segmenter interface {
	Segment(ctx context.Context, image []byte, mime string) ([]types.Segmentation, error)
}

// Downloader hands a finished artifact to the user.
type Downloader interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type JobRecorder interface {
	Record(ctx context.Context, ev types.JobEvent) error
}

// DeviceClassifier tells whether the host should run the lighter models.
type DeviceClassifier interface {
	Constrained(ctx context.Context) (bool, error)
}
