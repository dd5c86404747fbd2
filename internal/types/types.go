package types

import "time"

// Chunk is one recognized span of speech. Either bound of Timestamp may be nil
// when the recognizer could not close it.
type Chunk struct {
	Text      string      `json:"text"`
	Timestamp [2]*float64 `json:"timestamp"`
}

type Recognition struct {
	Text   string  `json:"text,omitempty"`
	Chunks []Chunk `json:"chunks"`
}

type TranscribeOptions struct {
	Model              string
	Language           string
	ChunkLengthSeconds float64
	StrideSeconds      float64
	ReturnTimestamps   bool
}

type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string

	// OpenEnd marks a cue whose end bound was missing from recognition.
	OpenEnd bool
}

type Mask struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Data     []byte `json:"data"`
}

type Segmentation struct {
	Label string  `json:"label,omitempty"`
	Score float64 `json:"score,omitempty"`
	Mask  Mask    `json:"mask"`
}

type VideoAdjustments struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Speed      float64
}

type PhotoAdjustments struct {
	Brightness float64
	Contrast   float64
	Grayscale  float64
}

func NeutralVideo() VideoAdjustments {
	return VideoAdjustments{Brightness: 100, Contrast: 100, Saturation: 100, Speed: 1}
}

func NeutralPhoto() PhotoAdjustments {
	return PhotoAdjustments{Brightness: 100, Contrast: 100, Grayscale: 0}
}

type Medium string

const (
	MediumVideo Medium = "video"
	MediumPhoto Medium = "photo"
)

type JobKind string

const (
	JobExport           JobKind = "export"
	JobCaptions         JobKind = "captions"
	JobRemoveBackground JobKind = "removebg"
)

type JobState string

const (
	JobIdle            JobState = "idle"
	JobLoadingEngine   JobState = "loading_engine"
	JobPreparingAssets JobState = "preparing_assets"
	JobTranscribing    JobState = "transcribing"
	JobRendering       JobState = "rendering"
	JobCompleted       JobState = "completed"
	JobFailed          JobState = "failed"
)

func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

type JobEvent struct {
	JobID  string
	Kind   JobKind
	Medium Medium
	State  JobState
	Error  string
	Output string
	At     time.Time
}

type JobRecord struct {
	JobID       string
	Kind        JobKind
	Medium      Medium
	State       JobState
	Error       string
	Output      string
	StartedAt   time.Time
	UpdatedAt   time.Time
	Transitions int
}
