package whispercpp

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/mediashop/internal/types"
)

type Adapter struct {
	bin string
	log hclog.Logger
}

func New(binPath string, log hclog.Logger) *Adapter {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Adapter{bin: binPath, log: log}
}

// Transcribe decodes a 16 kHz mono WAV in overlapping windows of
// ChunkLengthSeconds, StrideSeconds apart, and stitches the segments into one
// ordered chunk list.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, opts types.TranscribeOptions) (types.Recognition, error) {
	if opts.Model == "" {
		return types.Recognition{}, errors.New("whisper model path is required")
	}
	tmp, err := os.MkdirTemp("", "mediashop-whisper-*")
	if err != nil {
		return types.Recognition{}, err
	}
	defer os.RemoveAll(tmp)

	wavPath := filepath.Join(tmp, "audio.wav")
	if err := os.WriteFile(wavPath, audio, 0o644); err != nil {
		return types.Recognition{}, err
	}

	total, err := wavDuration(audio)
	if err != nil {
		a.log.Warn("could not read wav duration, decoding in one pass", "error", err)
		total = 0
	}
	windows := planWindows(total, opts.ChunkLengthSeconds, opts.StrideSeconds)

	var rec types.Recognition
	var texts []string
	for i, w := range windows {
		outPrefix := filepath.Join(tmp, "whisper-"+strconv.Itoa(i))
		args := []string{
			"-m", opts.Model,
			"-f", wavPath,
			"-oj",
			"-of", outPrefix,
		}
		if w.Duration > 0 {
			args = append(args,
				"-ot", strconv.FormatInt(millis(w.Offset), 10),
				"-d", strconv.FormatInt(millis(w.Duration), 10),
			)
		}
		if opts.Language != "" {
			args = append(args, "-l", opts.Language)
		}
		cmd := exec.CommandContext(ctx, a.bin, args...)
		b, err := cmd.CombinedOutput()
		if err != nil {
			return types.Recognition{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
		}

		jb, err := os.ReadFile(outPrefix + ".json")
		if err != nil {
			return types.Recognition{}, err
		}
		chunks, err := parseOutput(jb)
		if err != nil {
			return types.Recognition{}, fmt.Errorf("parse whisper.cpp output: %w", err)
		}
		for _, c := range chunks {
			if !w.keeps(c) {
				continue
			}
			if !opts.ReturnTimestamps {
				c.Timestamp = [2]*float64{}
			}
			rec.Chunks = append(rec.Chunks, c)
			texts = append(texts, c.Text)
		}
		a.log.Debug("window decoded", "index", i, "offset", w.Offset, "chunks", len(chunks))
	}
	rec.Text = strings.Join(texts, " ")
	return rec, nil
}

type output struct {
	Transcription []struct {
		Offsets struct {
			From *int64 `json:"from"`
			To   *int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseOutput(b []byte) ([]types.Chunk, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	chunks := make([]types.Chunk, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, types.Chunk{
			Text:      text,
			Timestamp: [2]*float64{seconds(seg.Offsets.From), seconds(seg.Offsets.To)},
		})
	}
	return chunks, nil
}

type window struct {
	Offset   float64
	Duration float64
	// Segments starting in [KeepFrom, KeepTo) belong to this window; the rest
	// fall in an overlap another window owns.
	KeepFrom float64
	KeepTo   float64
}

func (w window) keeps(c types.Chunk) bool {
	start := 0.0
	if c.Timestamp[0] != nil {
		start = *c.Timestamp[0]
	}
	return start >= w.KeepFrom && start < w.KeepTo
}

func planWindows(total, chunk, stride float64) []window {
	if total <= 0 || chunk <= 0 || total <= chunk {
		return []window{{KeepFrom: math.Inf(-1), KeepTo: math.Inf(1)}}
	}
	if stride < 0 || stride >= chunk {
		stride = 0
	}
	step := chunk - stride

	var out []window
	for off := 0.0; off < total; off += step {
		w := window{Offset: off, Duration: chunk, KeepFrom: off + stride/2, KeepTo: off + step + stride/2}
		if off == 0 {
			w.KeepFrom = math.Inf(-1)
		}
		if off+chunk >= total {
			w.KeepTo = math.Inf(1)
			out = append(out, w)
			break
		}
		out = append(out, w)
	}
	return out
}

// wavDuration reads the data length and byte rate out of a RIFF/WAVE header.
func wavDuration(b []byte) (float64, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return 0, errors.New("not a wav file")
	}
	var byteRate uint32
	for pos := 12; pos+8 <= len(b); {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		switch id {
		case "fmt ":
			if body+12 > len(b) {
				return 0, errors.New("truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(b[body+8 : body+12])
		case "data":
			if byteRate == 0 {
				return 0, errors.New("data chunk before fmt chunk")
			}
			if avail := len(b) - body; size > avail || size < 0 {
				size = avail
			}
			return float64(size) / float64(byteRate), nil
		}
		pos = body + size + size%2
	}
	return 0, errors.New("no data chunk")
}

func seconds(ms *int64) *float64 {
	if ms == nil {
		return nil
	}
	v := float64(*ms) / 1000
	return &v
}

func millis(sec float64) int64 { return int64(math.Round(sec * 1000)) }
