package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/forPelevin/mediashop/internal/types"
)

// FromChunks turns recognizer chunks into cues numbered from 1. A missing
// start bound reads as 0. A missing end bound is kept as an open cue whose
// end formats as 00:00:00,000.
func FromChunks(chunks []types.Chunk) []types.Cue {
	out := make([]types.Cue, 0, len(chunks))
	for i, c := range chunks {
		cue := types.Cue{
			Index: i + 1,
			Text:  strings.TrimSpace(c.Text),
		}
		if c.Timestamp[0] != nil {
			cue.Start = *c.Timestamp[0]
		}
		if c.Timestamp[1] != nil {
			cue.End = *c.Timestamp[1]
		} else {
			cue.OpenEnd = true
		}
		out = append(out, cue)
	}
	return out
}

// Serialize renders cues in SubRip form: index, time line, text, blank line.
func Serialize(cues []types.Cue) string {
	var b strings.Builder
	for _, c := range cues {
		b.WriteString(strconv.Itoa(c.Index))
		b.WriteString("\n")
		b.WriteString(FormatTimestamp(c.Start))
		b.WriteString(" --> ")
		if c.OpenEnd {
			b.WriteString(FormatTimestamp(0))
		} else {
			b.WriteString(FormatTimestamp(c.End))
		}
		b.WriteString("\n")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// HasCues reports whether an edited subtitle buffer carries anything worth
// burning in.
func HasCues(text string) bool {
	return strings.TrimSpace(text) != ""
}

// CountCues counts blank-line separated blocks.
func CountCues(text string) int {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	content := strings.TrimSpace(text)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
