// Package filters maps adjustment controls onto the two places they apply:
// the live preview surface (a CSS filter expression) and the ffmpeg render
// (a -vf/-af filter graph).
package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/mediashop/internal/types"
)

// Tempo bounds a single atempo stage accepts on every ffmpeg build.
const (
	minTempoStage = 0.5
	maxTempoStage = 2.0
)

// SubtitleStyle is the fixed look of burned-in captions.
type SubtitleStyle struct {
	FontName     string
	FontSize     int
	PrimaryColor string
	OutlineColor string
	BorderStyle  int
	Outline      int
	Shadow       int
	MarginV      int
}

var DefaultSubtitleStyle = SubtitleStyle{
	FontName:     "Inter",
	FontSize:     24,
	PrimaryColor: "&H00FFFFFF",
	OutlineColor: "&H00000000",
	BorderStyle:  1,
	Outline:      2,
	Shadow:       0,
	MarginV:      30,
}

func (s SubtitleStyle) forceStyle() string {
	return fmt.Sprintf("FontName=%s,FontSize=%d,PrimaryColour=%s,OutlineColour=%s,BorderStyle=%d,Outline=%d,Shadow=%d,MarginV=%d",
		s.FontName, s.FontSize, s.PrimaryColor, s.OutlineColor, s.BorderStyle, s.Outline, s.Shadow, s.MarginV)
}

type RenderOptions struct {
	// SubtitlesFile enables the burn-in stage when non-empty.
	SubtitlesFile string
	FontsDir      string
	Style         SubtitleStyle
	// Offset is the source time in seconds of the first decoded frame. An
	// input seek restarts timestamps at zero, while cues stay on source time.
	Offset float64
}

type Graph struct {
	Video     string
	Audio     string
	TimeScale float64
	Tempo     float64
}

// VideoPreview is the CSS filter applied to the video preview surface.
func VideoPreview(a types.VideoAdjustments) string {
	return fmt.Sprintf("brightness(%s%%) contrast(%s%%) saturate(%s%%)",
		pct(a.Brightness), pct(a.Contrast), pct(a.Saturation))
}

// PhotoPreview is the CSS filter applied to the photo preview surface.
func PhotoPreview(a types.PhotoAdjustments) string {
	return fmt.Sprintf("brightness(%s%%) contrast(%s%%) grayscale(%s%%)",
		pct(a.Brightness), pct(a.Contrast), pct(a.Grayscale))
}

// Render builds the filter graph for the final encode. Video timestamps are
// scaled by 1/speed while audio tempo takes speed as-is, which keeps the two
// in sync. With subtitles and a non-zero Offset, frames are moved onto source
// time for the burn-in and re-zeroed before the speed stage.
func Render(a types.VideoAdjustments, opts RenderOptions) Graph {
	speed := a.Speed
	if speed <= 0 {
		speed = 1
	}
	scale := 1 / speed

	stages := []string{
		fmt.Sprintf("eq=brightness=%.2f:contrast=%.2f:saturation=%.2f",
			(a.Brightness-100)/100, a.Contrast/100, a.Saturation/100),
	}
	retime := "setpts=" + factor(scale) + "*PTS"
	if opts.SubtitlesFile != "" {
		if opts.Offset > 0 {
			stages = append(stages, "setpts=PTS+"+factor(opts.Offset)+"/TB")
			retime = "setpts=" + factor(scale) + "*(PTS-STARTPTS)"
		}
		stages = append(stages, subtitlesStage(opts))
	}
	stages = append(stages, retime)

	return Graph{
		Video:     strings.Join(stages, ","),
		Audio:     AudioTempoChain(speed),
		TimeScale: scale,
		Tempo:     speed,
	}
}

// AudioTempoChain expresses tempo as atempo stages whose product is tempo.
// A tempo inside [0.5, 2] is a single stage.
func AudioTempoChain(tempo float64) string {
	if tempo <= 0 {
		tempo = 1
	}
	var stages []string
	for tempo > maxTempoStage {
		stages = append(stages, "atempo="+factor(maxTempoStage))
		tempo /= maxTempoStage
	}
	for tempo < minTempoStage {
		stages = append(stages, "atempo="+factor(minTempoStage))
		tempo /= minTempoStage
	}
	stages = append(stages, "atempo="+factor(tempo))
	return strings.Join(stages, ",")
}

func subtitlesStage(opts RenderOptions) string {
	style := opts.Style
	if style == (SubtitleStyle{}) {
		style = DefaultSubtitleStyle
	}
	var b strings.Builder
	b.WriteString("subtitles=")
	b.WriteString(escapeFilterValue(opts.SubtitlesFile))
	if opts.FontsDir != "" {
		b.WriteString(":fontsdir=")
		b.WriteString(escapeFilterValue(opts.FontsDir))
	}
	b.WriteString(":force_style='")
	b.WriteString(style.forceStyle())
	b.WriteString("'")
	return b.String()
}

func escapeFilterValue(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}

func factor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
