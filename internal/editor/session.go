// Package editor holds the state of one editing session: the loaded media,
// the trim window and its drag handles, preview playback, the adjustment
// controls and the editable subtitle buffer.
package editor

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/mediashop/internal/domain/filters"
	"github.com/forPelevin/mediashop/internal/domain/photo"
	"github.com/forPelevin/mediashop/internal/domain/playback"
	"github.com/forPelevin/mediashop/internal/domain/trim"
	"github.com/forPelevin/mediashop/internal/types"
)

type Video struct {
	Name     string
	Data     []byte
	Duration float64
}

type Photo struct {
	Name   string
	Format photo.Format
	Data   []byte
	Image  image.Image
}

type Session struct {
	Range    *trim.Range
	Drag     *trim.Drag
	Playback *playback.Controller

	mu        sync.Mutex
	log       hclog.Logger
	video     *Video
	photo     *Photo
	videoAdj  types.VideoAdjustments
	photoAdj  types.PhotoAdjustments
	subtitles string
}

func New(player playback.Player, sched playback.Scheduler, track trim.Track, log hclog.Logger) *Session {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	rng := trim.NewRange()
	ctl := playback.NewController(player, sched, rng, log.Named("playback"))
	return &Session{
		Range:    rng,
		Drag:     trim.NewDrag(rng, ctl, track),
		Playback: ctl,
		log:      log,
		videoAdj: types.NeutralVideo(),
		photoAdj: types.NeutralPhoto(),
	}
}

// LoadVideo replaces the current video. The trim window resets once the
// duration is known, which is now.
func (s *Session) LoadVideo(name string, data []byte, duration float64) {
	s.mu.Lock()
	s.video = &Video{Name: name, Data: data, Duration: duration}
	s.subtitles = ""
	s.mu.Unlock()

	s.Range.Reset()
	s.Playback.Load(duration)
	s.log.Debug("video loaded", "name", name, "bytes", len(data), "duration", duration)
}

func (s *Session) Video() *Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video
}

func (s *Session) LoadPhoto(name string, data []byte) error {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("read image header: %w", err)
	}
	f, err := photo.ParseFormat(format)
	if err != nil {
		return err
	}
	img, err := photo.Decode(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.photo = &Photo{Name: name, Format: f, Data: data, Image: img}
	s.photoAdj = types.NeutralPhoto()
	s.mu.Unlock()
	s.log.Debug("photo loaded", "name", name, "format", f, "bounds", img.Bounds().Size())
	return nil
}

func (s *Session) Photo() *Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}

// ReplacePhoto swaps the displayed image in place, keeping its name.
func (s *Session) ReplacePhoto(img image.Image, f photo.Format, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := ""
	if s.photo != nil {
		name = s.photo.Name
	}
	s.photo = &Photo{Name: name, Format: f, Data: data, Image: img}
}

// SetVideoAdjustments applies the controls and returns the preview filter.
// Speed also changes the preview playback rate.
func (s *Session) SetVideoAdjustments(a types.VideoAdjustments) string {
	s.mu.Lock()
	s.videoAdj = a
	s.mu.Unlock()
	s.Playback.SetRate(a.Speed)
	return filters.VideoPreview(a)
}

func (s *Session) VideoAdjustments() types.VideoAdjustments {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoAdj
}

func (s *Session) SetPhotoAdjustments(a types.PhotoAdjustments) string {
	s.mu.Lock()
	s.photoAdj = a
	s.mu.Unlock()
	return filters.PhotoPreview(a)
}

func (s *Session) PhotoAdjustments() types.PhotoAdjustments {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photoAdj
}

// SetSubtitles replaces the editable subtitle buffer. The text is staged
// verbatim at export time.
func (s *Session) SetSubtitles(text string) {
	s.mu.Lock()
	s.subtitles = text
	s.mu.Unlock()
}

func (s *Session) Subtitles() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtitles
}
