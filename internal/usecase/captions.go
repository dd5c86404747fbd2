package usecase

import (
	"context"
	"fmt"

	"github.com/forPelevin/mediashop/internal/domain/subtitles"
	"github.com/forPelevin/mediashop/internal/editor"
	"github.com/forPelevin/mediashop/internal/types"
)

const (
	defaultChunkLength = 30
	defaultStride      = 5
)

type CaptionResult struct {
	JobID   string
	Profile Profile
	Cues    int
	Text    string
}

// Captions transcribes the loaded video and, on success only, replaces the
// session's subtitle buffer with the serialized cues.
func (u *Usecase) Captions(ctx context.Context, s *editor.Session, status StatusFunc) (CaptionResult, error) {
	v := s.Video()
	if v == nil {
		if status != nil {
			status("Please upload a video first!")
		}
		return CaptionResult{}, fmt.Errorf("%w: upload a video first", ErrNoMedia)
	}
	release, err := u.d.Guard.Acquire(types.JobCaptions, types.MediumVideo)
	if err != nil {
		return CaptionResult{}, err
	}
	defer release()

	j := u.newJob(types.JobCaptions, types.MediumVideo, status)
	res, err := u.captions(ctx, j, v)
	res.JobID = j.id
	if err == nil {
		s.SetSubtitles(res.Text)
		j.status(fmt.Sprintf("Captions ready (%d cues)", res.Cues))
	}
	return res, j.finish(ctx, "", err)
}

func (u *Usecase) captions(ctx context.Context, j *job, v *editor.Video) (CaptionResult, error) {
	j.to(ctx, types.JobLoadingEngine, "Loading engine...")
	if err := u.loadEngine(ctx); err != nil {
		return CaptionResult{}, err
	}

	u.workspace.Lock()
	defer u.workspace.Unlock()

	j.to(ctx, types.JobPreparingAssets, "Extracting audio...")
	if err := u.stage(ctx, engineInput, v.Data); err != nil {
		return CaptionResult{}, err
	}
	defer u.cleanup(ctx, j.log, engineInput, engineAudio)

	if err := u.run(ctx, "extract audio", ExtractAudioArgs()); err != nil {
		return CaptionResult{}, err
	}
	audio, err := u.fetch(ctx, engineAudio)
	if err != nil {
		return CaptionResult{}, err
	}

	profile, opts := u.speechOptions(ctx)
	j.to(ctx, types.JobTranscribing, "Transcribing...")
	j.log.Info("transcribing", "profile", profile, "model", opts.Model, "audio_bytes", len(audio))
	rec, err := u.d.Recognizer.Transcribe(ctx, audio, opts)
	if err != nil {
		return CaptionResult{}, stageErr(KindInference, "transcribe", err)
	}

	cues := subtitles.FromChunks(rec.Chunks)
	return CaptionResult{Profile: profile, Cues: len(cues), Text: subtitles.Serialize(cues)}, nil
}

// ExtractAudioArgs pulls 16 kHz mono 16-bit PCM out of the staged input.
func ExtractAudioArgs() []string {
	return []string{"-i", engineInput, "-vn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", engineAudio}
}

// speechOptions resolves the model profile. Auto picks the lightweight model
// on constrained hosts and falls back to the accurate one when the host
// cannot be classified.
func (u *Usecase) speechOptions(ctx context.Context) (Profile, types.TranscribeOptions) {
	sp := u.d.Speech
	profile := sp.Profile
	if profile == "" || profile == ProfileAuto {
		profile = ProfileAccurate
		if u.d.Device != nil {
			constrained, err := u.d.Device.Constrained(ctx)
			switch {
			case err != nil:
				u.log.Warn("device classification failed, using accurate profile", "error", err)
			case constrained:
				profile = ProfileLightweight
			}
		}
	}

	model := sp.AccurateModel
	if profile == ProfileLightweight {
		model = sp.LightweightModel
	}
	chunk, stride := sp.ChunkLengthSeconds, sp.StrideSeconds
	if chunk <= 0 {
		chunk = defaultChunkLength
	}
	if stride <= 0 {
		stride = defaultStride
	}
	return profile, types.TranscribeOptions{
		Model:              model,
		Language:           sp.Language,
		ChunkLengthSeconds: chunk,
		StrideSeconds:      stride,
		ReturnTimestamps:   true,
	}
}
