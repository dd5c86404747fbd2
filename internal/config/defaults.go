package config

const (
	defaultConfigPath        = "~/.config/mediashop/config.toml"
	defaultEnginePreload     = "local"
	defaultFFmpegPath        = "ffmpeg"
	defaultFFprobePath       = "ffprobe"
	defaultEngineCacheDir    = "~/.cache/mediashop/engine"
	defaultSpeechProfile     = "auto"
	defaultWhisperBin        = "whisper-cli"
	defaultLightweightModel  = "~/.cache/mediashop/models/ggml-base-q5_1.bin"
	defaultAccurateModel     = "~/.cache/mediashop/models/ggml-small.bin"
	defaultChunkLength       = 30
	defaultStride            = 5
	defaultSegmentationURL   = "http://127.0.0.1:8765"
	defaultSegmentationModel = "Xenova/modnet"
	defaultVideoCodec        = "libx264"
	defaultPreset            = "veryfast"
	defaultCRF               = 18
	defaultAudioCodec        = "aac"
	defaultAudioBitrate      = "192k"
	defaultOutDir            = "out"
	defaultDataDir           = "~/.local/share/mediashop"
	defaultLockDir           = "~/.local/share/mediashop/locks"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with every built-in value.
func Default() Config {
	return Config{
		Engine: Engine{
			Preload:     defaultEnginePreload,
			FFmpegPath:  defaultFFmpegPath,
			FFprobePath: defaultFFprobePath,
			CacheDir:    defaultEngineCacheDir,
		},
		Speech: Speech{
			Profile:            defaultSpeechProfile,
			WhisperBin:         defaultWhisperBin,
			LightweightModel:   defaultLightweightModel,
			AccurateModel:      defaultAccurateModel,
			ChunkLengthSeconds: defaultChunkLength,
			StrideSeconds:      defaultStride,
		},
		Segmentation: Segmentation{
			BaseURL: defaultSegmentationURL,
			Model:   defaultSegmentationModel,
		},
		Render: Render{
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
		},
		Paths: Paths{
			OutDir:  defaultOutDir,
			DataDir: defaultDataDir,
			LockDir: defaultLockDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
