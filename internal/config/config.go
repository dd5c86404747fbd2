// Package config loads mediashop settings from a TOML file, then applies
// environment overrides and normalizes paths.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine selects and locates the ffmpeg build used for rendering.
type Engine struct {
	Preload     string `toml:"preload"`
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	RemoteURL   string `toml:"remote_url"`
	CacheDir    string `toml:"cache_dir"`
}

// Speech configures caption transcription.
type Speech struct {
	Profile            string  `toml:"profile"`
	WhisperBin         string  `toml:"whisper_bin"`
	LightweightModel   string  `toml:"lightweight_model"`
	AccurateModel      string  `toml:"accurate_model"`
	ChunkLengthSeconds float64 `toml:"chunk_length_seconds"`
	StrideSeconds      float64 `toml:"stride_seconds"`
	Language           string  `toml:"language"`
}

// Segmentation points at the background removal service.
type Segmentation struct {
	BaseURL      string   `toml:"base_url"`
	Model        string   `toml:"model"`
	APIKey       string   `toml:"api_key"`
	AllowedHosts []string `toml:"allowed_hosts"`
}

// Render holds the fixed encoder parameters of a video export.
type Render struct {
	FontPath     string `toml:"font_path"`
	VideoCodec   string `toml:"video_codec"`
	AudioCodec   string `toml:"audio_codec"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	AudioBitrate string `toml:"audio_bitrate"`
}

type Paths struct {
	OutDir  string `toml:"out_dir"`
	DataDir string `toml:"data_dir"`
	LockDir string `toml:"lock_dir"`
}

type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

type Config struct {
	Engine       Engine       `toml:"engine"`
	Speech       Speech       `toml:"speech"`
	Segmentation Segmentation `toml:"segmentation"`
	Render       Render       `toml:"render"`
	Paths        Paths        `toml:"paths"`
	Logging      Logging      `toml:"logging"`
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load reads path (or the default location when path is empty), applies
// environment overrides, then normalizes and validates the result. A missing
// file is not an error; the defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("MEDIASHOP_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, "", false, err
	}

	exists := true
	b, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func (c *Config) applyEnv() {
	if v, ok := lookup("MEDIASHOP_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("MEDIASHOP_SEGMENTATION_URL"); ok {
		c.Segmentation.BaseURL = v
	}
	if v, ok := lookup("MEDIASHOP_SEGMENTATION_API_KEY"); ok {
		c.Segmentation.APIKey = v
	}
	if v, ok := lookup("MEDIASHOP_SEGMENTATION_ALLOWED_HOSTS"); ok {
		c.Segmentation.AllowedHosts = strings.Split(v, ",")
	}
	if v, ok := lookup("MEDIASHOP_SPEECH_PROFILE"); ok {
		c.Speech.Profile = v
	}
	if v, ok := lookup("MEDIASHOP_ENGINE_PRELOAD"); ok {
		c.Engine.Preload = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath applies the same home and absolute path rules as Load.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
