package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	if err := c.normalizeSpeech(); err != nil {
		return err
	}
	c.normalizeSegmentation()
	if err := c.normalizeRender(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEngine() error {
	c.Engine.Preload = strings.ToLower(strings.TrimSpace(c.Engine.Preload))
	if c.Engine.Preload == "" {
		c.Engine.Preload = defaultEnginePreload
	}
	c.Engine.FFmpegPath = strings.TrimSpace(c.Engine.FFmpegPath)
	if c.Engine.FFmpegPath == "" {
		c.Engine.FFmpegPath = defaultFFmpegPath
	}
	c.Engine.FFprobePath = strings.TrimSpace(c.Engine.FFprobePath)
	if c.Engine.FFprobePath == "" {
		c.Engine.FFprobePath = defaultFFprobePath
	}
	c.Engine.RemoteURL = strings.TrimSpace(c.Engine.RemoteURL)
	if strings.TrimSpace(c.Engine.CacheDir) == "" {
		c.Engine.CacheDir = defaultEngineCacheDir
	}
	var err error
	if c.Engine.CacheDir, err = expandPath(c.Engine.CacheDir); err != nil {
		return fmt.Errorf("engine.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSpeech() error {
	c.Speech.Profile = strings.ToLower(strings.TrimSpace(c.Speech.Profile))
	if c.Speech.Profile == "" {
		c.Speech.Profile = defaultSpeechProfile
	}
	c.Speech.WhisperBin = strings.TrimSpace(c.Speech.WhisperBin)
	if c.Speech.WhisperBin == "" {
		c.Speech.WhisperBin = defaultWhisperBin
	}
	var err error
	if c.Speech.LightweightModel, err = expandPath(strings.TrimSpace(c.Speech.LightweightModel)); err != nil {
		return fmt.Errorf("speech.lightweight_model: %w", err)
	}
	if c.Speech.AccurateModel, err = expandPath(strings.TrimSpace(c.Speech.AccurateModel)); err != nil {
		return fmt.Errorf("speech.accurate_model: %w", err)
	}
	if c.Speech.ChunkLengthSeconds == 0 {
		c.Speech.ChunkLengthSeconds = defaultChunkLength
	}
	c.Speech.Language = strings.TrimSpace(c.Speech.Language)
	return nil
}

func (c *Config) normalizeSegmentation() {
	c.Segmentation.BaseURL = strings.TrimSpace(c.Segmentation.BaseURL)
	if c.Segmentation.BaseURL == "" {
		c.Segmentation.BaseURL = defaultSegmentationURL
	}
	c.Segmentation.Model = strings.TrimSpace(c.Segmentation.Model)
	if c.Segmentation.Model == "" {
		c.Segmentation.Model = defaultSegmentationModel
	}
	c.Segmentation.APIKey = strings.TrimSpace(c.Segmentation.APIKey)
	hosts := c.Segmentation.AllowedHosts[:0]
	for _, h := range c.Segmentation.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.Segmentation.AllowedHosts = hosts
}

func (c *Config) normalizeRender() error {
	var err error
	if c.Render.FontPath, err = expandPath(strings.TrimSpace(c.Render.FontPath)); err != nil {
		return fmt.Errorf("render.font_path: %w", err)
	}
	if strings.TrimSpace(c.Render.VideoCodec) == "" {
		c.Render.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.Render.AudioCodec) == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.Render.Preset) == "" {
		c.Render.Preset = defaultPreset
	}
	if strings.TrimSpace(c.Render.AudioBitrate) == "" {
		c.Render.AudioBitrate = defaultAudioBitrate
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir
	}
	var err error
	if c.Paths.OutDir, err = expandPath(c.Paths.OutDir); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
