package config

import (
	"errors"
	"fmt"

	"github.com/forPelevin/mediashop/internal/ports/adapters/segmentation"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := segmentation.ValidateBaseURL(c.Segmentation.BaseURL, c.Segmentation.AllowedHosts); err != nil {
		return fmt.Errorf("segmentation.base_url: %w", err)
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	return c.validateLogging()
}

func (c *Config) validateEngine() error {
	switch c.Engine.Preload {
	case "local":
	case "remote":
		if c.Engine.RemoteURL == "" {
			return errors.New("engine.remote_url is required when engine.preload is remote")
		}
	default:
		return fmt.Errorf("engine.preload must be local or remote, got %q", c.Engine.Preload)
	}
	return nil
}

func (c *Config) validateSpeech() error {
	switch c.Speech.Profile {
	case "auto", "lightweight", "accurate":
	default:
		return fmt.Errorf("speech.profile must be auto, lightweight or accurate, got %q", c.Speech.Profile)
	}
	if c.Speech.ChunkLengthSeconds <= 0 {
		return errors.New("speech.chunk_length_seconds must be positive")
	}
	if c.Speech.StrideSeconds < 0 || c.Speech.StrideSeconds >= c.Speech.ChunkLengthSeconds {
		return errors.New("speech.stride_seconds must be in [0, chunk_length_seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
