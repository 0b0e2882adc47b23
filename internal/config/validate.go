package config

import (
	"errors"
	"fmt"
	"regexp"
)

var bitratePattern = regexp.MustCompile(`^[0-9]+[kKmM]?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateAutosave(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.PreviewSeconds <= 0 {
		return errors.New("render.preview_seconds must be positive")
	}
	if c.Render.MinFreeSpaceGiB < 0 {
		return errors.New("render.min_free_space_gib must not be negative")
	}
	if !bitratePattern.MatchString(c.Render.AudioBitrate) {
		return fmt.Errorf("render.audio_bitrate %q is not a valid bitrate", c.Render.AudioBitrate)
	}
	return nil
}

func (c *Config) validateAutosave() error {
	if c.Autosave.IntervalSeconds <= 0 {
		return errors.New("autosave.interval_seconds must be positive")
	}
	if c.Autosave.KeepSnapshots <= 0 {
		return errors.New("autosave.keep_snapshots must be positive")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.RateWPM <= 0 {
		return errors.New("tts.rate_wpm must be positive")
	}
	if c.TTS.Parallelism <= 0 {
		return errors.New("tts.parallelism must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
