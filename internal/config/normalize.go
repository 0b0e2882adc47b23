package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeRender()
	c.normalizeAutosave()
	c.normalizeTTS()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpegBinary) == "" {
		c.Tools.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobeBinary) == "" {
		c.Tools.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Tools.TTSBinary) == "" {
		c.Tools.TTSBinary = defaultTTSBinary
	}
}

func (c *Config) normalizeRender() {
	if strings.TrimSpace(c.Render.AudioCodec) == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.Render.AudioBitrate) == "" {
		c.Render.AudioBitrate = defaultAudioBitrate
	}
	if c.Render.PreviewSeconds == 0 {
		c.Render.PreviewSeconds = defaultPreviewSeconds
	}
	if c.Render.MinFreeSpaceGiB == 0 {
		c.Render.MinFreeSpaceGiB = defaultMinFreeSpaceGiB
	}
}

func (c *Config) normalizeAutosave() {
	if c.Autosave.IntervalSeconds == 0 {
		c.Autosave.IntervalSeconds = defaultAutosaveIntervalSec
	}
	if c.Autosave.KeepSnapshots == 0 {
		c.Autosave.KeepSnapshots = defaultAutosaveKeep
	}
}

func (c *Config) normalizeTTS() {
	if c.TTS.RateWPM == 0 {
		c.TTS.RateWPM = defaultTTSRateWPM
	}
	if c.TTS.Parallelism == 0 {
		c.TTS.Parallelism = defaultTTSParallelism
	}
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

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
