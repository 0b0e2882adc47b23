package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/media/ffprobe"
	"audesc/internal/project"
	"audesc/internal/services"
	"audesc/internal/state"
	"audesc/internal/timeline"
)

type commandContext struct {
	configFlag  *string
	projectFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	logger  *slog.Logger
}

func newCommandContext(configFlag, projectFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		projectFlag: projectFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// projectPath resolves the --project flag to an absolute path.
func (c *commandContext) projectPath() (string, error) {
	var raw string
	if c.projectFlag != nil {
		raw = strings.TrimSpace(*c.projectFlag)
	}
	if raw == "" {
		return "", errors.New("a project file is required (use --project)")
	}
	return config.ExpandPath(raw)
}

// loadModel reads the project file into a fresh timeline model backed by the
// ffprobe resolver.
func (c *commandContext) loadModel(ctx context.Context) (*timeline.Model, string, error) {
	path, err := c.projectPath()
	if err != nil {
		return nil, "", err
	}
	proj, err := project.Load(path)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, "", fmt.Errorf("project file %s does not exist (create it with `audesc project new`)", path)
		}
		return nil, "", err
	}
	model := timeline.NewModel(c.resolver(), c.log())
	model.Replace(proj)
	return model, path, nil
}

// saveModel persists the model's current snapshot back to the project file.
func (c *commandContext) saveModel(model *timeline.Model, path string) error {
	return project.Save(path, model.Snapshot())
}

func (c *commandContext) resolver() timeline.AssetResolver {
	cfg, _ := c.ensureConfig()
	binary := "ffprobe"
	if cfg != nil {
		binary = cfg.Tools.FFprobeBinary
	}
	return probeResolver{binary: binary}
}

func (c *commandContext) openStore(ctx context.Context) (*state.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return state.Open(ctx, cfg, c.log())
}

// probeResolver validates media assets by probing them with ffprobe.
type probeResolver struct {
	binary string
}

func (r probeResolver) ResolveVideo(ctx context.Context, path string) (timeline.VideoAsset, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return timeline.VideoAsset{}, err
	}
	info, err := ffprobe.Probe(ctx, r.binary, expanded)
	if err != nil {
		return timeline.VideoAsset{}, err
	}
	if !info.HasVideo {
		return timeline.VideoAsset{}, fmt.Errorf("%s has no video stream", expanded)
	}
	return timeline.VideoAsset{Path: expanded, Duration: info.Duration}, nil
}

func (r probeResolver) ResolveAudio(ctx context.Context, path string) (timeline.AudioAsset, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return timeline.AudioAsset{}, err
	}
	info, err := ffprobe.Probe(ctx, r.binary, expanded)
	if err != nil {
		return timeline.AudioAsset{}, err
	}
	if !info.HasAudio {
		return timeline.AudioAsset{}, fmt.Errorf("%s has no audio stream", expanded)
	}
	return timeline.AudioAsset{Path: expanded, Duration: info.Duration}, nil
}
