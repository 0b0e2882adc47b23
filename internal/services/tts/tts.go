// Package tts synthesizes description audio from text by shelling out to a
// speech engine with an espeak-ng compatible command line.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/services"
)

var commandContext = exec.CommandContext

// Job is one line of text to synthesize into OutputPath.
type Job struct {
	ID         string
	Text       string
	OutputPath string
}

// Client turns text into speech audio files.
type Client interface {
	Generate(ctx context.Context, job Job) error
}

// CLI invokes the configured speech engine binary.
type CLI struct {
	binary string
	voice  string
	rate   int
	logger *slog.Logger
}

// NewCLI builds a client from the tool and voice settings in cfg.
func NewCLI(cfg *config.Config, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CLI{
		binary: cfg.Tools.TTSBinary,
		voice:  cfg.TTS.Voice,
		rate:   cfg.TTS.RateWPM,
		logger: logger.With(logging.String(logging.FieldComponent, "tts")),
	}
}

// Generate synthesizes one job. The output file is written by the engine
// itself; a failed run removes nothing and reports the engine's stderr.
func (c *CLI) Generate(ctx context.Context, job Job) error {
	text := strings.TrimSpace(job.Text)
	if text == "" {
		return services.Wrap(services.ErrInvalidAsset, "tts", "generate", "empty cue text", nil)
	}
	if strings.TrimSpace(job.OutputPath) == "" {
		return services.Wrap(services.ErrInvalidAsset, "tts", "generate", "no output path", nil)
	}

	args := []string{"-w", job.OutputPath, "-s", strconv.Itoa(c.rate)}
	if c.voice != "" {
		args = append(args, "-v", c.voice)
	}
	args = append(args, text)

	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "tts", "generate", "synthesis cancelled", ctx.Err())
		}
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = "no diagnostic output"
		}
		return services.Wrap(services.ErrBackendFailure, "tts", "generate",
			fmt.Sprintf("speech engine failed: %s", detail), err)
	}
	c.logger.Debug("synthesized cue audio",
		logging.String("cue_id", job.ID), logging.String("output", job.OutputPath))
	return nil
}

// Progress reports per-job completion during GenerateAll.
type Progress func(done, total int)

// GenerateAll synthesizes jobs with up to parallelism concurrent engine
// processes. The first failure cancels the remaining jobs.
func GenerateAll(ctx context.Context, client Client, jobs []Job, parallelism int, progress Progress) error {
	if len(jobs) == 0 {
		return nil
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	var (
		mu   sync.Mutex
		done int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	for _, job := range jobs {
		job := job
		group.Go(func() error {
			if err := client.Generate(groupCtx, job); err != nil {
				return fmt.Errorf("cue %s: %w", job.ID, err)
			}
			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(jobs))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "tts", "generate_all", "synthesis cancelled", ctx.Err())
		}
		return err
	}
	return nil
}

var _ Client = (*CLI)(nil)
