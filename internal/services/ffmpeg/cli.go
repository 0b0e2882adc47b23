// Package ffmpeg shells out to the ffmpeg binary to mix description audio
// into a video according to a mix plan.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"audesc/internal/logging"
	"audesc/internal/services"
)

var commandContext = exec.CommandContext

const stderrTailLines = 30

// CLI invokes the ffmpeg binary.
type CLI struct {
	binary string
	logger *slog.Logger
}

// NewCLI returns a client that shells out to the given ffmpeg binary.
func NewCLI(binary string, logger *slog.Logger) *CLI {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CLI{binary: binary, logger: logger.With(logging.String(logging.FieldComponent, "ffmpeg"))}
}

// BuildArgs assembles the full ffmpeg argument list for a request. Exposed for
// inspection; Mix uses it verbatim.
func BuildArgs(req Request) ([]string, error) {
	if strings.TrimSpace(req.VideoPath) == "" {
		return nil, services.Wrap(services.ErrInvalidAsset, "ffmpeg", "mix", "no video input", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, services.Wrap(services.ErrInvalidRange, "ffmpeg", "mix", "no output path", nil)
	}
	graph, err := buildFilterGraph(req)
	if err != nil {
		return nil, err
	}

	args := []string{"-y", "-hide_banner", "-nostats", "-progress", "pipe:1", "-i", req.VideoPath}
	for _, cue := range req.Cues {
		args = append(args, "-i", cue.Path)
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "0:v", "-c:v", "copy",
		"-map", "[aout]", "-c:a", req.AudioCodec, "-b:a", req.AudioBitrate,
	)
	if req.Window != nil {
		// Output-side seeking keeps the filter expressions on the absolute
		// timeline; ffmpeg discards everything before the window.
		args = append(args,
			"-ss", formatSeconds(req.Window.Start),
			"-t", formatSeconds(req.Window.Length()),
		)
	}
	args = append(args, req.OutputPath)
	return args, nil
}

// Mix runs ffmpeg for the request, streaming progress fractions parsed from
// the machine-readable progress feed. Cancellation kills the process and
// returns ErrCancelled.
func (c *CLI) Mix(ctx context.Context, req Request, progress ProgressFunc) error {
	args, err := BuildArgs(req)
	if err != nil {
		return err
	}

	total := req.Plan.Duration()
	if req.Window != nil {
		total = req.Window.Length()
	}

	cmd := commandContext(ctx, c.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrBackendFailure, "ffmpeg", "mix", "open progress pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return services.Wrap(services.ErrBackendFailure, "ffmpeg", "mix", "open stderr pipe", err)
	}

	c.logger.Debug("starting ffmpeg", logging.String("output", req.OutputPath), logging.Int("inputs", len(req.Cues)+1))
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "ffmpeg", "mix", "render cancelled", ctx.Err())
		}
		return services.Wrap(services.ErrBackendFailure, "ffmpeg", "mix", "start ffmpeg", err)
	}

	tail := make(chan []string, 1)
	go func() {
		tail <- collectTail(stderr, stderrTailLines)
	}()
	consumeProgress(stdout, total, progress)

	stderrTail := <-tail
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "ffmpeg", "mix", "render cancelled", ctx.Err())
		}
		detail := strings.Join(stderrTail, "\n")
		if detail == "" {
			detail = "no diagnostic output"
		}
		return services.Wrap(services.ErrBackendFailure, "ffmpeg", "mix",
			fmt.Sprintf("ffmpeg failed: %s", detail), err)
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

// consumeProgress reads ffmpeg's key=value progress feed and reports the
// completed fraction of total seconds.
func consumeProgress(r io.Reader, total float64, progress ProgressFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "out_time_us":
			if progress == nil || total <= 0 {
				continue
			}
			micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				continue
			}
			fraction := float64(micros) / 1e6 / total
			if fraction < 0 {
				fraction = 0
			}
			if fraction > 1 {
				fraction = 1
			}
			progress(fraction)
		case "progress":
			if strings.TrimSpace(value) == "end" && progress != nil {
				progress(1)
			}
		}
	}
}

// collectTail drains r and keeps the last max lines.
func collectTail(r io.Reader, max int) []string {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > max {
			lines = lines[1:]
		}
	}
	return lines
}

// Binary returns the configured ffmpeg binary.
func (c *CLI) Binary() string {
	return c.binary
}

var _ Client = (*CLI)(nil)
