// Package render drives export jobs: it turns a project snapshot into a mix
// plan, hands the plan to the ffmpeg backend, and guarantees that a failed or
// cancelled full render never leaves a partial file at the export target.
package render

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/media/ffprobe"
	"audesc/internal/mixplan"
	"audesc/internal/naming"
	"audesc/internal/services"
	"audesc/internal/services/ffmpeg"
	"audesc/internal/timeline"
)

// State names the orchestrator's lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Mode selects between a full export and a bounded preview.
type Mode string

const (
	ModeFull    Mode = "full"
	ModePreview Mode = "preview"
)

// Options configures one render job.
type Options struct {
	Mode Mode
	// Window bounds a preview; ignored for full renders.
	Window mixplan.Window
	// OutputPath overrides the project's export target. Previews must set it
	// to a scratch path owned by the session.
	OutputPath string
}

// Prober inspects a media file; used to learn whether the source video
// carries an audio track.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.AssetInfo, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (ffprobe.AssetInfo, error)

func (f ProberFunc) Probe(ctx context.Context, path string) (ffprobe.AssetInfo, error) {
	return f(ctx, path)
}

// Orchestrator runs at most one render at a time.
type Orchestrator struct {
	cfg     *config.Config
	backend ffmpeg.Client
	prober  Prober
	logger  *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// New builds an orchestrator over the given backend.
func New(cfg *config.Config, backend ffmpeg.Client, prober Prober, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:     cfg,
		backend: backend,
		prober:  prober,
		logger:  logger.With(logging.String(logging.FieldComponent, "render")),
		state:   StateIdle,
	}
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cancel aborts the in-flight render, if any. The running Render call
// returns ErrCancelled once the backend stops.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Render executes one job for the snapshot and returns the finished output
// path. Full renders write to a hidden sibling file and only claim the real
// target on success; failures and cancellations remove the scratch file. A
// second Render while one is running fails with ErrRenderBusy, and a failed
// render is never retried.
func (o *Orchestrator) Render(ctx context.Context, snapshot timeline.Project, opts Options, progress ffmpeg.ProgressFunc) (string, error) {
	o.mu.Lock()
	if o.state == StateRendering {
		o.mu.Unlock()
		return "", services.Wrap(services.ErrRenderBusy, "render", "start", "another render is in progress", nil)
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.state = StateRendering
	o.cancel = cancel
	o.mu.Unlock()
	defer cancel()

	output, err := o.run(runCtx, snapshot, opts, progress)

	o.mu.Lock()
	o.cancel = nil
	switch {
	case err == nil:
		o.state = StateCompleted
	case errors.Is(err, services.ErrCancelled):
		o.state = StateCancelled
	default:
		o.state = StateFailed
	}
	o.mu.Unlock()
	return output, err
}

func (o *Orchestrator) run(ctx context.Context, snapshot timeline.Project, opts Options, progress ffmpeg.ProgressFunc) (string, error) {
	if err := timeline.ValidateRenderable(snapshot); err != nil {
		return "", err
	}

	plan, err := mixplan.Build(snapshot)
	if err != nil {
		return "", err
	}
	window := (*mixplan.Window)(nil)
	if opts.Mode == ModePreview {
		restricted, err := plan.Restrict(opts.Window)
		if err != nil {
			return "", err
		}
		plan = restricted
		w := opts.Window
		if w.End > snapshot.Video.Duration {
			w.End = snapshot.Video.Duration
		}
		if w.Start < 0 {
			w.Start = 0
		}
		window = &w
	}
	plan = plan.Coalesce()

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = snapshot.Output.OutputPath
	}
	if outputPath == "" {
		outputPath = naming.DefaultOutputPath(snapshot.Video.Path)
	}
	if opts.Mode == ModePreview && opts.OutputPath == "" {
		return "", services.Wrap(services.ErrInvalidRange, "render", "start", "preview requires a scratch output path", nil)
	}

	hasAudio := true
	if o.prober != nil {
		info, err := o.prober.Probe(ctx, snapshot.Video.Path)
		if err != nil {
			return "", services.Wrap(services.ErrInvalidAsset, "render", "probe", "inspect source video", err)
		}
		hasAudio = info.HasAudio
	}

	req := ffmpeg.Request{
		VideoPath:        snapshot.Video.Path,
		OriginalHasAudio: hasAudio,
		Cues:             planCues(snapshot, plan),
		Plan:             plan,
		Window:           window,
		OutputPath:       outputPath,
		AudioCodec:       o.cfg.Render.AudioCodec,
		AudioBitrate:     o.cfg.Render.AudioBitrate,
	}

	if opts.Mode == ModePreview {
		o.logger.Info("rendering preview",
			logging.Float64("window_start", window.Start),
			logging.Float64("window_end", window.End),
			logging.String("output", outputPath))
		return outputPath, o.backend.Mix(ctx, req, progress)
	}

	scratch := outputPath + ".partial"
	req.OutputPath = scratch
	o.logger.Info("rendering full program",
		logging.Int("cues", len(req.Cues)), logging.String("output", outputPath))
	if err := o.backend.Mix(ctx, req, progress); err != nil {
		if removeErr := os.Remove(scratch); removeErr != nil && !os.IsNotExist(removeErr) {
			o.logger.Warn("failed to remove partial output",
				logging.String("path", scratch), logging.Error(removeErr))
		}
		return "", err
	}
	if err := os.Rename(scratch, outputPath); err != nil {
		os.Remove(scratch)
		return "", services.Wrap(services.ErrBackendFailure, "render", "finalize", "claim output path", err)
	}
	o.logger.Info("render complete", logging.String("output", outputPath))
	return outputPath, nil
}

// planCues selects the non-draft cues that contribute inside the plan range.
func planCues(snapshot timeline.Project, plan mixplan.Plan) []ffmpeg.CueInput {
	inputs := make([]ffmpeg.CueInput, 0, len(snapshot.Cues))
	for _, cue := range snapshot.Cues {
		if cue.Draft() {
			continue
		}
		if cue.End() <= plan.Start || cue.Start >= plan.End {
			continue
		}
		inputs = append(inputs, ffmpeg.CueInput{ID: cue.ID, Path: cue.Audio.Path, Start: cue.Start})
	}
	return inputs
}
