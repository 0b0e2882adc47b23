package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/media/ffprobe"
	"audesc/internal/mixplan"
	"audesc/internal/render"
	"audesc/internal/services/ffmpeg"
	"audesc/internal/session"
	"audesc/internal/timeline"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export the full video with descriptions mixed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}

			opts := render.Options{Mode: render.ModeFull}
			if outputFlag != "" {
				expanded, err := config.ExpandPath(outputFlag)
				if err != nil {
					return err
				}
				opts.OutputPath = expanded
			}

			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			started := time.Now()
			output, err := orch.Render(cmd.Context(), model.Snapshot(), opts, progressPrinter(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nRendered %s in %s\n", output, time.Since(started).Round(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Export target (defaults to the project's output path)")
	return cmd
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		startFlag    string
		durationFlag float64
		cueFlag      string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a short window of the timeline to a scratch file",
		Long: "Renders only the requested window so a cue placement can be judged " +
			"quickly. The scratch file lives in the session directory and is " +
			"cleaned up automatically on a later run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			model, _, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			snapshot := model.Snapshot()

			window, err := resolvePreviewWindow(cmd, snapshot, startFlag, durationFlag, cueFlag, cfg)
			if err != nil {
				return err
			}

			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			if _, err := session.SweepStale(cmd.Context(), store, ctx.log()); err != nil {
				ctx.log().Warn("stale session sweep failed", logging.Error(err))
			}
			sess, err := session.Start(cmd.Context(), cfg, store, ctx.log())
			if err != nil {
				return err
			}
			// The session stays open so the preview file survives this
			// process; the next invocation's sweep reclaims it.
			scratch, err := sess.TempFile(cmd.Context(),
				fmt.Sprintf("preview-%d.mp4", time.Now().UnixNano()))
			if err != nil {
				return err
			}

			orch, err := ctx.newOrchestrator()
			if err != nil {
				return err
			}

			output, err := orch.Render(cmd.Context(), snapshot, render.Options{
				Mode:       render.ModePreview,
				Window:     window,
				OutputPath: scratch,
			}, progressPrinter(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPreview of [%s, %s) written to %s\n",
				timeline.FormatTimecode(window.Start), timeline.FormatTimecode(window.End), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "Window start (seconds or HH:MM:SS)")
	cmd.Flags().Float64Var(&durationFlag, "duration", 0, "Window length in seconds (defaults to render.preview_seconds)")
	cmd.Flags().StringVar(&cueFlag, "cue", "", "Center the window on a cue id instead of --start")
	return cmd
}

// resolvePreviewWindow derives the preview bounds from either an explicit
// start time or a cue id, padded so the surrounding context is audible.
func resolvePreviewWindow(cmd *cobra.Command, snapshot timeline.Project, startFlag string, duration float64, cueID string, cfg *config.Config) (mixplan.Window, error) {
	if snapshot.Video == nil {
		return mixplan.Window{}, fmt.Errorf("project has no video loaded")
	}
	if duration <= 0 {
		duration = float64(cfg.Render.PreviewSeconds)
	}

	var start float64
	switch {
	case cueID != "":
		cue, ok := snapshot.CueByID(cueID)
		if !ok {
			return mixplan.Window{}, fmt.Errorf("cue %s not found", cueID)
		}
		const padding = 2.0
		start = cue.Start - padding
		if span := cue.End() + padding - start; span > duration {
			duration = span
		}
	case startFlag != "":
		parsed, err := timeline.ParseTimecode(startFlag)
		if err != nil {
			return mixplan.Window{}, err
		}
		start = parsed
	default:
		return mixplan.Window{}, fmt.Errorf("pass --start or --cue to choose the preview window")
	}

	if start < 0 {
		start = 0
	}
	end := start + duration
	if end > snapshot.Video.Duration {
		end = snapshot.Video.Duration
	}
	return mixplan.Window{Start: start, End: end}, nil
}

// newOrchestrator wires the render orchestrator over the real ffmpeg and
// ffprobe binaries.
func (c *commandContext) newOrchestrator() (*render.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	backend := ffmpeg.NewCLI(cfg.Tools.FFmpegBinary, c.log())
	prober := render.ProberFunc(func(ctx context.Context, path string) (ffprobe.AssetInfo, error) {
		return ffprobe.Probe(ctx, cfg.Tools.FFprobeBinary, path)
	})
	return render.New(cfg, backend, prober, c.log()), nil
}

func progressPrinter(cmd *cobra.Command) ffmpeg.ProgressFunc {
	out := cmd.OutOrStdout()
	if !shouldColorize(out) {
		return nil
	}
	last := -1
	return func(fraction float64) {
		percent := int(fraction * 100)
		if percent == last {
			return
		}
		last = percent
		fmt.Fprintf(out, "\rRendering... %3d%%", percent)
	}
}
