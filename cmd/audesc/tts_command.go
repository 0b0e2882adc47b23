package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"audesc/internal/autosave"
	"audesc/internal/project"
	"audesc/internal/services/tts"
	"audesc/internal/timeline"
)

func newTTSCommand(ctx *commandContext) *cobra.Command {
	ttsCmd := &cobra.Command{
		Use:   "tts",
		Short: "Synthesize description audio",
	}
	ttsCmd.AddCommand(newTTSGenerateCommand(ctx))
	return ttsCmd
}

func newTTSGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Synthesize audio for every draft cue and attach it",
		Long: "Runs the configured speech engine over each draft cue's label and " +
			"attaches the resulting clips, turning drafts into renderable cues. " +
			"Clips land in a directory next to the project file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			snapshot := model.Snapshot()

			var drafts []timeline.Cue
			for _, cue := range snapshot.Cues {
				if cue.Draft() && strings.TrimSpace(cue.Label) != "" {
					drafts = append(drafts, cue)
				}
			}
			if len(drafts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No draft cues with text to synthesize")
				return nil
			}

			clipDir := strings.TrimSuffix(path, filepath.Ext(path)) + "_tts"
			if err := os.MkdirAll(clipDir, 0o755); err != nil {
				return fmt.Errorf("create clip directory %s: %w", clipDir, err)
			}

			// Autosave keeps partial progress if the process dies while the
			// engine grinds through a long cue list.
			coordinator := autosave.New(cfg, model.Snapshot, project.FileSaver{Path: path}, nil, path, ctx.log())
			coordinator.Start(cmd.Context())
			defer coordinator.Stop(cmd.Context())

			jobs := make([]tts.Job, 0, len(drafts))
			for _, cue := range drafts {
				jobs = append(jobs, tts.Job{
					ID:         cue.ID,
					Text:       cue.Label,
					OutputPath: filepath.Join(clipDir, cue.ID+".wav"),
				})
			}

			out := cmd.OutOrStdout()
			client := tts.NewCLI(cfg, ctx.log())
			err = tts.GenerateAll(cmd.Context(), client, jobs, cfg.TTS.Parallelism, func(done, total int) {
				fmt.Fprintf(out, "Synthesized %d/%d cues\n", done, total)
			})
			if err != nil {
				return err
			}

			for _, job := range jobs {
				audioPath := job.OutputPath
				if err := model.EditCue(cmd.Context(), job.ID, timeline.CueChanges{AudioPath: &audioPath}); err != nil {
					return fmt.Errorf("attach clip to cue %s: %w", job.ID, err)
				}
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "Attached %d clips; project has %d drafts left\n",
				len(jobs), model.Snapshot().DraftCueCount())
			return nil
		},
	}
}
