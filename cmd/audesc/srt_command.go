package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/project"
)

func newSRTCommand(ctx *commandContext) *cobra.Command {
	srtCmd := &cobra.Command{
		Use:   "srt",
		Short: "Subtitle file utilities",
	}
	srtCmd.AddCommand(newSRTImportCommand(ctx))
	return srtCmd
}

func newSRTImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <subtitle-file>",
		Short: "Create draft cues from an SRT file",
		Long: "Each subtitle entry becomes a draft cue at the entry's start time, " +
			"carrying the text as its label. Drafts have no audio and block " +
			"rendering until clips are attached, for example with `audesc tts generate`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srtPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			cues, err := project.ReadSRT(srtPath)
			if err != nil {
				return err
			}

			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}

			imported, skipped := 0, 0
			for _, cue := range cues {
				if _, err := model.AddDraftCue(cue.Start, cue.Label); err != nil {
					ctx.log().Warn("skipping subtitle entry",
						logging.Float64("start", cue.Start), logging.Error(err))
					skipped++
					continue
				}
				imported++
			}
			if imported == 0 {
				return fmt.Errorf("no subtitle entries fit the video timeline (%d skipped)", skipped)
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d draft cues from %s\n", imported, srtPath)
			if skipped > 0 {
				fmt.Fprintf(out, "Skipped %d entries outside the video timeline\n", skipped)
			}
			fmt.Fprintf(out, "Drafts pending audio: %d (run `audesc tts generate` or attach clips with `audesc cue edit`)\n",
				model.Snapshot().DraftCueCount())
			return nil
		},
	}
}
