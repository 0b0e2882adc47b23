package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audesc/internal/timeline"
)

func newCueCommand(ctx *commandContext) *cobra.Command {
	cueCmd := &cobra.Command{
		Use:   "cue",
		Short: "Manage description cues",
	}

	cueCmd.AddCommand(newCueAddCommand(ctx))
	cueCmd.AddCommand(newCueEditCommand(ctx))
	cueCmd.AddCommand(newCueRemoveCommand(ctx))
	cueCmd.AddCommand(newCueListCommand(ctx))

	return cueCmd
}

func newCueAddCommand(ctx *commandContext) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "add <start> <audio-path>",
		Short: "Place a description clip on the timeline",
		Long:  "Start accepts plain seconds (83.5) or HH:MM:SS timecodes (00:01:23.5).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := timeline.ParseTimecode(args[0])
			if err != nil {
				return err
			}
			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			id, err := model.AddCue(cmd.Context(), start, args[1], label)
			if err != nil {
				return err
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added cue %s at %s\n", id, timeline.FormatTimecode(start))
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Free-form note shown in cue listings")
	return cmd
}

func newCueEditCommand(ctx *commandContext) *cobra.Command {
	var (
		startArg string
		audioArg string
		labelArg string
	)

	cmd := &cobra.Command{
		Use:   "edit <cue-id>",
		Short: "Change a cue's start time, audio clip, or label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes timeline.CueChanges
			if cmd.Flags().Changed("start") {
				start, err := timeline.ParseTimecode(startArg)
				if err != nil {
					return err
				}
				changes.Start = &start
			}
			if cmd.Flags().Changed("audio") {
				changes.AudioPath = &audioArg
			}
			if cmd.Flags().Changed("label") {
				changes.Label = &labelArg
			}
			if changes.Start == nil && changes.AudioPath == nil && changes.Label == nil {
				return fmt.Errorf("nothing to change; pass --start, --audio, or --label")
			}

			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			if err := model.EditCue(cmd.Context(), args[0], changes); err != nil {
				return err
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated cue %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&startArg, "start", "", "New start time (seconds or HH:MM:SS)")
	cmd.Flags().StringVar(&audioArg, "audio", "", "New audio clip path")
	cmd.Flags().StringVar(&labelArg, "label", "", "New label")
	return cmd
}

func newCueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <cue-id>",
		Short: "Delete a cue from the timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			if err := model.RemoveCue(args[0]); err != nil {
				return err
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed cue %s\n", args[0])
			return nil
		},
	}
}

func newCueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cues in timeline order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			snapshot := model.Snapshot()
			if len(snapshot.Cues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cues yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCueTable(snapshot.Cues))
			return nil
		},
	}
}

func renderCueTable(cues []timeline.Cue) string {
	rows := make([][]string, 0, len(cues))
	for _, cue := range cues {
		audio := cue.Audio.Path
		if cue.Draft() {
			audio = "(draft)"
		}
		rows = append(rows, []string{
			cue.ID,
			timeline.FormatTimecode(cue.Start),
			timeline.FormatTimecode(cue.End()),
			audio,
			cue.Label,
		})
	}
	return renderTable(
		[]string{"ID", "Start", "End", "Audio", "Label"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}
