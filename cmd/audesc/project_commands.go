package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"audesc/internal/config"
	"audesc/internal/naming"
	"audesc/internal/project"
	"audesc/internal/timeline"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create and inspect description projects",
	}

	projectCmd.AddCommand(newProjectNewCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectSetCommand(ctx))
	projectCmd.AddCommand(newProjectClearCommand(ctx))
	projectCmd.AddCommand(newProjectVerifyCommand(ctx))
	projectCmd.AddCommand(newProjectExportCommand(ctx))
	projectCmd.AddCommand(newProjectImportCommand(ctx))

	return projectCmd
}

func newProjectNewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "new <video-path>",
		Short: "Start a project for a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.projectPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("project file already exists at %s", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check project path: %w", err)
			}

			model := timeline.NewModel(ctx.resolver(), ctx.log())
			video, err := model.LoadVideo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			settings := timeline.DefaultOutputSettings()
			settings.OutputPath = naming.DefaultOutputPath(video.Path)
			if err := model.SetOutputSettings(settings); err != nil {
				return err
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s\n", path)
			fmt.Fprintf(out, "Video: %s (%s)\n", naming.DisplayTitle(video.Path), timeline.FormatTimecode(video.Duration))
			return nil
		},
	}
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the project and its cue timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			snapshot := model.Snapshot()

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Project", path},
			}
			if snapshot.Video != nil {
				rows = append(rows,
					[]string{"Video", snapshot.Video.Path},
					[]string{"Duration", timeline.FormatTimecode(snapshot.Video.Duration)},
				)
			} else {
				rows = append(rows, []string{"Video", "(none)"})
			}
			rows = append(rows,
				[]string{"Output", snapshot.Output.OutputPath},
				[]string{"Original gain", formatGainValue(snapshot.Output.OriginalGain)},
				[]string{"Description gain", formatGainValue(snapshot.Output.DescriptionGain)},
				[]string{"Cues", strconv.Itoa(len(snapshot.Cues))},
				[]string{"Drafts", strconv.Itoa(snapshot.DraftCueCount())},
			)
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))

			if len(snapshot.Cues) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderCueTable(snapshot.Cues))
			}
			return nil
		},
	}
}

func newProjectSetCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath      string
		originalGain    float64
		descriptionGain float64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change output path and volume gains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			settings := model.Snapshot().Output
			if cmd.Flags().Changed("output") {
				expanded, err := config.ExpandPath(outputPath)
				if err != nil {
					return err
				}
				settings.OutputPath = expanded
			}
			if cmd.Flags().Changed("original-gain") {
				settings.OriginalGain = originalGain
			}
			if cmd.Flags().Changed("description-gain") {
				settings.DescriptionGain = descriptionGain
			}
			if err := model.SetOutputSettings(settings); err != nil {
				return err
			}
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated output settings")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Export target path")
	cmd.Flags().Float64Var(&originalGain, "original-gain", 1.0, "Linear gain for the original audio track")
	cmd.Flags().Float64Var(&descriptionGain, "description-gain", 1.0, "Linear gain for description clips")
	return cmd
}

func newProjectClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cue and reset the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("project clear discards all cues; re-run with --force to confirm")
			}
			model, path, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			model.Reset()
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm discarding all project contents")
	return cmd
}

func newProjectExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dest-path>",
		Short: "Write a copy of the project file to another location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			dest, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if err := project.Save(dest, model.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported project to %s\n", dest)
			return nil
		},
	}
}

func newProjectImportCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <source-path>",
		Short: "Load a project file and adopt it as the current project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.projectPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("project file already exists at %s; re-run with --force to replace it", path)
			} else if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("check project path: %w", err)
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			imported, err := project.Load(source)
			if err != nil {
				return err
			}
			model := timeline.NewModel(ctx.resolver(), ctx.log())
			model.Replace(imported)
			if err := ctx.saveModel(model, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported project from %s (%d cues)\n", source, len(imported.Cues))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace the project file if it already exists")
	return cmd
}

func newProjectVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-probe every referenced media file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			if err := project.VerifyAssets(cmd.Context(), ctx.resolver(), model.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All referenced assets are present and match their recorded durations")
			return nil
		},
	}
}
