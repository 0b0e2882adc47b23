package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"audesc/internal/mixplan"
	"audesc/internal/timeline"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect the gain-automation plan",
	}
	planCmd.AddCommand(newPlanShowCommand(ctx))
	return planCmd
}

func newPlanShowCommand(ctx *commandContext) *cobra.Command {
	var coalesce bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the mix segments a render would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := ctx.loadModel(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := mixplan.Build(model.Snapshot())
			if err != nil {
				return err
			}
			if coalesce {
				plan = plan.Coalesce()
			}

			rows := make([][]string, 0, len(plan.Segments))
			for _, segment := range plan.Segments {
				rows = append(rows, []string{
					timeline.FormatTimecode(segment.Start),
					timeline.FormatTimecode(segment.End),
					formatGainValue(segment.OriginalGain),
					strconv.Itoa(len(segment.DescriptionGains)),
					describeGains(segment.DescriptionGains),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Start", "End", "Original", "Cues", "Description gains"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d segments covering %s\n",
				len(plan.Segments), timeline.FormatTimecode(plan.Duration()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&coalesce, "coalesce", false, "Merge adjacent segments with identical gains")
	return cmd
}

func formatGainValue(gain float64) string {
	return strconv.FormatFloat(gain, 'f', -1, 64)
}

func describeGains(gains map[string]float64) string {
	if len(gains) == 0 {
		return ""
	}
	ids := make([]string, 0, len(gains))
	for id := range gains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%s", shortID(id), formatGainValue(gains[id])))
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
