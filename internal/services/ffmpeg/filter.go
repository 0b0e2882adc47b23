package ffmpeg

import (
	"fmt"
	"math"
	"strings"

	"audesc/internal/mixplan"
	"audesc/internal/services"
)

// buildFilterGraph assembles the filter_complex program for a request. The
// original track and every delayed description clip run through a volume
// filter whose expression evaluates the plan's piecewise gains against the
// absolute output time, then everything is summed without renormalization so
// the planned gains survive the mix.
func buildFilterGraph(req Request) (string, error) {
	if err := req.Plan.Validate(); err != nil {
		return "", services.Wrap(services.ErrInvalidRange, "ffmpeg", "filter", "mix plan is not a partition", err)
	}

	var graph strings.Builder
	if req.OriginalHasAudio {
		fmt.Fprintf(&graph, "[0:a]volume='%s':eval=frame[base]", originalVolumeExpr(req.Plan))
	} else {
		fmt.Fprintf(&graph, "anullsrc=channel_layout=stereo:sample_rate=48000,atrim=end=%s[base]", formatSeconds(req.Plan.End))
	}

	labels := []string{"[base]"}
	for i, cue := range req.Cues {
		expr := cueVolumeExpr(req.Plan, cue.ID)
		if expr == "" {
			// Cue contributes nothing inside the planned range.
			continue
		}
		label := fmt.Sprintf("[d%d]", i)
		fmt.Fprintf(&graph, ";[%d:a]adelay=%d:all=1,volume='%s':eval=frame%s",
			i+1, int64(math.Round(cue.Start*1000)), expr, label)
		labels = append(labels, label)
	}

	if len(labels) == 1 {
		graph.WriteString(";[base]anull[aout]")
		return graph.String(), nil
	}
	fmt.Fprintf(&graph, ";%samix=inputs=%d:duration=first:normalize=0[aout]",
		strings.Join(labels, ""), len(labels))
	return graph.String(), nil
}

// originalVolumeExpr renders the original track's gain automation as a sum of
// between() terms, one per plan segment.
func originalVolumeExpr(plan mixplan.Plan) string {
	terms := make([]string, 0, len(plan.Segments))
	for _, segment := range plan.Segments {
		terms = append(terms, gainTerm(segment.OriginalGain, segment.Start, segment.End))
	}
	return strings.Join(terms, "+")
}

// cueVolumeExpr renders the gain automation for one cue: its clamped gain in
// every segment it is active in, zero elsewhere. Returns "" when the cue is
// silent across the whole plan.
func cueVolumeExpr(plan mixplan.Plan, cueID string) string {
	var terms []string
	for _, segment := range plan.Segments {
		gain, ok := segment.DescriptionGains[cueID]
		if !ok {
			continue
		}
		terms = append(terms, gainTerm(gain, segment.Start, segment.End))
	}
	return strings.Join(terms, "+")
}

func gainTerm(gain, start, end float64) string {
	return fmt.Sprintf("%s*between(t,%s,%s)",
		formatGain(gain), formatSeconds(start), formatSeconds(end))
}

func formatGain(gain float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.9f", gain), "0"), ".")
}

func formatSeconds(seconds float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", seconds), "0"), ".")
}
