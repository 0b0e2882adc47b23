package mixplan

import (
	"fmt"
	"math"

	"audesc/internal/services"
	"audesc/internal/timeline"
)

// MixSegment is a half-open piece [Start, End) of the final timeline with
// fixed gain values for every track. DescriptionGains maps the ids of the
// cues active in the segment to their resolved linear gain.
type MixSegment struct {
	Start            float64
	End              float64
	OriginalGain     float64
	DescriptionGains map[string]float64
}

// Duration returns the segment length in seconds.
func (s MixSegment) Duration() float64 {
	return s.End - s.Start
}

// Active reports whether any description plays during the segment.
func (s MixSegment) Active() bool {
	return len(s.DescriptionGains) > 0
}

// Window bounds a preview render to [Start, End) on the video timeline.
type Window struct {
	Start float64
	End   float64
}

// Length returns the window duration in seconds.
func (w Window) Length() float64 {
	return w.End - w.Start
}

// Plan is the gain-automation program handed to the render backend. Segments
// always partition [Start, End) contiguously with no gaps or overlaps; for a
// full render that range is [0, video duration).
type Plan struct {
	Segments []MixSegment
	Start    float64
	End      float64
}

// Duration returns the planned output length in seconds.
func (p Plan) Duration() float64 {
	return p.End - p.Start
}

// Build converts a project snapshot into a full-timeline mix plan. The
// original track plays at the configured gain, ducked by a fixed attenuation
// wherever a description is active. Description gains are summed per the
// clamp policy: a summed linear gain above DescriptionGainCeiling is limited
// by scaling every active cue uniformly.
func Build(project timeline.Project) (Plan, error) {
	if project.Video == nil || project.Video.Duration <= 0 {
		return Plan{}, services.Wrap(services.ErrInvalidRange, "mixplan", "build", "no video loaded", nil)
	}

	duration := project.Video.Duration
	settings := project.Output
	ducked := settings.OriginalGain * DuckingFactor()

	intervals := Resolve(project.Cues, duration)
	segments := make([]MixSegment, 0, len(intervals)*2+1)
	cursor := 0.0
	for _, interval := range intervals {
		if interval.Start > cursor {
			segments = append(segments, MixSegment{Start: cursor, End: interval.Start, OriginalGain: settings.OriginalGain})
		}
		segments = append(segments, MixSegment{
			Start:            interval.Start,
			End:              interval.End,
			OriginalGain:     ducked,
			DescriptionGains: clampedGains(interval.CueIDs, settings.DescriptionGain),
		})
		cursor = interval.End
	}
	if cursor < duration {
		segments = append(segments, MixSegment{Start: cursor, End: duration, OriginalGain: settings.OriginalGain})
	}

	return Plan{Segments: segments, Start: 0, End: duration}, nil
}

// clampedGains distributes the per-cue description gain, limiting the sum to
// DescriptionGainCeiling by scaling all active cues by the same factor.
func clampedGains(cueIDs []string, gain float64) map[string]float64 {
	gains := make(map[string]float64, len(cueIDs))
	sum := gain * float64(len(cueIDs))
	scale := 1.0
	if sum > DescriptionGainCeiling {
		scale = DescriptionGainCeiling / sum
	}
	for _, id := range cueIDs {
		gains[id] = gain * scale
	}
	return gains
}

// Restrict clips the plan to a preview window. Segments outside the window
// are dropped; segments straddling a boundary are trimmed. The resulting
// segments partition [window.Start, window.End).
func (p Plan) Restrict(window Window) (Plan, error) {
	start := math.Max(window.Start, p.Start)
	end := math.Min(window.End, p.End)
	if start >= end {
		return Plan{}, services.Wrap(services.ErrInvalidRange, "mixplan", "restrict",
			fmt.Sprintf("window [%v, %v) does not intersect the timeline", window.Start, window.End), nil)
	}

	var segments []MixSegment
	for _, segment := range p.Segments {
		if segment.End <= start || segment.Start >= end {
			continue
		}
		clipped := segment
		clipped.Start = math.Max(segment.Start, start)
		clipped.End = math.Min(segment.End, end)
		segments = append(segments, clipped)
	}
	return Plan{Segments: segments, Start: start, End: end}, nil
}

// Coalesce merges adjacent segments with identical gain assignments. The
// partition invariant is preserved; this only shrinks the segment count.
func (p Plan) Coalesce() Plan {
	if len(p.Segments) < 2 {
		return p
	}
	merged := make([]MixSegment, 0, len(p.Segments))
	for _, segment := range p.Segments {
		if n := len(merged); n > 0 && sameGains(merged[n-1], segment) {
			merged[n-1].End = segment.End
			continue
		}
		merged = append(merged, segment)
	}
	return Plan{Segments: merged, Start: p.Start, End: p.End}
}

func sameGains(a, b MixSegment) bool {
	if a.OriginalGain != b.OriginalGain || len(a.DescriptionGains) != len(b.DescriptionGains) {
		return false
	}
	for id, gain := range a.DescriptionGains {
		if other, ok := b.DescriptionGains[id]; !ok || other != gain {
			return false
		}
	}
	return true
}

// Validate checks the partition invariant: contiguous, non-overlapping
// segments spanning exactly [Start, End).
func (p Plan) Validate() error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("mix plan has no segments")
	}
	if p.Segments[0].Start != p.Start {
		return fmt.Errorf("mix plan starts at %v, want %v", p.Segments[0].Start, p.Start)
	}
	for i := 1; i < len(p.Segments); i++ {
		if p.Segments[i].Start != p.Segments[i-1].End {
			return fmt.Errorf("gap or overlap between segments %d and %d", i-1, i)
		}
	}
	if last := p.Segments[len(p.Segments)-1]; last.End != p.End {
		return fmt.Errorf("mix plan ends at %v, want %v", last.End, p.End)
	}
	return nil
}
