package mixplan

import (
	"sort"

	"audesc/internal/timeline"
)

// ActivityInterval is a half-open span [Start, End) during which the listed
// cues are audible. CueIDs preserve timeline order.
type ActivityInterval struct {
	Start  float64
	End    float64
	CueIDs []string
}

// Span is a plain half-open time range.
type Span struct {
	Start float64
	End   float64
}

// Resolve sweeps the sorted cue sequence and returns the ordered,
// non-overlapping activity intervals covering exactly the spans where at
// least one description is audible. An interval boundary occurs at every cue
// start and every cue end, both clipped to [0, videoDuration). Overlapping
// cues are never truncated; they appear together in the interval's cue set
// and are mixed additively downstream.
func Resolve(cues []timeline.Cue, videoDuration float64) []ActivityInterval {
	type span struct {
		id         string
		start, end float64
		order      int
	}

	spans := make([]span, 0, len(cues))
	boundaries := make([]float64, 0, len(cues)*2)
	for i, cue := range cues {
		start := clamp(cue.Start, 0, videoDuration)
		end := clamp(cue.End(), 0, videoDuration)
		if end <= start {
			continue
		}
		spans = append(spans, span{id: cue.ID, start: start, end: end, order: i})
		boundaries = append(boundaries, start, end)
	}
	if len(spans) == 0 {
		return nil
	}

	sort.Float64s(boundaries)
	boundaries = dedupe(boundaries)

	intervals := make([]ActivityInterval, 0, len(boundaries))
	for i := 0; i < len(boundaries)-1; i++ {
		lo, hi := boundaries[i], boundaries[i+1]
		var active []string
		for _, s := range spans {
			if s.start <= lo && hi <= s.end {
				active = append(active, s.id)
			}
		}
		if len(active) == 0 {
			continue
		}
		intervals = append(intervals, ActivityInterval{Start: lo, End: hi, CueIDs: active})
	}
	return intervals
}

// AudibleSpans merges adjacent activity intervals into the plain spans where
// any description plays, for display purposes.
func AudibleSpans(intervals []ActivityInterval) []Span {
	var spans []Span
	for _, interval := range intervals {
		if n := len(spans); n > 0 && spans[n-1].End == interval.Start {
			spans[n-1].End = interval.End
			continue
		}
		spans = append(spans, Span{Start: interval.Start, End: interval.End})
	}
	return spans
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i > 0 && v == out[len(out)-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
