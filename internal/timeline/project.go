package timeline

// VideoAsset identifies the video a project describes. Immutable once loaded.
type VideoAsset struct {
	Path     string
	Duration float64
}

// AudioAsset identifies a resolved description clip.
type AudioAsset struct {
	Path     string
	Duration float64
}

// Cue is a user-authored instruction to play a description clip at a given
// video time. A cue without a resolved audio asset is a draft (created by SRT
// import) and blocks rendering until audio is attached.
type Cue struct {
	ID    string
	Start float64
	Audio AudioAsset
	Label string

	// seq preserves insertion order for cues sharing a start time.
	seq int
}

// Draft reports whether the cue still lacks a resolved audio asset.
func (c Cue) Draft() bool {
	return c.Audio.Path == ""
}

// End returns the cue's audible end on the video timeline, unclipped.
func (c Cue) End() float64 {
	return c.Start + c.Audio.Duration
}

// OutputSettings holds the export target and the two volume controls.
// Gains are linear factors; 1.0 leaves the track untouched.
type OutputSettings struct {
	OutputPath      string
	OriginalGain    float64
	DescriptionGain float64
}

// DefaultOutputSettings returns settings with unity gain on both tracks.
func DefaultOutputSettings() OutputSettings {
	return OutputSettings{OriginalGain: 1.0, DescriptionGain: 1.0}
}

// Project aggregates one optional video, the ordered cue sequence, and the
// output settings. It is the unit of persistence and autosave. Snapshots are
// deep copies; holders never share mutable state with the model.
type Project struct {
	Video  *VideoAsset
	Cues   []Cue
	Output OutputSettings
}

// Clone returns an independently-owned copy of the project.
func (p Project) Clone() Project {
	out := Project{Output: p.Output}
	if p.Video != nil {
		video := *p.Video
		out.Video = &video
	}
	if len(p.Cues) > 0 {
		out.Cues = append([]Cue(nil), p.Cues...)
	}
	return out
}

// CueByID returns the cue with the given id, if present.
func (p Project) CueByID(id string) (Cue, bool) {
	for _, cue := range p.Cues {
		if cue.ID == id {
			return cue, true
		}
	}
	return Cue{}, false
}

// DraftCueCount reports how many cues still lack audio.
func (p Project) DraftCueCount() int {
	count := 0
	for _, cue := range p.Cues {
		if cue.Draft() {
			count++
		}
	}
	return count
}
