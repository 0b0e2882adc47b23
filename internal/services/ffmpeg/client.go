package ffmpeg

import (
	"context"

	"audesc/internal/mixplan"
)

// CueInput names one description clip fed to the mixer and the moment it
// starts on the video timeline.
type CueInput struct {
	ID    string
	Path  string
	Start float64
}

// Request describes one mix job: the source video, the description clips, the
// gain-automation plan, and the encode target.
type Request struct {
	VideoPath        string
	OriginalHasAudio bool
	Cues             []CueInput
	Plan             mixplan.Plan
	// Window bounds a preview to a sub-range of the timeline; nil renders
	// the full program.
	Window       *mixplan.Window
	OutputPath   string
	AudioCodec   string
	AudioBitrate string
}

// ProgressFunc receives the completed fraction of the output, in [0, 1].
type ProgressFunc func(fraction float64)

// Client mixes description audio into a video per a Request.
type Client interface {
	Mix(ctx context.Context, req Request, progress ProgressFunc) error
}
