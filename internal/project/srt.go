package project

import (
	"strings"

	"github.com/asticode/go-astisub"

	"audesc/internal/services"
)

// SRTCue is a draft cue parsed from a subtitle file: a start time and the
// narration text, with no audio attached yet.
type SRTCue struct {
	Start float64
	Label string
}

// ReadSRT parses an SRT file into draft cues, one per subtitle entry.
// Entries with empty text are skipped.
func ReadSRT(path string) ([]SRTCue, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidAsset, "project", "import_srt", path, err)
	}

	cues := make([]SRTCue, 0, len(subs.Items))
	for _, item := range subs.Items {
		if item == nil {
			continue
		}
		label := strings.TrimSpace(strings.ReplaceAll(item.String(), "\n", " "))
		if label == "" {
			continue
		}
		cues = append(cues, SRTCue{
			Start: item.StartAt.Seconds(),
			Label: label,
		})
	}
	if len(cues) == 0 {
		return nil, services.Wrap(services.ErrInvalidAsset, "project", "import_srt", "no usable entries in "+path, nil)
	}
	return cues, nil
}
