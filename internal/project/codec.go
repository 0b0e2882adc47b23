package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"audesc/internal/services"
	"audesc/internal/timeline"
)

type projectDocument struct {
	VideoPath     string        `json:"video_path"`
	VideoDuration float64       `json:"video_duration"`
	Cues          []cueDocument `json:"cues"`
	Output        outputSection `json:"output"`
}

type cueDocument struct {
	ID            string  `json:"id"`
	StartTime     float64 `json:"start_time"`
	AudioPath     string  `json:"audio_path"`
	AudioDuration float64 `json:"audio_duration"`
	Label         string  `json:"label"`
}

type outputSection struct {
	OutputPath          string  `json:"output_path"`
	OriginalVolumeGain  float64 `json:"original_volume_gain"`
	DescriptionVolGain  float64 `json:"description_volume_gain"`
}

// Encode marshals a project snapshot into its JSON document form.
func Encode(project timeline.Project) ([]byte, error) {
	doc := projectDocument{
		Cues: make([]cueDocument, 0, len(project.Cues)),
		Output: outputSection{
			OutputPath:         project.Output.OutputPath,
			OriginalVolumeGain: project.Output.OriginalGain,
			DescriptionVolGain: project.Output.DescriptionGain,
		},
	}
	if project.Video != nil {
		doc.VideoPath = project.Video.Path
		doc.VideoDuration = project.Video.Duration
	}
	for _, cue := range project.Cues {
		doc.Cues = append(doc.Cues, cueDocument{
			ID:            cue.ID,
			StartTime:     cue.Start,
			AudioPath:     cue.Audio.Path,
			AudioDuration: cue.Audio.Duration,
			Label:         cue.Label,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses and validates a JSON project document. Validation covers every
// field; a document that fails any invariant is rejected wholesale so callers
// never observe a partially-loaded project.
func Decode(data []byte) (timeline.Project, error) {
	var doc projectDocument
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return timeline.Project{}, services.Wrap(services.ErrInvalidProject, "project", "decode", "malformed JSON", err)
	}

	project := timeline.Project{
		Output: timeline.OutputSettings{
			OutputPath:      doc.Output.OutputPath,
			OriginalGain:    doc.Output.OriginalVolumeGain,
			DescriptionGain: doc.Output.DescriptionVolGain,
		},
	}

	if project.Output.OriginalGain < 0 || project.Output.DescriptionGain < 0 {
		return timeline.Project{}, invalid("volume gains must not be negative")
	}

	hasVideo := strings.TrimSpace(doc.VideoPath) != ""
	if hasVideo {
		if doc.VideoDuration <= 0 {
			return timeline.Project{}, invalid(fmt.Sprintf("video %q has non-positive duration %v", doc.VideoPath, doc.VideoDuration))
		}
		project.Video = &timeline.VideoAsset{Path: doc.VideoPath, Duration: doc.VideoDuration}
	} else if doc.VideoDuration != 0 {
		return timeline.Project{}, invalid("video_duration set without video_path")
	}

	if len(doc.Cues) > 0 && !hasVideo {
		return timeline.Project{}, invalid("cues present but no video is set")
	}

	seen := make(map[string]struct{}, len(doc.Cues))
	for i, cue := range doc.Cues {
		if strings.TrimSpace(cue.ID) == "" {
			return timeline.Project{}, invalid(fmt.Sprintf("cue %d has no id", i))
		}
		if _, dup := seen[cue.ID]; dup {
			return timeline.Project{}, invalid(fmt.Sprintf("duplicate cue id %q", cue.ID))
		}
		seen[cue.ID] = struct{}{}
		if cue.StartTime < 0 || cue.StartTime > doc.VideoDuration {
			return timeline.Project{}, invalid(fmt.Sprintf("cue %q start %v outside [0, %v]", cue.ID, cue.StartTime, doc.VideoDuration))
		}
		if cue.AudioPath != "" && cue.AudioDuration <= 0 {
			return timeline.Project{}, invalid(fmt.Sprintf("cue %q audio has non-positive duration", cue.ID))
		}
		if cue.AudioPath == "" && cue.AudioDuration != 0 {
			return timeline.Project{}, invalid(fmt.Sprintf("cue %q has audio_duration without audio_path", cue.ID))
		}
		project.Cues = append(project.Cues, timeline.Cue{
			ID:    cue.ID,
			Start: cue.StartTime,
			Audio: timeline.AudioAsset{Path: cue.AudioPath, Duration: cue.AudioDuration},
			Label: cue.Label,
		})
	}

	return project, nil
}

// Save writes the project document atomically: a temp file in the target
// directory followed by a rename.
func Save(path string, project timeline.Project) error {
	data, err := Encode(project)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".audesc-project-*")
	if err != nil {
		return fmt.Errorf("create temp project file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close project file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace project file: %w", err)
	}
	return nil
}

// Load reads and validates a project document from disk.
func Load(path string) (timeline.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return timeline.Project{}, services.Wrap(services.ErrNotFound, "project", "load", path, nil)
		}
		return timeline.Project{}, fmt.Errorf("read project: %w", err)
	}
	return Decode(data)
}

// FileSaver persists snapshots to a fixed path. It satisfies the autosave
// Saver contract.
type FileSaver struct {
	Path string
}

func (s FileSaver) Save(_ context.Context, project timeline.Project) error {
	return Save(s.Path, project)
}

func invalid(message string) error {
	return services.Wrap(services.ErrInvalidProject, "project", "load", message, nil)
}
