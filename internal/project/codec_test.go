package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"audesc/internal/project"
	"audesc/internal/services"
	"audesc/internal/timeline"
)

func sampleProject() timeline.Project {
	return timeline.Project{
		Video: &timeline.VideoAsset{Path: "/media/movie.mp4", Duration: 120},
		Cues: []timeline.Cue{
			{ID: "c1", Start: 5, Audio: timeline.AudioAsset{Path: "/media/a.wav", Duration: 4}, Label: "a door opens"},
			{ID: "c2", Start: 40.25, Audio: timeline.AudioAsset{Path: "/media/b.wav", Duration: 3.5}},
			{ID: "c3", Start: 80, Label: "draft narration"},
		},
		Output: timeline.OutputSettings{OutputPath: "/media/out.mp4", OriginalGain: 0.6, DescriptionGain: 1.5},
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleProject()

	data, err := project.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := project.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "movie.audesc.json")
	original := sampleProject()

	if err := project.Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(original, loaded) {
		t.Fatal("save/load round-trip mismatch")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := project.Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"malformed json":         `{"video_path": `,
		"unknown field":          `{"video_path":"","video_duration":0,"cues":[],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1},"extra":1}`,
		"negative gain":          `{"video_path":"","video_duration":0,"cues":[],"output":{"output_path":"","original_volume_gain":-1,"description_volume_gain":1}}`,
		"zero video duration":    `{"video_path":"/v.mp4","video_duration":0,"cues":[],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
		"duration without video": `{"video_path":"","video_duration":9,"cues":[],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
		"cues without video":     `{"video_path":"","video_duration":0,"cues":[{"id":"c","start_time":1,"audio_path":"/a.wav","audio_duration":2,"label":""}],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
		"cue without id":         `{"video_path":"/v.mp4","video_duration":60,"cues":[{"id":"","start_time":1,"audio_path":"/a.wav","audio_duration":2,"label":""}],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
		"duplicate cue id":       `{"video_path":"/v.mp4","video_duration":60,"cues":[{"id":"c","start_time":1,"audio_path":"/a.wav","audio_duration":2,"label":""},{"id":"c","start_time":2,"audio_path":"/b.wav","audio_duration":2,"label":""}],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
		"cue start out of range": `{"video_path":"/v.mp4","video_duration":60,"cues":[{"id":"c","start_time":61,"audio_path":"/a.wav","audio_duration":2,"label":""}],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
		"zero audio duration":    `{"video_path":"/v.mp4","video_duration":60,"cues":[{"id":"c","start_time":1,"audio_path":"/a.wav","audio_duration":0,"label":""}],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := project.Decode([]byte(doc))
			if err == nil {
				t.Fatal("expected decode to fail")
			}
			if name != "malformed json" && !errors.Is(err, services.ErrInvalidProject) {
				t.Fatalf("expected invalid project, got %v", err)
			}
		})
	}
}

func TestDecodeAcceptsDraftCues(t *testing.T) {
	doc := `{"video_path":"/v.mp4","video_duration":60,"cues":[{"id":"c","start_time":1,"audio_path":"","audio_duration":0,"label":"later"}],"output":{"output_path":"","original_volume_gain":1,"description_volume_gain":1}}`
	decoded, err := project.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded.Cues) != 1 || !decoded.Cues[0].Draft() {
		t.Fatalf("expected one draft cue, got %+v", decoded.Cues)
	}
}

func TestSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	if err := project.Save(path, sampleProject()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the project file, found %d entries", len(entries))
	}
}
