package timeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"audesc/internal/services"
	"audesc/internal/timeline"
)

type stubResolver struct {
	audioDuration float64
	failAudio     bool
}

func (s stubResolver) ResolveVideo(_ context.Context, path string) (timeline.VideoAsset, error) {
	return timeline.VideoAsset{Path: path, Duration: 60}, nil
}

func (s stubResolver) ResolveAudio(_ context.Context, path string) (timeline.AudioAsset, error) {
	if s.failAudio {
		return timeline.AudioAsset{}, fmt.Errorf("unreadable")
	}
	duration := s.audioDuration
	if duration == 0 {
		duration = 4
	}
	return timeline.AudioAsset{Path: path, Duration: duration}, nil
}

func newModel(t *testing.T) *timeline.Model {
	t.Helper()
	model := timeline.NewModel(stubResolver{}, nil)
	if err := model.SetVideo(timeline.VideoAsset{Path: "/media/movie.mp4", Duration: 30}); err != nil {
		t.Fatalf("SetVideo failed: %v", err)
	}
	return model
}

func TestAddCueKeepsSorted(t *testing.T) {
	model := newModel(t)
	ctx := context.Background()

	for _, start := range []float64{12, 3, 7} {
		if _, err := model.AddCue(ctx, start, "/media/clip.wav", ""); err != nil {
			t.Fatalf("AddCue(%v) failed: %v", start, err)
		}
	}

	snap := model.Snapshot()
	if len(snap.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(snap.Cues))
	}
	for i := 1; i < len(snap.Cues); i++ {
		if snap.Cues[i-1].Start > snap.Cues[i].Start {
			t.Fatalf("cues not sorted: %v then %v", snap.Cues[i-1].Start, snap.Cues[i].Start)
		}
	}
}

func TestAddCueTiesKeepInsertionOrder(t *testing.T) {
	model := newModel(t)
	ctx := context.Background()

	first, err := model.AddCue(ctx, 5, "/media/a.wav", "first")
	if err != nil {
		t.Fatalf("AddCue failed: %v", err)
	}
	second, err := model.AddCue(ctx, 5, "/media/b.wav", "second")
	if err != nil {
		t.Fatalf("AddCue failed: %v", err)
	}

	snap := model.Snapshot()
	if snap.Cues[0].ID != first || snap.Cues[1].ID != second {
		t.Fatalf("expected insertion order preserved for equal start times")
	}
}

func TestAddCueRejectsOutOfRange(t *testing.T) {
	model := newModel(t)
	ctx := context.Background()

	for _, start := range []float64{-1, 30.5} {
		_, err := model.AddCue(ctx, start, "/media/clip.wav", "")
		if !errors.Is(err, services.ErrInvalidRange) {
			t.Fatalf("AddCue(%v) should fail with invalid range, got %v", start, err)
		}
	}
	if len(model.Snapshot().Cues) != 0 {
		t.Fatal("rejected cue must not mutate the project")
	}
}

func TestAddCueRequiresVideo(t *testing.T) {
	model := timeline.NewModel(stubResolver{}, nil)
	_, err := model.AddCue(context.Background(), 1, "/media/clip.wav", "")
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("expected invalid range without video, got %v", err)
	}
}

func TestAddCueRejectsUnresolvableAsset(t *testing.T) {
	model := timeline.NewModel(stubResolver{failAudio: true}, nil)
	if err := model.SetVideo(timeline.VideoAsset{Path: "/media/movie.mp4", Duration: 30}); err != nil {
		t.Fatalf("SetVideo failed: %v", err)
	}
	_, err := model.AddCue(context.Background(), 1, "/media/missing.wav", "")
	if !errors.Is(err, services.ErrInvalidAsset) {
		t.Fatalf("expected invalid asset, got %v", err)
	}
}

func TestEditCueResorts(t *testing.T) {
	model := newModel(t)
	ctx := context.Background()

	early, _ := model.AddCue(ctx, 2, "/media/a.wav", "")
	late, _ := model.AddCue(ctx, 20, "/media/b.wav", "")

	start := 1.0
	if err := model.EditCue(ctx, late, timeline.CueChanges{Start: &start}); err != nil {
		t.Fatalf("EditCue failed: %v", err)
	}

	snap := model.Snapshot()
	if snap.Cues[0].ID != late || snap.Cues[1].ID != early {
		t.Fatal("expected edited cue to move to the front")
	}
}

func TestEditCueNotFound(t *testing.T) {
	model := newModel(t)
	err := model.EditCue(context.Background(), "missing", timeline.CueChanges{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEditCueRejectsBadStartWithoutMutating(t *testing.T) {
	model := newModel(t)
	ctx := context.Background()
	id, _ := model.AddCue(ctx, 5, "/media/a.wav", "keep")

	start := 99.0
	label := "changed"
	err := model.EditCue(ctx, id, timeline.CueChanges{Start: &start, Label: &label})
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}

	cue, _ := model.Snapshot().CueByID(id)
	if cue.Label != "keep" || cue.Start != 5 {
		t.Fatalf("rejected edit must leave cue untouched, got %+v", cue)
	}
}

func TestRemoveCue(t *testing.T) {
	model := newModel(t)
	id, _ := model.AddCue(context.Background(), 5, "/media/a.wav", "")

	if err := model.RemoveCue(id); err != nil {
		t.Fatalf("RemoveCue failed: %v", err)
	}
	if err := model.RemoveCue(id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second removal, got %v", err)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	model := newModel(t)
	id, _ := model.AddCue(context.Background(), 5, "/media/a.wav", "original")

	snap := model.Snapshot()
	snap.Cues[0].Label = "mutated"
	snap.Video.Duration = 1

	cue, _ := model.Snapshot().CueByID(id)
	if cue.Label != "original" {
		t.Fatal("snapshot mutation leaked into the model")
	}
	if model.Snapshot().Video.Duration != 30 {
		t.Fatal("snapshot video mutation leaked into the model")
	}
}

func TestSetVideoRejectsShorterThanCues(t *testing.T) {
	model := newModel(t)
	if _, err := model.AddCue(context.Background(), 25, "/media/a.wav", ""); err != nil {
		t.Fatalf("AddCue failed: %v", err)
	}

	err := model.SetVideo(timeline.VideoAsset{Path: "/media/short.mp4", Duration: 10})
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if model.Snapshot().Video.Duration != 30 {
		t.Fatal("rejected video swap must not mutate the project")
	}
}

func TestSetVideoRejectsBadAsset(t *testing.T) {
	model := timeline.NewModel(stubResolver{}, nil)
	err := model.SetVideo(timeline.VideoAsset{Path: "/media/broken.mp4", Duration: 0})
	if !errors.Is(err, services.ErrInvalidAsset) {
		t.Fatalf("expected invalid asset, got %v", err)
	}
}

func TestSetOutputSettingsRejectsNegativeGain(t *testing.T) {
	model := newModel(t)
	err := model.SetOutputSettings(timeline.OutputSettings{OriginalGain: -0.1, DescriptionGain: 1})
	if !errors.Is(err, services.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
}

func TestValidateRenderableRejectsDrafts(t *testing.T) {
	model := newModel(t)
	if _, err := model.AddDraftCue(5, "a door opens"); err != nil {
		t.Fatalf("AddDraftCue failed: %v", err)
	}

	err := timeline.ValidateRenderable(model.Snapshot())
	if !errors.Is(err, services.ErrInvalidAsset) {
		t.Fatalf("expected invalid asset for draft cue, got %v", err)
	}

	snap := model.Snapshot()
	id := snap.Cues[0].ID
	audio := "/media/tts.wav"
	if err := model.EditCue(context.Background(), id, timeline.CueChanges{AudioPath: &audio}); err != nil {
		t.Fatalf("EditCue failed: %v", err)
	}
	if err := timeline.ValidateRenderable(model.Snapshot()); err != nil {
		t.Fatalf("expected renderable after attaching audio, got %v", err)
	}
}

func TestReplaceRebuildsOrdering(t *testing.T) {
	model := timeline.NewModel(stubResolver{}, nil)
	model.Replace(timeline.Project{
		Video: &timeline.VideoAsset{Path: "/media/movie.mp4", Duration: 30},
		Cues: []timeline.Cue{
			{ID: "b", Start: 9, Audio: timeline.AudioAsset{Path: "/b.wav", Duration: 2}},
			{ID: "a", Start: 3, Audio: timeline.AudioAsset{Path: "/a.wav", Duration: 2}},
		},
		Output: timeline.DefaultOutputSettings(),
	})

	snap := model.Snapshot()
	if snap.Cues[0].ID != "a" || snap.Cues[1].ID != "b" {
		t.Fatalf("expected cues re-sorted on replace, got %v then %v", snap.Cues[0].ID, snap.Cues[1].ID)
	}
}
