package project_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"audesc/internal/project"
	"audesc/internal/services"
	"audesc/internal/timeline"
)

type verifyResolver struct {
	videoDuration float64
	audioDuration float64
	failPaths     map[string]bool
}

func (r verifyResolver) ResolveVideo(_ context.Context, path string) (timeline.VideoAsset, error) {
	if r.failPaths[path] {
		return timeline.VideoAsset{}, fmt.Errorf("unreadable")
	}
	return timeline.VideoAsset{Path: path, Duration: r.videoDuration}, nil
}

func (r verifyResolver) ResolveAudio(_ context.Context, path string) (timeline.AudioAsset, error) {
	if r.failPaths[path] {
		return timeline.AudioAsset{}, fmt.Errorf("unreadable")
	}
	return timeline.AudioAsset{Path: path, Duration: r.audioDuration}, nil
}

func TestVerifyAssetsAccepts(t *testing.T) {
	snapshot := sampleProject()
	resolver := verifyResolver{videoDuration: 120, audioDuration: 4}
	snapshot.Cues = snapshot.Cues[:1] // single cue matching the audio duration

	if err := project.VerifyAssets(context.Background(), resolver, snapshot); err != nil {
		t.Fatalf("VerifyAssets failed: %v", err)
	}
}

func TestVerifyAssetsSkipsDrafts(t *testing.T) {
	snapshot := timeline.Project{
		Video: &timeline.VideoAsset{Path: "/media/movie.mp4", Duration: 120},
		Cues:  []timeline.Cue{{ID: "draft", Start: 10, Label: "pending"}},
	}
	resolver := verifyResolver{videoDuration: 120, failPaths: map[string]bool{"": true}}

	if err := project.VerifyAssets(context.Background(), resolver, snapshot); err != nil {
		t.Fatalf("draft cues must not be probed: %v", err)
	}
}

func TestVerifyAssetsReportsDrift(t *testing.T) {
	snapshot := sampleProject()
	snapshot.Cues = snapshot.Cues[:1]
	resolver := verifyResolver{videoDuration: 120, audioDuration: 9}

	err := project.VerifyAssets(context.Background(), resolver, snapshot)
	if !errors.Is(err, services.ErrInvalidProject) {
		t.Fatalf("expected invalid project on duration drift, got %v", err)
	}
}

func TestVerifyAssetsReportsUnreadable(t *testing.T) {
	snapshot := sampleProject()
	snapshot.Cues = snapshot.Cues[:1]
	resolver := verifyResolver{videoDuration: 120, audioDuration: 4, failPaths: map[string]bool{"/media/a.wav": true}}

	err := project.VerifyAssets(context.Background(), resolver, snapshot)
	if !errors.Is(err, services.ErrInvalidAsset) {
		t.Fatalf("expected invalid asset, got %v", err)
	}
}
