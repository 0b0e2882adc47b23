package ffprobe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "4.5"},
			{CodecType: "audio", Duration: "6.25"},
		},
		Format: Format{Duration: "bad"},
	}
	if result.DurationSeconds() != 6.25 {
		t.Fatalf("expected longest stream duration, got %v", result.DurationSeconds())
	}
}

func TestInspectRequiresPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestProbeParsesHelperOutput(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	t.Cleanup(func() { commandContext = original })

	info, err := Probe(context.Background(), "ffprobe", "/media/clip.wav")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Duration != 4.25 {
		t.Fatalf("unexpected duration %v", info.Duration)
	}
	if !info.HasAudio || info.HasVideo {
		t.Fatalf("unexpected stream flags %+v", info)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Print(`{"streams":[{"codec_type":"audio","duration":"4.25"}],"format":{"duration":"4.25"}}`)
	os.Exit(0)
}
