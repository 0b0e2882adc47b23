package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"audesc/internal/services"
)

func stubCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestMixReportsProgress(t *testing.T) {
	stubCommand(t, "success")

	var fractions []float64
	cli := NewCLI("ffmpeg", nil)
	err := cli.Mix(context.Background(), sampleRequest(), func(fraction float64) {
		fractions = append(fractions, fraction)
	})
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if len(fractions) == 0 {
		t.Fatal("expected progress callbacks")
	}
	// Plan duration is 20s; the helper reports 10s then end.
	if fractions[0] != 0.5 {
		t.Fatalf("expected first fraction 0.5, got %v", fractions[0])
	}
	if last := fractions[len(fractions)-1]; last != 1 {
		t.Fatalf("expected final fraction 1, got %v", last)
	}
}

func TestMixSurfacesFailureDetail(t *testing.T) {
	stubCommand(t, "fail")

	cli := NewCLI("ffmpeg", nil)
	err := cli.Mix(context.Background(), sampleRequest(), nil)
	if !errors.Is(err, services.ErrBackendFailure) {
		t.Fatalf("expected ErrBackendFailure, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "no such filter") {
		t.Fatalf("expected stderr detail in error, got %q", got)
	}
}

func TestMixCancellation(t *testing.T) {
	stubCommand(t, "hang")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	cli := NewCLI("ffmpeg", nil)
	go func() {
		done <- cli.Mix(ctx, sampleRequest(), nil)
	}()
	time.AfterFunc(50*time.Millisecond, cancel)
	if err := <-done; !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		fmt.Println("out_time_us=10000000")
		fmt.Println("progress=continue")
		fmt.Println("out_time_us=20000000")
		fmt.Println("progress=end")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "[AVFilterGraph] no such filter: 'bogus'")
		os.Exit(1)
	case "hang":
		// A bare select{} trips the runtime deadlock detector; sleep instead
		// so the process genuinely hangs until the context kills it.
		time.Sleep(time.Hour)
	}
	os.Exit(0)
}
