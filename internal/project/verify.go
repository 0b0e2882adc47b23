package project

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"audesc/internal/services"
	"audesc/internal/timeline"
)

// durationTolerance is the acceptable drift in seconds between a stored asset
// duration and a fresh probe.
const durationTolerance = 0.5

// VerifyAssets re-probes every asset referenced by a loaded project and
// confirms the stored durations still match the files on disk. Probes run in
// parallel; the first failure wins.
func VerifyAssets(ctx context.Context, resolver timeline.AssetResolver, snapshot timeline.Project) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)

	if snapshot.Video != nil {
		video := *snapshot.Video
		group.Go(func() error {
			asset, err := resolver.ResolveVideo(groupCtx, video.Path)
			if err != nil {
				return services.Wrap(services.ErrInvalidAsset, "project", "verify", video.Path, err)
			}
			if math.Abs(asset.Duration-video.Duration) > durationTolerance {
				return services.Wrap(services.ErrInvalidProject, "project", "verify",
					fmt.Sprintf("video %s duration changed from %.2fs to %.2fs", video.Path, video.Duration, asset.Duration), nil)
			}
			return nil
		})
	}

	for _, cue := range snapshot.Cues {
		if cue.Draft() {
			continue
		}
		cue := cue
		group.Go(func() error {
			asset, err := resolver.ResolveAudio(groupCtx, cue.Audio.Path)
			if err != nil {
				return services.Wrap(services.ErrInvalidAsset, "project", "verify", cue.Audio.Path, err)
			}
			if math.Abs(asset.Duration-cue.Audio.Duration) > durationTolerance {
				return services.Wrap(services.ErrInvalidProject, "project", "verify",
					fmt.Sprintf("cue %s audio duration changed from %.2fs to %.2fs", cue.ID, cue.Audio.Duration, asset.Duration), nil)
			}
			return nil
		})
	}

	return group.Wait()
}
