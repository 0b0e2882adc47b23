package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"audesc/internal/logging"
	"audesc/internal/services"
)

// AssetResolver turns a path into a validated media asset. The production
// implementation probes files with ffprobe; tests substitute stubs.
type AssetResolver interface {
	ResolveVideo(ctx context.Context, path string) (VideoAsset, error)
	ResolveAudio(ctx context.Context, path string) (AudioAsset, error)
}

// CueChanges carries the optional fields of an edit operation. Nil fields are
// left untouched.
type CueChanges struct {
	Start     *float64
	AudioPath *string
	Label     *string
}

// Model owns the project timeline and is the only mutable shared state in the
// engine. Every operation validates before applying, so a rejected call leaves
// the project exactly as it was. Concurrent readers (autosave, renderer) take
// Snapshot copies and never observe a half-edited state.
type Model struct {
	mu       sync.RWMutex
	project  Project
	nextSeq  int
	resolver AssetResolver
	logger   *slog.Logger
}

// NewModel constructs an empty timeline model.
func NewModel(resolver AssetResolver, logger *slog.Logger) *Model {
	return &Model{
		project:  Project{Output: DefaultOutputSettings()},
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "timeline"),
	}
}

// Snapshot returns an immutable, independently-owned copy of the project.
func (m *Model) Snapshot() Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.project.Clone()
}

// LoadVideo resolves the path through the asset resolver and installs the
// resulting video asset.
func (m *Model) LoadVideo(ctx context.Context, path string) (VideoAsset, error) {
	if m.resolver == nil {
		return VideoAsset{}, services.Wrap(services.ErrInvalidAsset, "timeline", "set_video", "no asset resolver configured", nil)
	}
	asset, err := m.resolver.ResolveVideo(ctx, path)
	if err != nil {
		return VideoAsset{}, services.Wrap(services.ErrInvalidAsset, "timeline", "set_video", path, err)
	}
	if err := m.SetVideo(asset); err != nil {
		return VideoAsset{}, err
	}
	return asset, nil
}

// SetVideo replaces the project's video wholesale. Installing a video shorter
// than an existing cue's start time is rejected, since it would break the cue
// range invariant.
func (m *Model) SetVideo(asset VideoAsset) error {
	if strings.TrimSpace(asset.Path) == "" || asset.Duration <= 0 {
		return services.Wrap(services.ErrInvalidAsset, "timeline", "set_video", fmt.Sprintf("%q has no positive duration", asset.Path), nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cue := range m.project.Cues {
		if cue.Start > asset.Duration {
			return services.Wrap(services.ErrInvalidRange, "timeline", "set_video",
				fmt.Sprintf("cue %s starts at %s, beyond the new video duration %s", cue.ID, FormatTimecode(cue.Start), FormatTimecode(asset.Duration)), nil)
		}
	}
	m.project.Video = &asset
	m.logger.Info("video set", logging.String("path", asset.Path), logging.Float64("duration", asset.Duration))
	return nil
}

// SetOutputSettings replaces the output settings wholesale.
func (m *Model) SetOutputSettings(settings OutputSettings) error {
	if settings.OriginalGain < 0 || settings.DescriptionGain < 0 {
		return services.Wrap(services.ErrInvalidRange, "timeline", "set_output", "volume gains must not be negative", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.project.Output = settings
	return nil
}

// AddCue validates and inserts a cue with a resolved audio asset, returning
// the new cue id.
func (m *Model) AddCue(ctx context.Context, start float64, audioPath, label string) (string, error) {
	if m.resolver == nil {
		return "", services.Wrap(services.ErrInvalidAsset, "timeline", "add_cue", "no asset resolver configured", nil)
	}
	audio, err := m.resolver.ResolveAudio(ctx, audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrInvalidAsset, "timeline", "add_cue", audioPath, err)
	}
	return m.insertCue(start, audio, label)
}

// AddDraftCue inserts a cue without audio, as produced by SRT import. Drafts
// participate in ordering but block rendering until audio is attached.
func (m *Model) AddDraftCue(start float64, label string) (string, error) {
	return m.insertCue(start, AudioAsset{}, label)
}

func (m *Model) insertCue(start float64, audio AudioAsset, label string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkStartLocked(start); err != nil {
		return "", err
	}

	cue := Cue{
		ID:    uuid.NewString(),
		Start: start,
		Audio: audio,
		Label: strings.TrimSpace(label),
		seq:   m.nextSeq,
	}
	m.nextSeq++
	m.project.Cues = append(m.project.Cues, cue)
	m.sortCuesLocked()
	m.logger.Info("cue added",
		logging.String("cue", cue.ID),
		logging.Float64("start", cue.Start),
		logging.Bool("draft", cue.Draft()))
	return cue.ID, nil
}

// EditCue applies the non-nil changes to an existing cue, with the same
// validation as AddCue.
func (m *Model) EditCue(ctx context.Context, id string, changes CueChanges) error {
	var audio *AudioAsset
	if changes.AudioPath != nil {
		if m.resolver == nil {
			return services.Wrap(services.ErrInvalidAsset, "timeline", "edit_cue", "no asset resolver configured", nil)
		}
		resolved, err := m.resolver.ResolveAudio(ctx, *changes.AudioPath)
		if err != nil {
			return services.Wrap(services.ErrInvalidAsset, "timeline", "edit_cue", *changes.AudioPath, err)
		}
		audio = &resolved
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return services.Wrap(services.ErrNotFound, "timeline", "edit_cue", fmt.Sprintf("cue %s", id), nil)
	}
	if changes.Start != nil {
		if err := m.checkStartLocked(*changes.Start); err != nil {
			return err
		}
	}

	cue := &m.project.Cues[idx]
	if changes.Start != nil {
		cue.Start = *changes.Start
	}
	if audio != nil {
		cue.Audio = *audio
	}
	if changes.Label != nil {
		cue.Label = strings.TrimSpace(*changes.Label)
	}
	m.sortCuesLocked()
	return nil
}

// RemoveCue deletes a cue by id.
func (m *Model) RemoveCue(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfLocked(id)
	if idx < 0 {
		return services.Wrap(services.ErrNotFound, "timeline", "remove_cue", fmt.Sprintf("cue %s", id), nil)
	}
	m.project.Cues = append(m.project.Cues[:idx], m.project.Cues[idx+1:]...)
	m.logger.Info("cue removed", logging.String("cue", id))
	return nil
}

// Replace installs a loaded project wholesale, rebuilding insertion order from
// the cue sequence as given.
func (m *Model) Replace(project Project) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.project = project.Clone()
	for i := range m.project.Cues {
		m.project.Cues[i].seq = i
	}
	m.nextSeq = len(m.project.Cues)
	m.sortCuesLocked()
}

// Reset clears the project back to its empty state.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.project = Project{Output: DefaultOutputSettings()}
	m.nextSeq = 0
	m.logger.Info("project cleared")
}

func (m *Model) checkStartLocked(start float64) error {
	if m.project.Video == nil {
		return services.Wrap(services.ErrInvalidRange, "timeline", "add_cue", "no video loaded", nil)
	}
	if start < 0 || start > m.project.Video.Duration {
		return services.Wrap(services.ErrInvalidRange, "timeline", "add_cue",
			fmt.Sprintf("start %s outside [0, %s]", FormatTimecode(start), FormatTimecode(m.project.Video.Duration)), nil)
	}
	return nil
}

func (m *Model) indexOfLocked(id string) int {
	for i, cue := range m.project.Cues {
		if cue.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) sortCuesLocked() {
	sort.SliceStable(m.project.Cues, func(i, j int) bool {
		a, b := m.project.Cues[i], m.project.Cues[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.seq < b.seq
	})
}

// ValidateRenderable reports whether a snapshot can be rendered: a video must
// be loaded and every cue must carry a resolved audio asset.
func ValidateRenderable(project Project) error {
	if project.Video == nil {
		return services.Wrap(services.ErrInvalidAsset, "timeline", "render", "no video loaded", nil)
	}
	for _, cue := range project.Cues {
		if cue.Draft() {
			return services.Wrap(services.ErrInvalidAsset, "timeline", "render",
				fmt.Sprintf("cue %s at %s has no audio yet", cue.ID, FormatTimecode(cue.Start)), nil)
		}
	}
	return nil
}
