// Package autosave periodically persists the working project so a crash
// loses at most one interval of edits. Saves are skipped when the project
// content has not changed since the last successful save, and failures are
// logged without interrupting editing.
package autosave

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/project"
	"audesc/internal/state"
	"audesc/internal/timeline"
)

// Saver writes a project document to durable storage.
type Saver interface {
	Save(ctx context.Context, proj timeline.Project) error
}

// Coordinator drives periodic autosaves of a live timeline model.
type Coordinator struct {
	snapshot    func() timeline.Project
	saver       Saver
	store       *state.Store
	projectPath string
	interval    time.Duration
	keep        int
	logger      *slog.Logger

	mu       sync.Mutex
	lastHash string
	cancel   context.CancelFunc
	done     chan struct{}
}

// New builds a coordinator that snapshots the project via snapshot and writes
// it through saver. When store is non-nil, each successful save also records a
// snapshot row for history. projectPath identifies the project in the store.
func New(cfg *config.Config, snapshot func() timeline.Project, saver Saver, store *state.Store, projectPath string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		snapshot:    snapshot,
		saver:       saver,
		store:       store,
		projectPath: projectPath,
		interval:    time.Duration(cfg.Autosave.IntervalSeconds) * time.Second,
		keep:        cfg.Autosave.KeepSnapshots,
		logger:      logger.With(logging.String(logging.FieldComponent, "autosave")),
	}
}

// Start launches the autosave loop. It is a no-op if the loop is already
// running.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done
	go c.run(loopCtx, done)
}

// Stop halts the loop and performs one final save so the last edits are
// never older than the stop point.
func (c *Coordinator) Stop(ctx context.Context) {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	if err := c.SaveNow(ctx); err != nil {
		c.logger.Warn("final autosave failed", logging.Error(err))
	}
}

// SaveNow performs one save cycle immediately, skipping the write when the
// project is unchanged since the previous save.
func (c *Coordinator) SaveNow(ctx context.Context) error {
	proj := c.snapshot()
	payload, err := project.Encode(proj)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])

	c.mu.Lock()
	unchanged := hash == c.lastHash
	c.mu.Unlock()
	if unchanged {
		c.logger.Debug("autosave skipped, project unchanged")
		return nil
	}

	if err := c.saver.Save(ctx, proj); err != nil {
		return err
	}
	if c.store != nil {
		if err := c.store.SaveSnapshot(ctx, c.projectPath, payload, hash, c.keep); err != nil {
			c.logger.Warn("failed to record autosave snapshot", logging.Error(err))
		}
	}

	c.mu.Lock()
	c.lastHash = hash
	c.mu.Unlock()
	c.logger.Debug("autosave written", logging.String("sha256", hash[:12]))
	return nil
}

func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.SaveNow(ctx); err != nil {
				c.logger.Warn("autosave failed", logging.Error(err))
			}
		}
	}
}
