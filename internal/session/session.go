// Package session tracks one editor process's scratch space. Each session
// holds a flock on a lock file inside the state directory; stale sessions
// whose locks are no longer held are swept on the next startup, which removes
// any temp files a crashed process left behind.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/services"
	"audesc/internal/state"
)

// Session is a live editing session with an exclusive lock and a private
// scratch directory for preview renders and other temp artifacts.
type Session struct {
	id     string
	dir    string
	lock   *flock.Flock
	store  *state.Store
	logger *slog.Logger
}

// Start creates a new session directory, acquires its lock, and records the
// session in the state store.
func Start(ctx context.Context, cfg *config.Config, store *state.Store, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "session"))

	id := uuid.NewString()
	dir := filepath.Join(cfg.SessionsDir(), id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "session", "start", "create session directory", err)
	}

	lockPath := filepath.Join(dir, "session.lock")
	lock := flock.New(lockPath)
	held, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "session", "start", "acquire session lock", err)
	}
	if !held {
		return nil, fmt.Errorf("%w: session lock %s already held", services.ErrBackendFailure, lockPath)
	}

	if err := store.RegisterSession(ctx, id, lockPath); err != nil {
		lock.Unlock()
		os.RemoveAll(dir)
		return nil, err
	}

	logger.Debug("session started", logging.String("session_id", id), logging.String("dir", dir))
	return &Session{id: id, dir: dir, lock: lock, store: store, logger: logger}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Dir returns the session scratch directory.
func (s *Session) Dir() string {
	return s.dir
}

// TempFile reserves a path inside the session directory with the given name
// and registers it for cleanup should this process die before Close.
func (s *Session) TempFile(ctx context.Context, name string) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := s.store.RegisterTempFile(ctx, s.id, path); err != nil {
		return "", err
	}
	return path, nil
}

// RegisterTemp records an externally chosen path as owned by this session.
func (s *Session) RegisterTemp(ctx context.Context, path string) error {
	return s.store.RegisterTempFile(ctx, s.id, path)
}

// Close releases the lock and removes the session directory along with every
// registered temp file.
func (s *Session) Close(ctx context.Context) error {
	files, err := s.store.TempFilesForSession(ctx, s.id)
	if err != nil {
		s.logger.Warn("failed to list session temp files", logging.Error(err))
	}
	for _, file := range files {
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove temp file", logging.String("path", file.Path), logging.Error(err))
		}
	}
	if err := s.store.EndSession(ctx, s.id); err != nil {
		return err
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release session lock", logging.Error(err))
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return services.Wrap(services.ErrBackendFailure, "session", "close", "remove session directory", err)
	}
	s.logger.Debug("session closed", logging.String("session_id", s.id))
	return nil
}

// SweepStale finds recorded sessions whose locks are no longer held, removes
// the temp files they registered, and drops them from the store. It returns
// the number of sessions cleaned up.
func SweepStale(ctx context.Context, store *state.Store, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "session"))

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, sess := range sessions {
		lock := flock.New(sess.LockPath)
		held, err := lock.TryLock()
		if err != nil {
			if os.IsNotExist(err) {
				held = true
			} else {
				logger.Warn("failed to probe session lock",
					logging.String("session_id", sess.ID), logging.Error(err))
				continue
			}
		}
		if !held {
			// A live process still owns this session.
			continue
		}
		lock.Unlock()

		files, err := store.TempFilesForSession(ctx, sess.ID)
		if err != nil {
			logger.Warn("failed to list temp files for stale session",
				logging.String("session_id", sess.ID), logging.Error(err))
			continue
		}
		for _, file := range files {
			if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove stale temp file",
					logging.String("path", file.Path), logging.Error(err))
			}
		}
		if dir := filepath.Dir(sess.LockPath); filepath.Base(dir) == sess.ID {
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn("failed to remove stale session directory",
					logging.String("dir", dir), logging.Error(err))
			}
		}
		if err := store.EndSession(ctx, sess.ID); err != nil {
			logger.Warn("failed to drop stale session",
				logging.String("session_id", sess.ID), logging.Error(err))
			continue
		}
		logger.Info("cleaned up stale session",
			logging.String("session_id", sess.ID), logging.Int("temp_files", len(files)))
		swept++
	}
	return swept, nil
}
