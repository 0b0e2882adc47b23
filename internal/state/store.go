package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"audesc/internal/config"
	"audesc/internal/logging"
	"audesc/internal/services"
)

// Store persists session bookkeeping and autosave snapshots in a local
// sqlite database under the configured state directory.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Session is a recorded editing session. Temp files registered against a
// session are eligible for cleanup once the session's lock is no longer held.
type Session struct {
	ID        string
	LockPath  string
	StartedAt time.Time
}

// TempFile is a scratch artifact owned by a session.
type TempFile struct {
	SessionID string
	Path      string
	CreatedAt time.Time
}

// Snapshot is one autosaved copy of a project document.
type Snapshot struct {
	ID          int64
	ProjectPath string
	Payload     []byte
	SHA256      string
	CreatedAt   time.Time
}

// Open opens (creating if necessary) the state database for cfg and applies
// pending migrations.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	path := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "state", "open", "create state directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "state", "open", "open state database", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path, logger: logger.With(logging.String(logging.FieldComponent, "state"))}
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
		`PRAGMA busy_timeout=5000`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, services.Wrap(services.ErrBackendFailure, "state", "open", "configure state database", err)
		}
	}
	if err := store.applyMigrations(ctx); err != nil {
		db.Close()
		return nil, services.Wrap(services.ErrBackendFailure, "state", "open", "migrate state database", err)
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RegisterSession records a new session and its lock file.
func (s *Store) RegisterSession(ctx context.Context, id, lockPath string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, lock_path, started_at) VALUES (?, ?, ?)`,
		id, lockPath, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrBackendFailure, "state", "register_session", "insert session", err)
	}
	return nil
}

// EndSession removes a session row along with its registered temp files.
func (s *Store) EndSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return services.Wrap(services.ErrBackendFailure, "state", "end_session", "delete session", err)
	}
	return nil
}

// ListSessions returns every recorded session, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lock_path, started_at FROM sessions ORDER BY started_at`)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "state", "list_sessions", "query sessions", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess    Session
			started string
		)
		if err := rows.Scan(&sess.ID, &sess.LockPath, &started); err != nil {
			return nil, services.Wrap(services.ErrBackendFailure, "state", "list_sessions", "scan session", err)
		}
		sess.StartedAt = parseTimestamp(started)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "state", "list_sessions", "iterate sessions", err)
	}
	return sessions, nil
}

// RegisterTempFile records a scratch file owned by session id.
func (s *Store) RegisterTempFile(ctx context.Context, sessionID, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO temp_files (session_id, path, created_at) VALUES (?, ?, ?)`,
		sessionID, path, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrBackendFailure, "state", "register_temp_file", "insert temp file", err)
	}
	return nil
}

// TempFilesForSession returns the scratch files registered for sessionID.
func (s *Store) TempFilesForSession(ctx context.Context, sessionID string) ([]TempFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, path, created_at FROM temp_files WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "state", "temp_files", "query temp files", err)
	}
	defer rows.Close()

	var files []TempFile
	for rows.Next() {
		var (
			file    TempFile
			created string
		)
		if err := rows.Scan(&file.SessionID, &file.Path, &created); err != nil {
			return nil, services.Wrap(services.ErrBackendFailure, "state", "temp_files", "scan temp file", err)
		}
		file.CreatedAt = parseTimestamp(created)
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "state", "temp_files", "iterate temp files", err)
	}
	return files, nil
}

// SaveSnapshot stores an autosave snapshot of the project at projectPath and
// prunes older snapshots down to keep entries. A keep of zero or less keeps
// everything.
func (s *Store) SaveSnapshot(ctx context.Context, projectPath string, payload []byte, sha string, keep int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO autosave_snapshots (project_path, payload, sha256, created_at) VALUES (?, ?, ?, ?)`,
		projectPath, string(payload), sha, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrBackendFailure, "state", "save_snapshot", "insert snapshot", err)
	}
	if keep > 0 {
		if err := s.pruneSnapshots(ctx, projectPath, keep); err != nil {
			s.logger.Warn("failed to prune autosave snapshots", logging.Error(err))
		}
	}
	return nil
}

// LatestSnapshot returns the newest snapshot for projectPath, or ErrNotFound
// when none has been recorded.
func (s *Store) LatestSnapshot(ctx context.Context, projectPath string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_path, payload, sha256, created_at
         FROM autosave_snapshots WHERE project_path = ? ORDER BY id DESC LIMIT 1`, projectPath)
	var (
		snap    Snapshot
		payload string
		created string
	)
	if err := row.Scan(&snap.ID, &snap.ProjectPath, &payload, &snap.SHA256, &created); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, fmt.Errorf("%w: no autosave snapshot for %s", services.ErrNotFound, projectPath)
		}
		return Snapshot{}, services.Wrap(services.ErrBackendFailure, "state", "latest_snapshot", "scan snapshot", err)
	}
	snap.Payload = []byte(payload)
	snap.CreatedAt = parseTimestamp(created)
	return snap, nil
}

// SnapshotCount reports how many snapshots exist for projectPath.
func (s *Store) SnapshotCount(ctx context.Context, projectPath string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM autosave_snapshots WHERE project_path = ?`, projectPath)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrBackendFailure, "state", "snapshot_count", "count snapshots", err)
	}
	return count, nil
}

func (s *Store) pruneSnapshots(ctx context.Context, projectPath string, keep int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM autosave_snapshots
         WHERE project_path = ?
           AND id NOT IN (
             SELECT id FROM autosave_snapshots WHERE project_path = ? ORDER BY id DESC LIMIT ?
           )`,
		projectPath, projectPath, keep)
	return err
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
