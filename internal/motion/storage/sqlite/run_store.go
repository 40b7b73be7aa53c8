package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one replay of a frame source through the detector.
type Run struct {
	RunID       string          `json:"run_id"`
	SourcePath  string          `json:"source_path"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	FrameWidth  int             `json:"frame_width"`
	FrameHeight int             `json:"frame_height"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	FrameCount  int             `json:"frame_count"`
	Status      string          `json:"status"`
	Version     string          `json:"version,omitempty"`
}

// RunStore provides persistence for runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert creates run. An empty RunID is replaced by a new UUID, a zero
// StartedAt by the current time and an empty Status by running.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}

	query := `
		INSERT INTO motion_runs (
			run_id, source_path, params_json, frame_width, frame_height,
			started_at, frame_count, status, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		run.RunID,
		run.SourcePath,
		nullString(string(run.ParamsJSON)),
		run.FrameWidth,
		run.FrameHeight,
		run.StartedAt.UnixNano(),
		run.FrameCount,
		run.Status,
		nullString(run.Version),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish records the final frame count and status of a run.
func (s *RunStore) Finish(runID string, frameCount int, status string) error {
	res, err := s.db.Exec(`
		UPDATE motion_runs
		SET finished_at = ?, frame_count = ?, status = ?
		WHERE run_id = ?
	`, time.Now().UnixNano(), frameCount, status, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// Get returns the run with runID.
func (s *RunStore) Get(runID string) (*Run, error) {
	query := `
		SELECT run_id, source_path, params_json, frame_width, frame_height,
		       started_at, finished_at, frame_count, status, version
		FROM motion_runs
		WHERE run_id = ?
	`
	r := &Run{}
	var params, version sql.NullString
	var startedAt int64
	var finishedAt sql.NullInt64
	err := s.db.QueryRow(query, runID).Scan(
		&r.RunID, &r.SourcePath, &params, &r.FrameWidth, &r.FrameHeight,
		&startedAt, &finishedAt, &r.FrameCount, &r.Status, &version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	r.Version = version.String
	r.StartedAt = time.Unix(0, startedAt)
	if finishedAt.Valid {
		t := time.Unix(0, finishedAt.Int64)
		r.FinishedAt = &t
	}
	return r, nil
}

// List returns every run, newest first.
func (s *RunStore) List() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT run_id FROM motion_runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	runs := make([]*Run, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}
