package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/banshee-data/motiondetect/internal/motion/l6objects"
)

// EventRecord is one persisted detector event.
type EventRecord struct {
	EventID     int64  `json:"event_id"`
	RunID       string `json:"run_id"`
	FrameIdx    int    `json:"frame_idx"`
	TimestampNs int64  `json:"timestamp_ns"`
	Type        string `json:"event_type"`
	Text        string `json:"event_text"`
	ObjectID    int    `json:"object_id"`
}

// EventStore provides persistence for per-frame events and the
// trajectories of departed objects.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// InsertFrame stores the events of one frame in a single transaction.
// For every ObjectOut event the reported trajectory of that object is
// written as well, replacing any earlier samples.
func (s *EventStore) InsertFrame(runID string, frameIdx int, ts time.Duration, md *l6objects.Metadata) error {
	if md == nil || len(md.Events) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin frame tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range md.Events {
		_, err := tx.Exec(`
			INSERT INTO motion_events (run_id, frame_idx, timestamp_ns, event_type, event_text, object_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, frameIdx, ts.Nanoseconds(), string(e.Type), e.Text, e.ObjectID)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if e.Type != l6objects.EventObjectOut {
			continue
		}
		for _, o := range md.Objects {
			if o.ID != e.ObjectID {
				continue
			}
			if err := insertTrajectory(tx, runID, o); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit frame tx: %w", err)
	}
	return nil
}

func insertTrajectory(tx *sql.Tx, runID string, o l6objects.ObjectInfo) error {
	_, err := tx.Exec(`
		DELETE FROM motion_trajectories WHERE run_id = ? AND object_id = ? AND seq >= ?
	`, runID, o.ID, len(o.Trajectory))
	if err != nil {
		return fmt.Errorf("trim trajectory: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO motion_trajectories (run_id, object_id, seq, x, y, timestamp_ns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, object_id, seq) DO UPDATE SET
			x = excluded.x, y = excluded.y, timestamp_ns = excluded.timestamp_ns
	`)
	if err != nil {
		return fmt.Errorf("prepare trajectory: %w", err)
	}
	defer stmt.Close()
	for i, p := range o.Trajectory {
		if _, err := stmt.Exec(runID, o.ID, i, p.Point.X, p.Point.Y, p.Time.Nanoseconds()); err != nil {
			return fmt.Errorf("insert trajectory point: %w", err)
		}
	}
	return nil
}

// ListByRun returns the events of a run in frame order.
func (s *EventStore) ListByRun(runID string) ([]*EventRecord, error) {
	query := `
		SELECT event_id, run_id, frame_idx, timestamp_ns, event_type, event_text, object_id
		FROM motion_events
		WHERE run_id = ?
		ORDER BY frame_idx, event_id
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		e := &EventRecord{}
		if err := rows.Scan(&e.EventID, &e.RunID, &e.FrameIdx, &e.TimestampNs, &e.Type, &e.Text, &e.ObjectID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Trajectory returns the stored trajectory of one object of a run.
func (s *EventStore) Trajectory(runID string, objectID int) ([]l6objects.TrajectoryPoint, error) {
	rows, err := s.db.Query(`
		SELECT x, y, timestamp_ns
		FROM motion_trajectories
		WHERE run_id = ? AND object_id = ?
		ORDER BY seq
	`, runID, objectID)
	if err != nil {
		return nil, fmt.Errorf("list trajectory: %w", err)
	}
	defer rows.Close()

	var pts []l6objects.TrajectoryPoint
	for rows.Next() {
		var p l6objects.TrajectoryPoint
		var ns int64
		if err := rows.Scan(&p.Point.X, &p.Point.Y, &ns); err != nil {
			return nil, fmt.Errorf("scan trajectory point: %w", err)
		}
		p.Time = time.Duration(ns)
		pts = append(pts, p)
	}
	return pts, rows.Err()
}
