package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, studentID, assignmentID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT student_id,assignment_id,completed_json,revealed_json,active_index,is_completed,updated_at
		 FROM progress WHERE student_id=$1 AND assignment_id=$2`, studentID, assignmentID)
	return scanRecord(row)
}

// Upsert is one statement keyed on the composite primary key; two
// near-simultaneous writes from the same student cannot race a separate
// existence check.
func (s *SQLStore) Upsert(ctx context.Context, r Record) error {
	cj, err := json.Marshal(emptyAsList(r.Completed))
	if err != nil {
		return err
	}
	rj, err := json.Marshal(emptyAsList(r.Revealed))
	if err != nil {
		return err
	}
	done := 0
	if r.IsCompleted {
		done = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO progress (student_id,assignment_id,completed_json,revealed_json,active_index,is_completed,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (student_id,assignment_id) DO UPDATE SET
		   completed_json=EXCLUDED.completed_json,
		   revealed_json=EXCLUDED.revealed_json,
		   active_index=EXCLUDED.active_index,
		   is_completed=EXCLUDED.is_completed,
		   updated_at=EXCLUDED.updated_at`,
		r.StudentID, r.AssignmentID, string(cj), string(rj), r.ActiveIndex, done, time.Now().Unix())
	return err
}

func (s *SQLStore) GetMany(ctx context.Context, studentID string, assignmentIDs []string) (map[string]Record, error) {
	out := make(map[string]Record, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return out, nil
	}
	ph := make([]string, len(assignmentIDs))
	args := make([]any, 0, len(assignmentIDs)+1)
	args = append(args, studentID)
	for i, id := range assignmentIDs {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id,assignment_id,completed_json,revealed_json,active_index,is_completed,updated_at
		 FROM progress WHERE student_id=$1 AND assignment_id IN (`+strings.Join(ph, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out[r.AssignmentID] = r
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	var cj, rj string
	var done int
	if err := row.Scan(&r.StudentID, &r.AssignmentID, &cj, &rj, &r.ActiveIndex, &done, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	r.IsCompleted = done != 0
	if err := json.Unmarshal([]byte(cj), &r.Completed); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(rj), &r.Revealed); err != nil {
		return Record{}, err
	}
	return r, nil
}

func emptyAsList(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}
