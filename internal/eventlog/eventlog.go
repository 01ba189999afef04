package eventlog

import (
	"context"
	"database/sql"
	"time"
)

// Progress milestone event types.
const (
	TypeAssignmentCompleted = "AssignmentCompleted"
	TypeSolutionRevealed    = "SolutionRevealed"
)

type Event struct {
	Offset    int64
	SiteID    string
	Type      string
	Key       string // natural key: studentID|assignmentID
	DataJSON  string
	CreatedAt int64
}

// Appender is what the progress service needs; appends are best-effort and
// must never fail the request that produced them.
type Appender interface {
	Append(ctx context.Context, e Event) error
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}
