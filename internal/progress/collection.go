package progress

import (
	"context"

	"github.com/physika-edu/physika-lms/internal/catalog"
)

// AssignmentProgress is one row of a collection summary, in order_index
// order. Unlocked follows lockstep unlocking: an assignment opens only once
// everything before it is complete.
type AssignmentProgress struct {
	AssignmentID string `json:"assignment_id"`
	Title        string `json:"title"`
	OrderIndex   int    `json:"order_index"`
	Started      bool   `json:"started"`
	Completed    bool   `json:"completed"`
	Unlocked     bool   `json:"unlocked"`
	ActiveIndex  int    `json:"active_index"`
}

type Summary struct {
	CollectionID         string               `json:"collection_id"`
	Category             catalog.Category     `json:"category"`
	TotalAssignments     int                  `json:"total_assignments"`
	CompletedCount       int                  `json:"completed_count"`
	ProgressPercent      float64              `json:"progress_percent"`
	FirstIncompleteIndex int                  `json:"first_incomplete_index"` // position in the ordered list
	AllDone              bool                 `json:"all_done"`
	PerAssignment        []AssignmentProgress `json:"per_assignment"`
}

// CollectionSummary composes the student's per-assignment records into the
// collection-level view and the resume position.
func (s *Service) CollectionSummary(ctx context.Context, studentID, collectionID string) (Summary, error) {
	col, err := s.catalog.GetCollection(ctx, collectionID)
	if err != nil {
		return Summary{}, err
	}
	metas, err := s.catalog.ListCollectionAssignments(ctx, collectionID)
	if err != nil {
		return Summary{}, err
	}
	ids := make([]string, len(metas))
	for i, m := range metas {
		ids[i] = m.ID
	}
	records, err := s.records.GetMany(ctx, studentID, ids)
	if err != nil {
		return Summary{}, err
	}
	return BuildSummary(col, metas, records), nil
}

// BuildSummary is the pure aggregation step. records is keyed by assignment
// ID; never-touched assignments are simply absent.
func BuildSummary(col catalog.Collection, metas []catalog.Meta, records map[string]Record) Summary {
	sum := Summary{
		CollectionID:     col.ID,
		Category:         col.Category.Normalize(),
		TotalAssignments: len(metas),
	}

	firstIncomplete := -1
	for i, m := range metas {
		rec, started := records[m.ID]
		ap := AssignmentProgress{
			AssignmentID: m.ID,
			Title:        m.Title,
			OrderIndex:   m.OrderIndex,
			Started:      started,
			Completed:    started && rec.IsCompleted,
			ActiveIndex:  rec.ActiveIndex,
		}
		if ap.Completed {
			sum.CompletedCount++
		} else if firstIncomplete < 0 {
			firstIncomplete = i
		}
		sum.PerAssignment = append(sum.PerAssignment, ap)
	}

	if sum.TotalAssignments > 0 {
		sum.ProgressPercent = 100 * float64(sum.CompletedCount) / float64(sum.TotalAssignments)
	}
	sum.AllDone = sum.TotalAssignments > 0 && sum.CompletedCount == sum.TotalAssignments
	if sum.AllDone || firstIncomplete < 0 {
		// everything complete: position at the last assignment, review mode
		firstIncomplete = sum.TotalAssignments - 1
		if firstIncomplete < 0 {
			firstIncomplete = 0
		}
	}
	sum.FirstIncompleteIndex = firstIncomplete

	for i := range sum.PerAssignment {
		sum.PerAssignment[i].Unlocked = sum.AllDone || i <= sum.FirstIncompleteIndex
	}
	return sum
}

// Nav is the session-scoped forward-navigation cursor. It starts at the
// first incomplete assignment and only ever moves forward; indices beyond it
// stay locked in the UI.
type Nav struct {
	max     int
	allDone bool
}

func NewNav(s Summary) *Nav {
	return &Nav{max: s.FirstIncompleteIndex, allDone: s.AllDone}
}

func (n *Nav) MaxReached() int { return n.max }

// Raise moves the cursor forward. Lower values are ignored; the cursor is
// monotone for the life of the session.
func (n *Nav) Raise(idx int) {
	if idx > n.max {
		n.max = idx
	}
}

func (n *Nav) CanView(idx int) bool {
	if idx < 0 {
		return false
	}
	return n.allDone || idx <= n.max
}
