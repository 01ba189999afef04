package progress

import "sort"

// Record is the single persisted progress row for one (student, assignment)
// attempt. Completed and Revealed hold question indices into the
// assignment's canonical question order. IsCompleted is persisted as a fast
// read cache but recomputed on every write.
type Record struct {
	StudentID    string `json:"student_id"`
	AssignmentID string `json:"assignment_id"`
	Completed    []int  `json:"completed_question_indices"`
	Revealed     []int  `json:"revealed_question_indices"`
	ActiveIndex  int    `json:"active_question_index"`
	IsCompleted  bool   `json:"is_completed"`
	UpdatedAt    int64  `json:"updated_at,omitempty"`
}

func (r Record) HasCompleted(idx int) bool { return containsInt(r.Completed, idx) }
func (r Record) HasRevealed(idx int) bool  { return containsInt(r.Revealed, idx) }

// Passed reports whether the index counts as passed for linear navigation:
// answered correctly or revealed.
func (r Record) Passed(idx int) bool { return r.HasCompleted(idx) || r.HasRevealed(idx) }

// Eligible returns, in ascending order, the variation indices that can still
// contribute toward completion: neither completed nor revealed.
func (r Record) Eligible(questionCount int) []int {
	out := make([]int, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		if !r.HasCompleted(i) && !r.HasRevealed(i) {
			out = append(out, i)
		}
	}
	return out
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// addIndex inserts v keeping the slice sorted and duplicate-free, so repeated
// writes of the same outcome stay idempotent and the JSON stays stable.
func addIndex(xs []int, v int) []int {
	if containsInt(xs, v) {
		return xs
	}
	xs = append(xs, v)
	sort.Ints(xs)
	return xs
}
