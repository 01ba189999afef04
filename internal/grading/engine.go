package grading

import "fmt"

// Question type identifiers. Canonical question order is the JSON array
// order on the assignment row; the evaluator only ever sees one question.
const (
	TypeNumerical      = "numerical"
	TypeMultipleChoice = "multiple_choice"
)

// Q is the minimal view of a question needed for evaluation.
// Keep this in sync with whatever fields the catalog stores.
type Q struct {
	Type             string
	Target           float64 // numerical
	TolerancePercent float64 // numerical, relative to Target
	CorrectLabel     string  // multiple_choice
}

// Strategy decides correctness for a single question type.
type Strategy interface {
	Evaluate(q Q, candidate string) (bool, error)
}

// Evaluator routes by question type to the correct Strategy. Pure: no side
// effects, no persisted state.
type Evaluator interface {
	Evaluate(q Q, candidate string) (bool, error)
}

type defaultEvaluator struct {
	strategies map[string]Strategy
}

func (e *defaultEvaluator) Evaluate(q Q, candidate string) (bool, error) {
	s, ok := e.strategies[q.Type]
	if !ok {
		return false, fmt.Errorf("no strategy for question type %q", q.Type)
	}
	return s.Evaluate(q, candidate)
}

// NewDefaultEvaluator installs the built-in strategies.
func NewDefaultEvaluator() Evaluator {
	return &defaultEvaluator{
		strategies: map[string]Strategy{
			TypeNumerical:      numericStrategy{},
			TypeMultipleChoice: choiceStrategy{},
		},
	}
}
