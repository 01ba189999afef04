package grading

// choiceStrategy: exact match against the stored correct-answer label.
// No partial credit, no case folding.
type choiceStrategy struct{}

func (choiceStrategy) Evaluate(q Q, candidate string) (bool, error) {
	return candidate == q.CorrectLabel, nil
}
