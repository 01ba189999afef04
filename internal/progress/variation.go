package progress

import "math/rand"

// Picker supplies randomness for variation selection. Injectable so tests
// can assert exact index choices.
type Picker interface {
	Intn(n int) int
}

// mathPicker uses the locked top-level math/rand source.
type mathPicker struct{}

func (mathPicker) Intn(n int) int { return rand.Intn(n) }

func NewUniformPicker() Picker { return mathPicker{} }
