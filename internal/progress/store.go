package progress

import (
	"context"
	"sync"
)

// Store persists one Record per (student, assignment). Upsert must be a
// single atomic insert-or-update on that composite key, never an existence
// check followed by a conditional write.
type Store interface {
	Get(ctx context.Context, studentID, assignmentID string) (Record, error)
	Upsert(ctx context.Context, r Record) error
	// GetMany returns the student's records for the given assignments, keyed
	// by assignment ID. Missing records are simply absent from the map.
	GetMany(ctx context.Context, studentID string, assignmentIDs []string) (map[string]Record, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record // studentID|assignmentID
}

func NewInMemoryStore() Store {
	return &memoryStore{records: map[string]Record{}}
}

func recordKey(studentID, assignmentID string) string { return studentID + "|" + assignmentID }

func (m *memoryStore) Get(_ context.Context, studentID, assignmentID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[recordKey(studentID, assignmentID)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) Upsert(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey(r.StudentID, r.AssignmentID)] = r
	return nil
}

func (m *memoryStore) GetMany(_ context.Context, studentID string, assignmentIDs []string) (map[string]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Record, len(assignmentIDs))
	for _, id := range assignmentIDs {
		if r, ok := m.records[recordKey(studentID, id)]; ok {
			out[id] = r
		}
	}
	return out, nil
}
