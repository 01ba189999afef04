package catalog

import (
	"context"
	"sort"
	"sync"
)

// memoryStore mirrors the SQL store for tests and single-process dev runs.
type memoryStore struct {
	mu          sync.RWMutex
	classrooms  map[string]Classroom
	collections map[string]Collection
	assignments map[string]Assignment
}

func NewInMemoryStore() Store {
	return &memoryStore{
		classrooms:  map[string]Classroom{},
		collections: map[string]Collection{},
		assignments: map[string]Assignment{},
	}
}

func (m *memoryStore) PutClassroom(_ context.Context, c Classroom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classrooms[c.ID] = c
	return nil
}

func (m *memoryStore) GetClassroom(_ context.Context, id string) (Classroom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classrooms[id]
	if !ok {
		return Classroom{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) SetClassroomIPPolicy(_ context.Context, id, allowedIP string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classrooms[id]
	if !ok {
		return ErrNotFound
	}
	c.AllowedIP = allowedIP
	c.IPCheckEnabled = enabled
	m.classrooms[id] = c
	return nil
}

func (m *memoryStore) PutCollection(_ context.Context, c Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Category = c.Category.Normalize()
	m.collections[c.ID] = c
	return nil
}

func (m *memoryStore) GetCollection(_ context.Context, id string) (Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[id]
	if !ok {
		return Collection{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) ListStudentCollections(_ context.Context, classroomID string, now int64) ([]Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Collection
	for _, c := range m.collections {
		if c.ClassroomID != classroomID {
			continue
		}
		if c.ScheduledDate > now {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) PutAssignment(_ context.Context, a Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.VariationMode() {
		a.ShowAllQuestions = false
	}
	m.assignments[a.ID] = a
	return nil
}

func (m *memoryStore) GetAssignment(_ context.Context, id string) (Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) GetMeta(ctx context.Context, id string) (Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return Meta{}, ErrNotFound
	}
	return m.metaLocked(a), nil
}

func (m *memoryStore) SetPublished(_ context.Context, id string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return ErrNotFound
	}
	a.Published = published
	m.assignments[id] = a
	return nil
}

func (m *memoryStore) ListCollectionAssignments(_ context.Context, collectionID string) ([]Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Meta
	for _, a := range m.assignments {
		if a.CollectionID == collectionID {
			out = append(out, m.metaLocked(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memoryStore) metaLocked(a Assignment) Meta {
	cat := CategoryHomework
	if a.CollectionID != "" {
		if c, ok := m.collections[a.CollectionID]; ok {
			cat = c.Category.Normalize()
		}
	}
	return Meta{
		ID:                 a.ID,
		ClassroomID:        a.ClassroomID,
		CollectionID:       a.CollectionID,
		OrderIndex:         a.OrderIndex,
		Title:              a.Title,
		Published:          a.Published,
		RequiredVariations: a.RequiredVariations,
		ShowAllQuestions:   a.ShowAllQuestions,
		QuestionCount:      len(a.Questions),
		CollectionCategory: cat,
	}
}
