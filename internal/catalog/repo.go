package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Store is the catalog read/write surface. Progress gating always reads
// through it at decision time; nothing here is cached across requests.
type Store interface {
	PutClassroom(ctx context.Context, c Classroom) error
	GetClassroom(ctx context.Context, id string) (Classroom, error)
	SetClassroomIPPolicy(ctx context.Context, id, allowedIP string, enabled bool) error

	PutCollection(ctx context.Context, c Collection) error
	GetCollection(ctx context.Context, id string) (Collection, error)
	// ListStudentCollections returns the classroom's collections whose
	// scheduled date is unset or not after now, ordered by creation.
	ListStudentCollections(ctx context.Context, classroomID string, now int64) ([]Collection, error)

	PutAssignment(ctx context.Context, a Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error) // full, teacher-side
	GetMeta(ctx context.Context, id string) (Meta, error)
	SetPublished(ctx context.Context, id string, published bool) error
	// ListCollectionAssignments returns metas ordered by order_index asc.
	ListCollectionAssignments(ctx context.Context, collectionID string) ([]Meta, error)
}
