package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLStore) PutClassroom(ctx context.Context, c Classroom) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classrooms (id,name,allowed_ip,ip_check_enabled,created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, allowed_ip=EXCLUDED.allowed_ip, ip_check_enabled=EXCLUDED.ip_check_enabled`,
		c.ID, c.Name, nullIfEmpty(c.AllowedIP), b2i(c.IPCheckEnabled), time.Now().Unix())
	return err
}

func (s *SQLStore) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,COALESCE(allowed_ip,''),ip_check_enabled,created_at FROM classrooms WHERE id=$1`, id)
	var c Classroom
	var enabled int
	if err := row.Scan(&c.ID, &c.Name, &c.AllowedIP, &enabled, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Classroom{}, ErrNotFound
		}
		return Classroom{}, err
	}
	c.IPCheckEnabled = enabled != 0
	return c, nil
}

func (s *SQLStore) SetClassroomIPPolicy(ctx context.Context, id, allowedIP string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE classrooms SET allowed_ip=$1, ip_check_enabled=$2 WHERE id=$3`,
		nullIfEmpty(allowedIP), b2i(enabled), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PutCollection(ctx context.Context, c Collection) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (id,classroom_id,title,category,scheduled_date,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, category=EXCLUDED.category, scheduled_date=EXCLUDED.scheduled_date`,
		c.ID, c.ClassroomID, c.Title, string(c.Category.Normalize()), nullIfZero(c.ScheduledDate), time.Now().Unix())
	return err
}

func (s *SQLStore) GetCollection(ctx context.Context, id string) (Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,classroom_id,title,category,COALESCE(scheduled_date,0),created_at FROM collections WHERE id=$1`, id)
	var c Collection
	var cat string
	if err := row.Scan(&c.ID, &c.ClassroomID, &c.Title, &cat, &c.ScheduledDate, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Collection{}, ErrNotFound
		}
		return Collection{}, err
	}
	c.Category = Category(cat).Normalize()
	return c, nil
}

func (s *SQLStore) ListStudentCollections(ctx context.Context, classroomID string, now int64) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,classroom_id,title,category,COALESCE(scheduled_date,0),created_at
		 FROM collections
		 WHERE classroom_id=$1 AND (scheduled_date IS NULL OR scheduled_date<=$2)
		 ORDER BY created_at`, classroomID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Collection
	for rows.Next() {
		var c Collection
		var cat string
		if err := rows.Scan(&c.ID, &c.ClassroomID, &c.Title, &cat, &c.ScheduledDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Category = Category(cat).Normalize()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutAssignment(ctx context.Context, a Assignment) error {
	if a.VariationMode() {
		a.ShowAllQuestions = false // forced off in variation mode
	}
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assignments (id,classroom_id,collection_id,order_index,title,published,required_variations,show_all_questions,questions_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (id) DO UPDATE SET
		   collection_id=EXCLUDED.collection_id, order_index=EXCLUDED.order_index,
		   title=EXCLUDED.title, published=EXCLUDED.published,
		   required_variations=EXCLUDED.required_variations,
		   show_all_questions=EXCLUDED.show_all_questions,
		   questions_json=EXCLUDED.questions_json`,
		a.ID, a.ClassroomID, nullIfEmpty(a.CollectionID), a.OrderIndex, a.Title,
		b2i(a.Published), a.RequiredVariations, b2i(a.ShowAllQuestions), string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,classroom_id,COALESCE(collection_id,''),order_index,title,published,required_variations,show_all_questions,questions_json,created_at
		 FROM assignments WHERE id=$1`, id)
	var a Assignment
	var pub, showAll int
	var qjson string
	if err := row.Scan(&a.ID, &a.ClassroomID, &a.CollectionID, &a.OrderIndex, &a.Title,
		&pub, &a.RequiredVariations, &showAll, &qjson, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, err
	}
	a.Published = pub != 0
	a.ShowAllQuestions = showAll != 0
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (s *SQLStore) GetMeta(ctx context.Context, id string) (Meta, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id,a.classroom_id,COALESCE(a.collection_id,''),a.order_index,a.title,
		        a.published,a.required_variations,a.show_all_questions,a.questions_json,
		        COALESCE(c.category,'')
		 FROM assignments a LEFT JOIN collections c ON c.id=a.collection_id
		 WHERE a.id=$1`, id)
	return scanMeta(row)
}

func (s *SQLStore) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assignments SET published=$1 WHERE id=$2`, b2i(published), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListCollectionAssignments(ctx context.Context, collectionID string) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id,a.classroom_id,COALESCE(a.collection_id,''),a.order_index,a.title,
		        a.published,a.required_variations,a.show_all_questions,a.questions_json,
		        COALESCE(c.category,'')
		 FROM assignments a LEFT JOIN collections c ON c.id=a.collection_id
		 WHERE a.collection_id=$1
		 ORDER BY a.order_index`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Meta
	for rows.Next() {
		m, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeta(row rowScanner) (Meta, error) {
	var m Meta
	var pub, showAll int
	var qjson, cat string
	if err := row.Scan(&m.ID, &m.ClassroomID, &m.CollectionID, &m.OrderIndex, &m.Title,
		&pub, &m.RequiredVariations, &showAll, &qjson, &cat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Meta{}, ErrNotFound
		}
		return Meta{}, err
	}
	m.Published = pub != 0
	m.ShowAllQuestions = showAll != 0
	var qs []Question
	if err := json.Unmarshal([]byte(qjson), &qs); err != nil {
		return Meta{}, err
	}
	m.QuestionCount = len(qs)
	if m.CollectionID == "" {
		m.CollectionCategory = CategoryHomework
	} else {
		m.CollectionCategory = Category(cat).Normalize()
	}
	return m, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
