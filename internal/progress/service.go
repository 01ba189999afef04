package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/physika-edu/physika-lms/internal/accessgate"
	"github.com/physika-edu/physika-lms/internal/catalog"
	"github.com/physika-edu/physika-lms/internal/eventlog"
	"github.com/physika-edu/physika-lms/internal/logger"
)

// Service is the assignment progress controller. It keeps no state between
// calls: every operation re-reads the record, re-derives its decision, and
// writes back through one atomic upsert.
type Service struct {
	records Store
	catalog catalog.Store
	gate    *accessgate.Gate
	events  eventlog.Appender
	picker  Picker
	log     *logger.Logger
}

type Option func(*Service)

func WithEvents(a eventlog.Appender) Option { return func(s *Service) { s.events = a } }
func WithPicker(p Picker) Option            { return func(s *Service) { s.picker = p } }
func WithLogger(l *logger.Logger) Option    { return func(s *Service) { s.log = l } }

func NewService(records Store, cat catalog.Store, gate *accessgate.Gate, opts ...Option) *Service {
	s := &Service{
		records: records,
		catalog: cat,
		gate:    gate,
		picker:  NewUniformPicker(),
		log:     logger.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the student's record for the assignment, or nil when the
// student has never touched it.
func (s *Service) Get(ctx context.Context, studentID, assignmentID string) (*Record, error) {
	r, err := s.records.Get(ctx, studentID, assignmentID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RecordAnswerOutcome applies one correctness event and persists the result.
// A correct outcome on a revealed index is dropped: that index is permanently
// disqualified from completion for this attempt.
func (s *Service) RecordAnswerOutcome(ctx context.Context, studentID, assignmentID string, questionIndex int, correct bool, clientIP string) (Record, error) {
	meta, err := s.catalog.GetMeta(ctx, assignmentID)
	if err != nil {
		return Record{}, err
	}
	if err := s.gateWrite(ctx, meta, clientIP); err != nil {
		return Record{}, err
	}
	if err := checkIndex(meta, questionIndex); err != nil {
		return Record{}, err
	}
	rec, err := s.loadOrInit(ctx, studentID, assignmentID)
	if err != nil {
		return Record{}, err
	}
	if correct && !rec.HasRevealed(questionIndex) {
		rec.Completed = addIndex(rec.Completed, questionIndex)
	}
	rec.ActiveIndex = questionIndex
	return s.persist(ctx, meta, rec)
}

// RevealSolution marks the index as revealed. The caller must have collected
// an explicit confirmation first; a reveal is irreversible for the attempt.
func (s *Service) RevealSolution(ctx context.Context, studentID, assignmentID string, questionIndex int, confirmed bool, clientIP string) (Record, error) {
	if !confirmed {
		return Record{}, fmt.Errorf("%w: reveal requires explicit confirmation", ErrInvalidInput)
	}
	meta, err := s.catalog.GetMeta(ctx, assignmentID)
	if err != nil {
		return Record{}, err
	}
	if err := s.gateWrite(ctx, meta, clientIP); err != nil {
		return Record{}, err
	}
	if err := checkIndex(meta, questionIndex); err != nil {
		return Record{}, err
	}
	rec, err := s.loadOrInit(ctx, studentID, assignmentID)
	if err != nil {
		return Record{}, err
	}
	rec.Revealed = addIndex(rec.Revealed, questionIndex)
	rec.ActiveIndex = questionIndex
	out, err := s.persist(ctx, meta, rec)
	if err != nil {
		return Record{}, err
	}
	s.appendEvent(ctx, eventlog.TypeSolutionRevealed, out, questionIndex)
	return out, nil
}

// SetActiveIndex persists the resume position. Same gating rules as any
// other write.
func (s *Service) SetActiveIndex(ctx context.Context, studentID, assignmentID string, index int, clientIP string) (Record, error) {
	meta, err := s.catalog.GetMeta(ctx, assignmentID)
	if err != nil {
		return Record{}, err
	}
	if err := s.gateWrite(ctx, meta, clientIP); err != nil {
		return Record{}, err
	}
	if err := checkIndex(meta, index); err != nil {
		return Record{}, err
	}
	rec, err := s.loadOrInit(ctx, studentID, assignmentID)
	if err != nil {
		return Record{}, err
	}
	rec.ActiveIndex = index
	return s.persist(ctx, meta, rec)
}

// NextVariation draws the next variation uniformly at random from the
// eligible pool and persists it as the active index. On a completed attempt
// the record comes back unchanged (review mode). An empty pool on an
// incomplete attempt is ErrExhaustedVariations, never a silent loop.
func (s *Service) NextVariation(ctx context.Context, studentID, assignmentID string, clientIP string) (Record, error) {
	meta, err := s.catalog.GetMeta(ctx, assignmentID)
	if err != nil {
		return Record{}, err
	}
	if !meta.VariationMode() {
		return Record{}, fmt.Errorf("%w: assignment is not in variation mode", ErrInvalidInput)
	}
	if err := s.gateWrite(ctx, meta, clientIP); err != nil {
		return Record{}, err
	}
	rec, err := s.loadOrInit(ctx, studentID, assignmentID)
	if err != nil {
		return Record{}, err
	}
	if deriveCompleted(meta, rec) {
		if !rec.IsCompleted {
			// stale cache, repair it
			return s.persist(ctx, meta, rec)
		}
		return rec, nil
	}
	eligible := rec.Eligible(meta.QuestionCount)
	if len(eligible) == 0 {
		return Record{}, ErrExhaustedVariations
	}
	rec.ActiveIndex = eligible[s.picker.Intn(len(eligible))]
	return s.persist(ctx, meta, rec)
}

func (s *Service) gateWrite(ctx context.Context, meta catalog.Meta, clientIP string) error {
	if !meta.Published {
		return ErrDraftAssignment
	}
	// homework writes bypass the gate entirely
	if meta.CollectionCategory.Normalize() != catalog.CategoryClasswork {
		return nil
	}
	res, err := s.gate.Check(ctx, meta.ClassroomID, meta.CollectionCategory, clientIP)
	if err != nil {
		return err
	}
	if res.Restricted {
		return &RestrictedError{CurrentIP: res.CurrentIP}
	}
	return nil
}

func (s *Service) loadOrInit(ctx context.Context, studentID, assignmentID string) (Record, error) {
	rec, err := s.records.Get(ctx, studentID, assignmentID)
	if errors.Is(err, ErrNotFound) {
		return Record{StudentID: studentID, AssignmentID: assignmentID}, nil
	}
	return rec, err
}

// persist recomputes the completion flag from the sets (the stored flag is
// only a cache), upserts, and emits a completion event on the transition.
func (s *Service) persist(ctx context.Context, meta catalog.Meta, rec Record) (Record, error) {
	wasDone := rec.IsCompleted
	rec.IsCompleted = deriveCompleted(meta, rec)
	if err := s.records.Upsert(ctx, rec); err != nil {
		return Record{}, err
	}
	if rec.IsCompleted && !wasDone {
		s.appendEvent(ctx, eventlog.TypeAssignmentCompleted, rec, rec.ActiveIndex)
	}
	return rec, nil
}

func deriveCompleted(meta catalog.Meta, rec Record) bool {
	if meta.VariationMode() {
		return len(rec.Completed) >= meta.RequiredVariations
	}
	if meta.QuestionCount == 0 {
		return false
	}
	return rec.Passed(meta.QuestionCount - 1)
}

func checkIndex(meta catalog.Meta, idx int) error {
	if idx < 0 || idx >= meta.QuestionCount {
		return fmt.Errorf("%w: question index %d out of range [0,%d)", ErrInvalidInput, idx, meta.QuestionCount)
	}
	return nil
}

func (s *Service) appendEvent(ctx context.Context, typ string, rec Record, questionIndex int) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(map[string]any{
		"question_index": questionIndex,
		"completed":      len(rec.Completed),
		"revealed":       len(rec.Revealed),
	})
	err := s.events.Append(ctx, eventlog.Event{
		Type:     typ,
		Key:      rec.StudentID + "|" + rec.AssignmentID,
		DataJSON: string(data),
	})
	if err != nil {
		s.log.Warn("event append failed", "type", typ, "assignment", rec.AssignmentID, "err", err)
	}
}
