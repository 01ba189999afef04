package progress

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/physika-edu/physika-lms/internal/accessgate"
	"github.com/physika-edu/physika-lms/internal/catalog"
)

type staticResolver struct{ ip string }

func (s staticResolver) Resolve(context.Context, string) string { return s.ip }

// seqPicker replays a fixed sequence of picks.
type seqPicker struct {
	picks []int
	i     int
}

func (p *seqPicker) Intn(n int) int {
	if p.i >= len(p.picks) {
		return 0
	}
	v := p.picks[p.i] % n
	p.i++
	return v
}

type fixture struct {
	svc     *Service
	catalog catalog.Store
	records Store
}

func questions(n int) []catalog.Question {
	qs := make([]catalog.Question, n)
	for i := range qs {
		qs[i] = catalog.Question{Type: "numerical", Target: float64(i), TolerancePercent: 5}
	}
	return qs
}

func newFixture(t *testing.T, currentIP string, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	cat := catalog.NewInMemoryStore()

	if err := cat.PutClassroom(ctx, catalog.Classroom{
		ID: "room", Name: "Mechanics", AllowedIP: "1.2.3.4", IPCheckEnabled: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := cat.PutCollection(ctx, catalog.Collection{
		ID: "cw", ClassroomID: "room", Title: "Classwork 1", Category: catalog.CategoryClasswork,
	}); err != nil {
		t.Fatal(err)
	}
	if err := cat.PutCollection(ctx, catalog.Collection{
		ID: "hw", ClassroomID: "room", Title: "Homework 1", Category: catalog.CategoryHomework,
	}); err != nil {
		t.Fatal(err)
	}

	put := func(a catalog.Assignment) {
		if err := cat.PutAssignment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	// linear homework, 3 questions
	put(catalog.Assignment{ID: "lin", ClassroomID: "room", CollectionID: "hw", Title: "Kinematics",
		Published: true, Questions: questions(3)})
	// variation homework, N=5 K=2
	put(catalog.Assignment{ID: "var", ClassroomID: "room", CollectionID: "hw", Title: "Projectiles",
		Published: true, RequiredVariations: 2, Questions: questions(5)})
	// classwork assignment behind the IP gate
	put(catalog.Assignment{ID: "gated", ClassroomID: "room", CollectionID: "cw", Title: "Lab quiz",
		Published: true, Questions: questions(2)})
	// unpublished draft
	put(catalog.Assignment{ID: "draft", ClassroomID: "room", CollectionID: "hw", Title: "Draft",
		Published: false, Questions: questions(2)})

	records := NewInMemoryStore()
	gate := accessgate.New(cat, staticResolver{currentIP})
	return &fixture{
		svc:     NewService(records, cat, gate, opts...),
		catalog: cat,
		records: records,
	}
}

func TestGetReturnsNilForUntouchedAssignment(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	rec, err := f.svc.Get(context.Background(), "amy", "lin")
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestDraftAssignmentRejectsAllWrites(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	if _, err := f.svc.RecordAnswerOutcome(ctx, "amy", "draft", 0, true, ""); !errors.Is(err, ErrDraftAssignment) {
		t.Errorf("RecordAnswerOutcome err = %v, want ErrDraftAssignment", err)
	}
	if _, err := f.svc.RevealSolution(ctx, "amy", "draft", 0, true, ""); !errors.Is(err, ErrDraftAssignment) {
		t.Errorf("RevealSolution err = %v, want ErrDraftAssignment", err)
	}
	if _, err := f.svc.SetActiveIndex(ctx, "amy", "draft", 1, ""); !errors.Is(err, ErrDraftAssignment) {
		t.Errorf("SetActiveIndex err = %v, want ErrDraftAssignment", err)
	}
	if rec, _ := f.svc.Get(ctx, "amy", "draft"); rec != nil {
		t.Error("no record should have been written for a draft assignment")
	}
}

func TestCorrectOutcomeIsIdempotent(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	r1, err := f.svc.RecordAnswerOutcome(ctx, "amy", "lin", 0, true, "")
	if err != nil {
		t.Fatal(err)
	}
	r2, err := f.svc.RecordAnswerOutcome(ctx, "amy", "lin", 0, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r1.Completed, []int{0}) || !reflect.DeepEqual(r2.Completed, []int{0}) {
		t.Errorf("completed = %v then %v, want [0] both times", r1.Completed, r2.Completed)
	}
}

func TestLinearCompletionRequiresLastIndex(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	rec, _ := f.svc.RecordAnswerOutcome(ctx, "amy", "lin", 0, true, "")
	if rec.IsCompleted {
		t.Error("completing question 0 of 3 must not complete the assignment")
	}
	rec, _ = f.svc.RecordAnswerOutcome(ctx, "amy", "lin", 1, true, "")
	if rec.IsCompleted {
		t.Error("question 1 of 3 must not complete the assignment")
	}
	rec, err := f.svc.RecordAnswerOutcome(ctx, "amy", "lin", 2, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.IsCompleted {
		t.Error("passing the last question must complete a linear assignment")
	}
}

func TestLinearCompletionViaRevealOfLastQuestion(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	rec, err := f.svc.RevealSolution(ctx, "bob", "lin", 2, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.IsCompleted {
		t.Error("revealing the last question must complete a linear assignment")
	}
	if len(rec.Completed) != 0 {
		t.Errorf("reveal must not touch the completed set, got %v", rec.Completed)
	}
}

func TestVariationScenario(t *testing.T) {
	// N=5, K=2: answer 2, replay 2, reveal 4, answer 1 -> complete, eligible {0,3}.
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	rec, err := f.svc.RecordAnswerOutcome(ctx, "amy", "var", 2, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.Completed, []int{2}) || rec.IsCompleted {
		t.Fatalf("after first pass: completed=%v done=%v", rec.Completed, rec.IsCompleted)
	}

	rec, _ = f.svc.RecordAnswerOutcome(ctx, "amy", "var", 2, true, "")
	if !reflect.DeepEqual(rec.Completed, []int{2}) {
		t.Fatalf("replaying the same variation must not duplicate: %v", rec.Completed)
	}

	rec, err = f.svc.RevealSolution(ctx, "amy", "var", 4, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.Revealed, []int{4}) || rec.IsCompleted {
		t.Fatalf("after reveal: revealed=%v done=%v", rec.Revealed, rec.IsCompleted)
	}

	rec, err = f.svc.RecordAnswerOutcome(ctx, "amy", "var", 1, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.Completed, []int{1, 2}) {
		t.Fatalf("completed = %v, want [1 2]", rec.Completed)
	}
	if !rec.IsCompleted {
		t.Error("two passes must complete a K=2 assignment")
	}
	if got := rec.Eligible(5); !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("eligible = %v, want [0 3]", got)
	}
}

func TestRevealedIndexIsDisqualified(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	rec, err := f.svc.RevealSolution(ctx, "amy", "var", 3, true, "")
	if err != nil {
		t.Fatal(err)
	}
	before := len(rec.Completed)

	rec, err = f.svc.RecordAnswerOutcome(ctx, "amy", "var", 3, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Completed) != before {
		t.Errorf("correct outcome on a revealed index grew completed to %v", rec.Completed)
	}
	if rec.IsCompleted {
		t.Error("disqualified pass must not complete the assignment")
	}
}

func TestRevealRequiresConfirmation(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	_, err := f.svc.RevealSolution(context.Background(), "amy", "var", 0, false, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unconfirmed reveal err = %v, want ErrInvalidInput", err)
	}
	if rec, _ := f.svc.Get(context.Background(), "amy", "var"); rec != nil {
		t.Error("unconfirmed reveal must not write")
	}
}

func TestNextVariationPicksUniformlyFromEligible(t *testing.T) {
	picker := &seqPicker{picks: []int{1}}
	f := newFixture(t, "1.2.3.4", WithPicker(picker))
	ctx := context.Background()

	// complete 2 and reveal 4: eligible pool is {0,1,3}
	if _, err := f.svc.RecordAnswerOutcome(ctx, "amy", "var", 2, true, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RevealSolution(ctx, "amy", "var", 4, true, ""); err != nil {
		t.Fatal(err)
	}

	rec, err := f.svc.NextVariation(ctx, "amy", "var", "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ActiveIndex != 1 { // eligible[1] of {0,1,3}
		t.Errorf("active index = %d, want 1", rec.ActiveIndex)
	}
}

func TestNextVariationOnCompletedAttemptIsReviewMode(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	f.mustPass(t, "amy", "var", 0)
	f.mustPass(t, "amy", "var", 1)

	before, _ := f.svc.Get(ctx, "amy", "var")
	rec, err := f.svc.NextVariation(ctx, "amy", "var", "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec, *before) {
		t.Errorf("completed attempt changed by NextVariation: %+v vs %+v", rec, *before)
	}
}

func TestExhaustedVariations(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	// reveal four of five variations, pass none: one eligible left
	for _, i := range []int{0, 1, 2, 3} {
		if _, err := f.svc.RevealSolution(ctx, "amy", "var", i, true, ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.svc.NextVariation(ctx, "amy", "var", ""); err != nil {
		t.Fatalf("one eligible variation left, NextVariation should succeed: %v", err)
	}
	if _, err := f.svc.RevealSolution(ctx, "amy", "var", 4, true, ""); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.NextVariation(ctx, "amy", "var", "")
	if !errors.Is(err, ErrExhaustedVariations) {
		t.Errorf("err = %v, want ErrExhaustedVariations", err)
	}
}

func TestNextVariationRejectsLinearAssignment(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	if _, err := f.svc.NextVariation(context.Background(), "amy", "lin", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestClassworkWriteGatedByIP(t *testing.T) {
	ctx := context.Background()

	denied := newFixture(t, "5.6.7.8")
	_, err := denied.svc.RecordAnswerOutcome(ctx, "amy", "gated", 0, true, "5.6.7.8")
	if !errors.Is(err, ErrAccessRestricted) {
		t.Fatalf("err = %v, want ErrAccessRestricted", err)
	}
	var restricted *RestrictedError
	if !errors.As(err, &restricted) || restricted.CurrentIP != "5.6.7.8" {
		t.Errorf("denial should carry the detected address, got %v", err)
	}
	if rec, _ := denied.svc.Get(ctx, "amy", "gated"); rec != nil {
		t.Error("denied write must not persist anything")
	}

	allowed := newFixture(t, "1.2.3.4")
	if _, err := allowed.svc.RecordAnswerOutcome(ctx, "amy", "gated", 0, true, "1.2.3.4"); err != nil {
		t.Errorf("matching address should pass the gate: %v", err)
	}
}

func TestHomeworkBypassesGate(t *testing.T) {
	// address mismatches the classroom policy, but homework never checks it
	f := newFixture(t, "5.6.7.8")
	if _, err := f.svc.RecordAnswerOutcome(context.Background(), "amy", "lin", 0, true, "5.6.7.8"); err != nil {
		t.Errorf("homework write should bypass the gate: %v", err)
	}
}

func TestIndexValidation(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()
	for _, idx := range []int{-1, 3, 99} {
		if _, err := f.svc.RecordAnswerOutcome(ctx, "amy", "lin", idx, true, ""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("index %d: err = %v, want ErrInvalidInput", idx, err)
		}
	}
}

func TestSetActiveIndexPersistsResumePosition(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	if _, err := f.svc.SetActiveIndex(ctx, "amy", "lin", 1, ""); err != nil {
		t.Fatal(err)
	}
	rec, err := f.svc.Get(ctx, "amy", "lin")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ActiveIndex != 1 {
		t.Errorf("record = %+v, want active index 1", rec)
	}
}

func (f *fixture) mustPass(t *testing.T, student, assignment string, idx int) {
	t.Helper()
	if _, err := f.svc.RecordAnswerOutcome(context.Background(), student, assignment, idx, true, ""); err != nil {
		t.Fatal(err)
	}
}
