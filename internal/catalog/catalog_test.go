package catalog

import (
	"context"
	"testing"
)

func TestStudentViewStripsAnswerData(t *testing.T) {
	a := Assignment{
		ID: "a1",
		Questions: []Question{
			{Type: "numerical", Prompt: "drop time?", Target: 44.1, TolerancePercent: 5, SolutionText: "d = gt^2/2"},
			{Type: "multiple_choice", Prompt: "which falls faster?", CorrectLabel: "c", SolutionAsset: "solutions/a1/fig.png"},
		},
	}
	v := a.StudentView()

	if len(v.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(v.Questions))
	}
	for i, q := range v.Questions {
		if q.Target != 0 || q.TolerancePercent != 0 || q.CorrectLabel != "" || q.SolutionText != "" || q.SolutionAsset != "" {
			t.Errorf("question %d: answer data leaked: %+v", i, q)
		}
	}
	if v.Questions[0].Prompt != "drop time?" || v.Questions[1].Prompt != "which falls faster?" {
		t.Error("prompts should survive stripping in order")
	}
	// the original must be untouched
	if a.Questions[0].Target != 44.1 || a.Questions[1].CorrectLabel != "c" {
		t.Error("StudentView mutated the source assignment")
	}
}

func TestCategoryNormalize(t *testing.T) {
	cases := map[Category]Category{
		CategoryClasswork: CategoryClasswork,
		CategoryHomework:  CategoryHomework,
		"":                CategoryHomework,
		"exam":            CategoryHomework,
	}
	for in, want := range cases {
		if got := in.Normalize(); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVariationModeForcesSequentialDisplay(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.PutAssignment(ctx, Assignment{
		ID:                 "pool",
		ClassroomID:        "room",
		Title:              "practice pool",
		RequiredVariations: 2,
		ShowAllQuestions:   true, // must not survive
		Questions:          []Question{{Type: "numerical"}, {Type: "numerical"}, {Type: "numerical"}},
	}); err != nil {
		t.Fatal(err)
	}
	a, err := s.GetAssignment(ctx, "pool")
	if err != nil {
		t.Fatal(err)
	}
	if a.ShowAllQuestions {
		t.Error("variation mode must force one-question-at-a-time display")
	}
	if !a.VariationMode() {
		t.Error("RequiredVariations=2 should mean variation mode")
	}
}

func TestMetaResolvesCollectionCategory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.PutCollection(ctx, Collection{ID: "cw", ClassroomID: "room", Title: "in class", Category: CategoryClasswork}); err != nil {
		t.Fatal(err)
	}
	put := func(id, collectionID string) {
		t.Helper()
		if err := s.PutAssignment(ctx, Assignment{ID: id, ClassroomID: "room", CollectionID: collectionID, Title: id}); err != nil {
			t.Fatal(err)
		}
	}
	put("gated", "cw")
	put("standalone", "")

	m, err := s.GetMeta(ctx, "gated")
	if err != nil {
		t.Fatal(err)
	}
	if m.CollectionCategory != CategoryClasswork {
		t.Errorf("gated category = %q, want classwork", m.CollectionCategory)
	}

	m, err = s.GetMeta(ctx, "standalone")
	if err != nil {
		t.Fatal(err)
	}
	if m.CollectionCategory != CategoryHomework {
		t.Errorf("standalone category = %q, want homework", m.CollectionCategory)
	}
}

func TestListStudentCollectionsHidesScheduled(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	now := int64(1_700_000_000)
	puts := []Collection{
		{ID: "past", ClassroomID: "room", Title: "past", ScheduledDate: now - 100, CreatedAt: 1},
		{ID: "unscheduled", ClassroomID: "room", Title: "always", CreatedAt: 2},
		{ID: "future", ClassroomID: "room", Title: "future", ScheduledDate: now + 100, CreatedAt: 3},
		{ID: "other", ClassroomID: "elsewhere", Title: "other", CreatedAt: 4},
	}
	for _, c := range puts {
		if err := s.PutCollection(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	cols, err := s.ListStudentCollections(ctx, "room", now)
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 {
		t.Fatalf("visible = %d, want 2", len(cols))
	}
	if cols[0].ID != "past" || cols[1].ID != "unscheduled" {
		t.Errorf("unexpected order: %s, %s", cols[0].ID, cols[1].ID)
	}
}

func TestListCollectionAssignmentsOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for _, a := range []Assignment{
		{ID: "third", ClassroomID: "room", CollectionID: "col", OrderIndex: 2, Title: "c"},
		{ID: "first", ClassroomID: "room", CollectionID: "col", OrderIndex: 0, Title: "a"},
		{ID: "second", ClassroomID: "room", CollectionID: "col", OrderIndex: 1, Title: "b"},
	} {
		if err := s.PutAssignment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	metas, err := s.ListCollectionAssignments(ctx, "col")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	if len(metas) != len(want) {
		t.Fatalf("metas = %d, want %d", len(metas), len(want))
	}
	for i, id := range want {
		if metas[i].ID != id {
			t.Errorf("metas[%d] = %s, want %s", i, metas[i].ID, id)
		}
	}
}
