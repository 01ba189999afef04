package progress

import (
	"context"
	"math"
	"testing"

	"github.com/physika-edu/physika-lms/internal/catalog"
)

func metasOf(n int) []catalog.Meta {
	out := make([]catalog.Meta, n)
	for i := range out {
		out[i] = catalog.Meta{ID: string(rune('a' + i)), OrderIndex: i, QuestionCount: 1, Published: true}
	}
	return out
}

func done(id string) Record {
	return Record{AssignmentID: id, Completed: []int{0}, IsCompleted: true}
}

func TestBuildSummaryProgressPercent(t *testing.T) {
	metas := metasOf(4)
	records := map[string]Record{"a": done("a"), "c": done("c")}

	sum := BuildSummary(catalog.Collection{ID: "col"}, metas, records)
	if sum.CompletedCount != 2 || sum.TotalAssignments != 4 {
		t.Fatalf("counts = %d/%d", sum.CompletedCount, sum.TotalAssignments)
	}
	if math.Abs(sum.ProgressPercent-50) > 1e-9 {
		t.Errorf("percent = %v, want 50", sum.ProgressPercent)
	}
	if sum.FirstIncompleteIndex != 1 {
		t.Errorf("first incomplete = %d, want 1", sum.FirstIncompleteIndex)
	}
	if sum.AllDone {
		t.Error("half-finished collection reported allDone")
	}
}

func TestBuildSummaryLockstepUnlocking(t *testing.T) {
	metas := metasOf(4)
	sum := BuildSummary(catalog.Collection{ID: "col"}, metas, map[string]Record{"a": done("a")})

	wantUnlocked := []bool{true, true, false, false}
	for i, ap := range sum.PerAssignment {
		if ap.Unlocked != wantUnlocked[i] {
			t.Errorf("assignment %d unlocked = %v, want %v", i, ap.Unlocked, wantUnlocked[i])
		}
	}
}

func TestBuildSummaryAllDone(t *testing.T) {
	metas := metasOf(3)
	records := map[string]Record{"a": done("a"), "b": done("b"), "c": done("c")}

	sum := BuildSummary(catalog.Collection{ID: "col"}, metas, records)
	if !sum.AllDone {
		t.Fatal("expected allDone")
	}
	if sum.FirstIncompleteIndex != 2 {
		t.Errorf("finished collection should position at the last index, got %d", sum.FirstIncompleteIndex)
	}
	for i, ap := range sum.PerAssignment {
		if !ap.Unlocked {
			t.Errorf("assignment %d locked in a finished collection", i)
		}
	}
}

func TestBuildSummaryEmptyCollection(t *testing.T) {
	sum := BuildSummary(catalog.Collection{ID: "col"}, nil, nil)
	if sum.AllDone || sum.ProgressPercent != 0 || sum.FirstIncompleteIndex != 0 {
		t.Errorf("empty collection summary = %+v", sum)
	}
}

func TestNavIsMonotone(t *testing.T) {
	sum := BuildSummary(catalog.Collection{ID: "col"}, metasOf(4), map[string]Record{"a": done("a")})
	nav := NewNav(sum)

	if nav.MaxReached() != 1 {
		t.Fatalf("nav seeds at first incomplete, got %d", nav.MaxReached())
	}
	if !nav.CanView(0) || !nav.CanView(1) || nav.CanView(2) {
		t.Error("views beyond the cursor must stay locked")
	}

	nav.Raise(2)
	if nav.MaxReached() != 2 || !nav.CanView(2) {
		t.Error("raising the cursor should unlock the next index")
	}
	nav.Raise(0) // never decreases
	if nav.MaxReached() != 2 {
		t.Errorf("cursor went backwards to %d", nav.MaxReached())
	}
	if nav.CanView(-1) {
		t.Error("negative index can never be viewed")
	}
}

func TestCollectionSummaryThroughService(t *testing.T) {
	f := newFixture(t, "1.2.3.4")
	ctx := context.Background()

	// the fixture's homework collection holds lin, var and the draft
	f.mustPass(t, "amy", "lin", 0)
	f.mustPass(t, "amy", "lin", 1)
	f.mustPass(t, "amy", "lin", 2)

	sum, err := f.svc.CollectionSummary(ctx, "amy", "hw")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalAssignments == 0 {
		t.Fatal("expected assignments in the homework collection")
	}
	var linDone bool
	for _, ap := range sum.PerAssignment {
		if ap.AssignmentID == "lin" {
			linDone = ap.Completed
		}
	}
	if !linDone {
		t.Error("lin should be reported complete in the summary")
	}
	if sum.CompletedCount != 1 {
		t.Errorf("completed count = %d, want 1", sum.CompletedCount)
	}
}
