package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/physika-edu/physika-lms/internal/auth/middleware"
	"github.com/physika-edu/physika-lms/internal/catalog"
	"github.com/physika-edu/physika-lms/internal/progress"
)

// CollectionSummaryHandler returns the aggregated progress view for one
// collection: percent, per-assignment completion/unlock flags, and the
// resume position.
func CollectionSummaryHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		sum, err := svc.CollectionSummary(r.Context(), studentID, chi.URLParam(r, "collectionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// ListCollectionsHandler lists a classroom's collections visible to
// students: anything scheduled in the future stays hidden.
func ListCollectionsHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cols, err := cat.ListStudentCollections(r.Context(), chi.URLParam(r, "classroomID"), time.Now().Unix())
		if err != nil {
			writeErr(w, err)
			return
		}
		if cols == nil {
			cols = []catalog.Collection{}
		}
		_ = json.NewEncoder(w).Encode(cols)
	}
}
