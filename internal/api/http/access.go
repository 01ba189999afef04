package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/physika-edu/physika-lms/internal/accessgate"
	"github.com/physika-edu/physika-lms/internal/catalog"
)

// CheckAccessHandler lets the client ask up front whether the classroom's
// network policy would block classwork writes from its current address.
// GET /classrooms/{classroomID}/access?category=classwork
func CheckAccessHandler(gate *accessgate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := catalog.Category(r.URL.Query().Get("category"))
		res, err := gate.Check(r.Context(), chi.URLParam(r, "classroomID"), category, clientIP(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}
