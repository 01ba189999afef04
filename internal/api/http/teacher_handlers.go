package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/physika-edu/physika-lms/internal/catalog"
)

func CreateClassroomHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c catalog.Classroom
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if err := cat.PutClassroom(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

type ipPolicyReq struct {
	AllowedIP      string `json:"allowed_ip"`
	IPCheckEnabled bool   `json:"ip_check_enabled"`
}

// SetIPPolicyHandler updates the classroom network policy. Takes effect on
// the next access check; nothing is cached.
func SetIPPolicyHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ipPolicyReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "classroomID")
		if err := cat.SetClassroomIPPolicy(r.Context(), id, req.AllowedIP, req.IPCheckEnabled); err != nil {
			writeErr(w, err)
			return
		}
		room, err := cat.GetClassroom(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(room)
	}
}

func CreateCollectionHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c catalog.Collection
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.ClassroomID == "" || c.Title == "" {
			http.Error(w, "classroom_id and title required", http.StatusBadRequest)
			return
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.Category = c.Category.Normalize()
		if err := cat.PutCollection(r.Context(), c); err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// UpsertAssignmentHandler creates or replaces an assignment, questions
// included. The posted question order is the canonical order students
// progress through.
func UpsertAssignmentHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a catalog.Assignment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if a.ClassroomID == "" || a.Title == "" {
			http.Error(w, "classroom_id and title required", http.StatusBadRequest)
			return
		}
		if a.RequiredVariations < 0 {
			http.Error(w, "required_variations must be >= 0", http.StatusBadRequest)
			return
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if err := cat.PutAssignment(r.Context(), a); err != nil {
			writeErr(w, err)
			return
		}
		// echo back with the forced flags applied
		saved, err := cat.GetAssignment(r.Context(), a.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(saved)
	}
}

type publishReq struct {
	Published bool `json:"published"`
}

func PublishAssignmentHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publishReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := cat.SetPublished(r.Context(), chi.URLParam(r, "assignmentID"), req.Published); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetAssignmentFullHandler is the teacher view: answer keys and solutions
// included.
func GetAssignmentFullHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := cat.GetAssignment(r.Context(), chi.URLParam(r, "assignmentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}
