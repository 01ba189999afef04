package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/physika-edu/physika-lms/internal/auth/middleware"
	"github.com/physika-edu/physika-lms/internal/catalog"
	"github.com/physika-edu/physika-lms/internal/grading"
	"github.com/physika-edu/physika-lms/internal/progress"
)

// GetAssignmentHandler serves the student view: correctness data and
// solutions stripped.
func GetAssignmentHandler(cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := cat.GetAssignment(r.Context(), chi.URLParam(r, "assignmentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(a.StudentView())
	}
}

func GetProgressHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		rec, err := svc.Get(r.Context(), studentID, chi.URLParam(r, "assignmentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		// rec is nil for a never-touched assignment; encodes as JSON null
		_ = json.NewEncoder(w).Encode(rec)
	}
}

type submitAnswerReq struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	Review        bool   `json:"review,omitempty"` // evaluate without persisting
}

type submitAnswerResp struct {
	Correct   bool             `json:"correct"`
	Persisted bool             `json:"persisted"`
	Record    *progress.Record `json:"record,omitempty"`
}

// SubmitAnswerHandler evaluates the candidate answer and, outside review
// mode, records the outcome through the progress controller.
func SubmitAnswerHandler(svc *progress.Service, cat catalog.Store, ev grading.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		studentID := authmw.SubjectFromContext(r.Context())

		var req submitAnswerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := cat.GetAssignment(r.Context(), assignmentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if req.QuestionIndex < 0 || req.QuestionIndex >= len(a.Questions) {
			writeErr(w, progress.ErrInvalidInput)
			return
		}
		q := a.Questions[req.QuestionIndex]
		correct, err := ev.Evaluate(grading.Q{
			Type:             q.Type,
			Target:           q.Target,
			TolerancePercent: q.TolerancePercent,
			CorrectLabel:     q.CorrectLabel,
		}, req.Answer)
		if err != nil {
			writeErr(w, err)
			return
		}

		// Review mode is derived, not stored: an already-completed attempt
		// (or an explicit review flag) evaluates without persisting.
		review := req.Review
		if !review {
			if rec, err := svc.Get(r.Context(), studentID, assignmentID); err == nil && rec != nil && rec.IsCompleted {
				review = true
			}
		}
		if review {
			_ = json.NewEncoder(w).Encode(submitAnswerResp{Correct: correct})
			return
		}

		rec, err := svc.RecordAnswerOutcome(r.Context(), studentID, assignmentID, req.QuestionIndex, correct, clientIP(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(submitAnswerResp{Correct: correct, Persisted: true, Record: &rec})
	}
}

type revealReq struct {
	QuestionIndex int  `json:"question_index"`
	Confirm       bool `json:"confirm"`
}

type revealResp struct {
	Record        progress.Record `json:"record"`
	SolutionText  string          `json:"solution_text,omitempty"`
	SolutionAsset string          `json:"solution_asset,omitempty"`
}

// RevealSolutionHandler marks the question revealed (irreversibly) and only
// then returns the solution content. The confirm flag is the client's
// explicit confirmation step; reveals never happen as a side effect.
func RevealSolutionHandler(svc *progress.Service, cat catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		studentID := authmw.SubjectFromContext(r.Context())

		var req revealReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rec, err := svc.RevealSolution(r.Context(), studentID, assignmentID, req.QuestionIndex, req.Confirm, clientIP(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		resp := revealResp{Record: rec}
		if a, err := cat.GetAssignment(r.Context(), assignmentID); err == nil && req.QuestionIndex < len(a.Questions) {
			resp.SolutionText = a.Questions[req.QuestionIndex].SolutionText
			resp.SolutionAsset = a.Questions[req.QuestionIndex].SolutionAsset
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type setPositionReq struct {
	Index int `json:"index"`
}

func SetActiveIndexHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		var req setPositionReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rec, err := svc.SetActiveIndex(r.Context(), studentID, chi.URLParam(r, "assignmentID"), req.Index, clientIP(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}

func NextVariationHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		rec, err := svc.NextVariation(r.Context(), studentID, chi.URLParam(r, "assignmentID"), clientIP(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	}
}
