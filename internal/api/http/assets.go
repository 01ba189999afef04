package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/physika-edu/physika-lms/internal/rbac"
	"github.com/physika-edu/physika-lms/internal/storage"
)

// MountAssets serves solution diagrams. Teachers upload under an assignment
// key; the resulting key goes into the question's solution_asset field and is
// fetched back by students after a reveal.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets/{assignmentID}  (multipart, field "file"; teacher only)
	r.With(rbac.Require("assignment:create")).Post("/{assignmentID}", func(w http.ResponseWriter, r *http.Request) {
		assignmentID := chi.URLParam(r, "assignmentID")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		name := hdr.Filename
		if name == "" {
			name = "solution.bin"
		}
		key, err := bs.Put("solutions/"+assignmentID+"/"+name, f)
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"key": key})
	})

	// GET /assets/*  -> the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
