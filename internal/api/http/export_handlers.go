package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tentagen/tentagen/internal/auth"
	"github.com/tentagen/tentagen/internal/export"
	"github.com/tentagen/tentagen/internal/question"
	"github.com/tentagen/tentagen/internal/storage"
)

// POST /exports: encode stored questions into one download artifact.
// Body: {"question_ids": [...], "metadata": {...}}. The export either fully
// succeeds or fails as a whole; no partial file reaches the client.
func ExportHandler(store question.Store) http.HandlerFunc {
	type exportRequest struct {
		QuestionIDs []string        `json:"question_ids"`
		Metadata    export.Metadata `json:"metadata"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		// Decoding over the defaults keeps the language-marker tag on unless
		// the request body disables it explicitly.
		req := exportRequest{Metadata: export.DefaultMetadata()}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		userID := auth.UserID(r.Context())
		qs := make([]question.Question, 0, len(req.QuestionIDs))
		for _, id := range req.QuestionIDs {
			rec, err := store.Get(r.Context(), userID, id)
			if errors.Is(err, question.ErrNotFound) {
				http.Error(w, fmt.Sprintf("question %s not found", id), http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			qs = append(qs, rec.Question)
		}

		artifact, err := export.Export(req.Metadata.Format, qs, req.Metadata)
		if err != nil {
			log.Error().Err(err).Str("format", req.Metadata.Format).Msg("export failed")
			http.Error(w, "export failed", http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", artifact.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
		_, _ = w.Write(artifact.Data)
	}
}

// POST /materials (multipart: file=...): store uploaded source material for
// later generation calls. Content extraction happens elsewhere.
func UploadMaterialHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := auth.UserID(r.Context()) + "/" + uuid.NewString() + "-" + hdr.Filename
		if _, err := bs.Put(key, io.LimitReader(f, 32<<20)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"key": key, "filename": hdr.Filename})
	}
}

// GET /export-formats: the format ids the export registry knows about.
func ExportFormatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, export.Formats())
	}
}
