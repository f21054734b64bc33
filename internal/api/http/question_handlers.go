package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tentagen/tentagen/internal/auth"
	"github.com/tentagen/tentagen/internal/llm"
	"github.com/tentagen/tentagen/internal/question"
)

// Generator produces question drafts; satisfied by *llm.Client and by fakes
// in tests.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) ([]question.Question, error)
}

// GET /questions?subject=...
func ListQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.List(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("subject"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if recs == nil {
			recs = []question.Record{}
		}
		writeJSON(w, recs)
	}
}

// PUT /questions: create or update one question record.
func PutQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec question.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if rec.Question.ID == "" {
			rec.Question.ID = uuid.NewString()
		}
		if err := store.Put(r.Context(), auth.UserID(r.Context()), rec); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"id": rec.Question.ID})
	}
}

// DELETE /questions/{id}
func DeleteQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
		if errors.Is(err, question.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /generate: ask the LLM for question drafts and store them.
func GenerateHandler(gen Generator, store question.Store) http.HandlerFunc {
	type generateRequest struct {
		Subject    string              `json:"subject"`
		Topic      string              `json:"topic"`
		Difficulty question.Difficulty `json:"difficulty"`
		Language   question.Language   `json:"language"`
		Types      []string            `json:"types"`
		Count      int                 `json:"count"`
		SourceText string              `json:"source_text"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		qs, err := gen.Generate(r.Context(), llm.GenerateRequest{
			Subject:    req.Subject,
			Topic:      req.Topic,
			Difficulty: req.Difficulty,
			Language:   req.Language,
			TypeIDs:    req.Types,
			Count:      req.Count,
			SourceText: req.SourceText,
		})
		if err != nil {
			log.Error().Err(err).Str("subject", req.Subject).Msg("generation failed")
			http.Error(w, "generation failed", http.StatusBadGateway)
			return
		}

		userID := auth.UserID(r.Context())
		recs := make([]question.Record, 0, len(qs))
		for _, q := range qs {
			q.ID = uuid.NewString()
			rec := question.Record{Subject: req.Subject, Topic: req.Topic, Question: q}
			if err := store.Put(r.Context(), userID, rec); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			recs = append(recs, rec)
		}
		writeJSON(w, recs)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
