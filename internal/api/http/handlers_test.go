package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tentagen/tentagen/internal/auth"
	"github.com/tentagen/tentagen/internal/llm"
	"github.com/tentagen/tentagen/internal/question"

	_ "github.com/tentagen/tentagen/internal/export/csvexport"
	_ "github.com/tentagen/tentagen/internal/export/jsondialect"
)

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(auth.WithUserID(r.Context(), "u1"))
}

func seed(t *testing.T, s question.Store, id, subject string) {
	t.Helper()
	rec := question.Record{
		Subject: subject,
		Question: question.Question{
			ID:       id,
			Type:     "mcq",
			Stimulus: "Vad är 2+2?",
			Options: []question.Option{
				{Label: "A", Value: "3"},
				{Label: "B", Value: "4"},
			},
			CorrectAnswer: []string{"B"},
		},
	}
	if err := s.Put(context.Background(), "u1", rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestListQuestionsHandler(t *testing.T) {
	s := question.NewInMemoryStore()
	seed(t, s, "q1", "Matematik")
	seed(t, s, "q2", "Kemi")

	rr := httptest.NewRecorder()
	ListQuestionsHandler(s)(rr, authedRequest("GET", "/questions?subject=Kemi", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var recs []question.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].Question.ID != "q2" {
		t.Errorf("filtered list = %+v", recs)
	}
}

func TestPutQuestionHandlerAssignsID(t *testing.T) {
	s := question.NewInMemoryStore()
	rr := httptest.NewRecorder()
	PutQuestionHandler(s)(rr, authedRequest("PUT", "/questions",
		`{"subject":"Kemi","question":{"type":"essay","stimulus":"Diskutera"}}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["id"] == "" {
		t.Fatal("no id assigned")
	}
	if _, err := s.Get(context.Background(), "u1", resp["id"]); err != nil {
		t.Errorf("stored record missing: %v", err)
	}
}

func TestDeleteQuestionHandler(t *testing.T) {
	s := question.NewInMemoryStore()
	seed(t, s, "q1", "Kemi")

	// route through chi so URLParam resolves
	router := chi.NewRouter()
	router.Delete("/questions/{id}", DeleteQuestionHandler(s))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest("DELETE", "/questions/nope", ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing id: status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest("DELETE", "/questions/q1", ""))
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rr.Code)
	}
}

type fakeGenerator struct {
	qs  []question.Question
	err error
	got llm.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.GenerateRequest) ([]question.Question, error) {
	f.got = req
	return f.qs, f.err
}

func TestGenerateHandlerStoresDrafts(t *testing.T) {
	s := question.NewInMemoryStore()
	gen := &fakeGenerator{qs: []question.Question{
		{Type: "mcq", Stimulus: "F1"},
		{Type: "essay", Stimulus: "F2"},
	}}

	rr := httptest.NewRecorder()
	GenerateHandler(gen, s)(rr, authedRequest("POST", "/generate",
		`{"subject":"Kemi","topic":"Syror","count":2,"types":["mcq"]}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if gen.got.Subject != "Kemi" || gen.got.Count != 2 || len(gen.got.TypeIDs) != 1 {
		t.Errorf("generator request = %+v", gen.got)
	}

	stored, err := s.List(context.Background(), "u1", "Kemi")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored count = %d", len(stored))
	}
	for _, rec := range stored {
		if rec.Question.ID == "" {
			t.Error("draft stored without an id")
		}
		if rec.Topic != "Syror" {
			t.Errorf("topic = %q", rec.Topic)
		}
	}
}

func TestGenerateHandlerUpstreamFailure(t *testing.T) {
	s := question.NewInMemoryStore()
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	rr := httptest.NewRecorder()
	GenerateHandler(gen, s)(rr, authedRequest("POST", "/generate", `{"subject":"Kemi"}`))
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestExportHandler(t *testing.T) {
	s := question.NewInMemoryStore()
	seed(t, s, "q1", "Kemi")

	t.Run("csv download", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ExportHandler(s)(rr, authedRequest("POST", "/exports",
			`{"question_ids":["q1"],"metadata":{"subject":"Kemi","format":"csv","language":"sv","difficulty":"medium"}}`))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("content type = %q", ct)
		}
		cd := rr.Header().Get("Content-Disposition")
		if !strings.Contains(cd, "attachment") || !strings.Contains(cd, ".csv") {
			t.Errorf("content disposition = %q", cd)
		}
		if !strings.Contains(rr.Body.String(), "Vad är 2+2?") {
			t.Error("exported body missing the question")
		}
	})

	t.Run("unknown question id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ExportHandler(s)(rr, authedRequest("POST", "/exports",
			`{"question_ids":["missing"],"metadata":{"format":"csv"}}`))
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d", rr.Code)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		rr := httptest.NewRecorder()
		ExportHandler(s)(rr, authedRequest("POST", "/exports",
			`{"question_ids":["q1"],"metadata":{"format":"pdf"}}`))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d", rr.Code)
		}
	})
}
