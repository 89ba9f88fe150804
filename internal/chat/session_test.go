package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ForensightLabs/forensight-console/internal/models"
)

func TestAskWithoutActiveCase(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	s := NewSession(srv.URL, time.Second)
	ex := s.Ask(context.Background(), "who tampered the photo?")

	if ex.Sender != models.SenderSystem {
		t.Errorf("expected system exchange, got %s", ex.Sender)
	}
	if ex.Text != models.ErrNoActiveCase.Error() {
		t.Errorf("unexpected text: %q", ex.Text)
	}
	if calls.Load() != 0 {
		t.Error("no network calls allowed without an active case")
	}

	// User question still lands in the transcript before the refusal.
	transcript := s.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(transcript))
	}
	if transcript[0].Sender != models.SenderUser {
		t.Errorf("first exchange should be the user question, got %s", transcript[0].Sender)
	}
}

func TestAskForwardsCaseID(t *testing.T) {
	var gotCaseID, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		gotCaseID = req["case_id"]
		gotQuery = req["query"]
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "the photo was edited"})
	}))
	defer srv.Close()

	s := NewSession(srv.URL, time.Second)
	s.SetCase("CASE-9")
	ex := s.Ask(context.Background(), "what happened?")

	if gotCaseID != "CASE-9" {
		t.Errorf("case_id not forwarded, got %q", gotCaseID)
	}
	if gotQuery != "what happened?" {
		t.Errorf("query not forwarded, got %q", gotQuery)
	}
	if ex.Sender != models.SenderAgent || ex.Text != "the photo was edited" {
		t.Errorf("unexpected reply: %+v", ex)
	}
}

func TestAskAnswerFieldFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"answer": "from the answer field"})
	}))
	defer srv.Close()

	s := NewSession(srv.URL, time.Second)
	s.SetCase("CASE-1")
	ex := s.Ask(context.Background(), "q")

	if ex.Text != "from the answer field" {
		t.Errorf("answer field should work as a fallback, got %q", ex.Text)
	}
}

func TestAskSourcesBecomeSystemExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "found in two documents",
			"sources":  []interface{}{"statement.pdf", "email.txt"},
		})
	}))
	defer srv.Close()

	s := NewSession(srv.URL, time.Second)
	s.SetCase("CASE-1")
	s.Ask(context.Background(), "where?")

	transcript := s.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("expected user+agent+sources exchanges, got %d", len(transcript))
	}
	last := transcript[2]
	if last.Sender != models.SenderSystem {
		t.Errorf("sources exchange should be system, got %s", last.Sender)
	}
	if last.Text != "Sources: statement.pdf, email.txt" {
		t.Errorf("unexpected sources text: %q", last.Text)
	}
	if len(last.Sources) != 2 {
		t.Errorf("sources list should be attached, got %v", last.Sources)
	}
}

func TestAskServiceErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The service reports errors in the body, sometimes with a non-2xx status.
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "case not found"})
	}))
	defer srv.Close()

	s := NewSession(srv.URL, time.Second)
	s.SetCase("CASE-GONE")
	ex := s.Ask(context.Background(), "q")

	if ex.Sender != models.SenderSystem {
		t.Errorf("expected system exchange, got %s", ex.Sender)
	}
	if ex.Text != "Analysis service error: case not found" {
		t.Errorf("unexpected text: %q", ex.Text)
	}
}

func TestAskNoAnswerField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok"})
	}))
	defer srv.Close()

	s := NewSession(srv.URL, time.Second)
	s.SetCase("CASE-1")
	ex := s.Ask(context.Background(), "q")

	if ex.Text != "The service returned no answer." {
		t.Errorf("unexpected text: %q", ex.Text)
	}
}

func TestAskNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	s := NewSession(srv.URL, time.Second)
	s.SetCase("CASE-1")
	ex := s.Ask(context.Background(), "q")

	if ex.Sender != models.SenderSystem {
		t.Errorf("network failure should produce a system exchange, got %s", ex.Sender)
	}

	// Transcript is append-only: user question followed by the failure note.
	if len(s.Transcript()) != 2 {
		t.Errorf("expected 2 exchanges, got %d", len(s.Transcript()))
	}
}

func TestPublisherReceivesExchanges(t *testing.T) {
	var published atomic.Int32
	s := NewSession("http://unused.invalid", time.Second)
	s.SetPublisher(func(models.ChatExchange) { published.Add(1) })

	s.Ask(context.Background(), "q")

	// user exchange + system refusal
	if published.Load() != 2 {
		t.Errorf("expected 2 published exchanges, got %d", published.Load())
	}
}
