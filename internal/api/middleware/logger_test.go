package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(StructuredLogger(logger))
	r.Get("/customers", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	})

	req := httptest.NewRequest(http.MethodGet, "/customers?q=active", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}

	if record["msg"] != "Request completed" {
		t.Errorf("unexpected message: %v", record["msg"])
	}
	if record["method"] != "GET" {
		t.Errorf("expected method GET, got %v", record["method"])
	}
	if record["path"] != "/customers" {
		t.Errorf("expected path /customers, got %v", record["path"])
	}
	if record["query"] != "q=active" {
		t.Errorf("expected query q=active, got %v", record["query"])
	}
	if record["status"] != float64(http.StatusOK) {
		t.Errorf("expected status 200, got %v", record["status"])
	}
	if record["bytes"] != float64(2) {
		t.Errorf("expected 2 bytes written, got %v", record["bytes"])
	}
	if id, ok := record["requestId"].(string); !ok || id == "" {
		t.Error("expected a request ID to be logged")
	}
}
