package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "yes").
		Data(map[string]string{"id": "1"}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Custom") != "yes" {
		t.Fatal("custom header missing")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("Content-Type = %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["warning"]; ok {
		t.Fatal("warning should be omitted when empty")
	}
	if body["data"].(map[string]any)["id"] != "1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestJSONResponseBuilderNoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Data("ignored").Write(rr)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestJSONResponseBuilderWarning(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Warning("not saved").Write(rr)
	if rr.Header().Get(PersistenceWarningHeader) != "not saved" {
		t.Fatal("warning header missing")
	}
	var body struct {
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Warning != "not saved" {
		t.Fatalf("unexpected body %q err=%v", rr.Body.String(), err)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name string
		b    *JSONResponseBuilder
		code int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
		{"custom", ErrorResponse(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.b.Write(rr)
			if rr.Code != tt.code {
				t.Fatalf("status = %d, want %d", rr.Code, tt.code)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("expected error message, got %q", rr.Body.String())
			}
		})
	}
}

func TestValidationErrorResponse(t *testing.T) {
	err := core.Draft{}.Validate()
	rr := httptest.NewRecorder()
	ValidationErrorResponse(err).Write(rr)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["amount"] == "" || body.Fields["category"] == "" {
		t.Fatalf("unexpected fields %v", body.Fields)
	}
}
