package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"travel-friend/api/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	respondError(c, err)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return w, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.New(apperr.Validation, "bad input"), http.StatusBadRequest},
		{"forbidden", apperr.New(apperr.Forbidden, "not yours"), http.StatusForbidden},
		{"not found", apperr.New(apperr.NotFound, "no such expense"), http.StatusNotFound},
		{"conflict", apperr.New(apperr.Conflict, "request already pending"), http.StatusConflict},
		{"unclassified", errors.New("driver exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := performError(t, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if success, _ := body["success"].(bool); success {
				t.Error("success = true on error response")
			}
			if msg, _ := body["message"].(string); msg == "" {
				t.Error("error response has no message")
			}
		})
	}
}

func TestRespondErrorKeepsClientMessage(t *testing.T) {
	_, body := performError(t, apperr.New(apperr.Validation, "expense amount must be positive"))
	if body["message"] != "expense amount must be positive" {
		t.Errorf("message = %q, want validation detail preserved", body["message"])
	}
}

func TestRespondEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respond(c, http.StatusCreated, "Expense created", gin.H{"id": "exp-1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if success, _ := body["success"].(bool); !success {
		t.Error("success = false on success response")
	}
	if body["message"] != "Expense created" {
		t.Errorf("message = %q", body["message"])
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok || data["id"] != "exp-1" {
		t.Errorf("data = %v, want id exp-1", body["data"])
	}
}

func TestRespondOmitsEmptyFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respond(c, http.StatusOK, "", nil)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if _, present := body["message"]; present {
		t.Error("empty message should be omitted")
	}
	if _, present := body["data"]; present {
		t.Error("nil data should be omitted")
	}
}
