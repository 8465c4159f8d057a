package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSuccess_JSONFormat(t *testing.T) {
	resp := Success("event", map[string]string{"eventId": "123"})

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if parsed["ok"] != true {
		t.Errorf("Expected ok=true, got %v", parsed["ok"])
	}
	event, ok := parsed["event"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected event object, got %T", parsed["event"])
	}
	if event["eventId"] != "123" {
		t.Errorf("Expected eventId=123, got %v", event["eventId"])
	}
	if _, ok := parsed["error"]; ok {
		t.Error("Expected error field to be omitted")
	}
}

func TestOK(t *testing.T) {
	jsonBytes, err := json.Marshal(OK())
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	if string(jsonBytes) != `{"ok":true}` {
		t.Errorf("Expected {\"ok\":true}, got %s", jsonBytes)
	}
}

func TestBody_With(t *testing.T) {
	resp := Success("stamps", []string{}).With("source", "cache").With("stale", true)

	if resp["source"] != "cache" {
		t.Errorf("Expected source=cache, got %v", resp["source"])
	}
	if resp["stale"] != true {
		t.Errorf("Expected stale=true, got %v", resp["stale"])
	}
}

func TestError_JSONFormat(t *testing.T) {
	resp := Error(ErrCodeBadRequest, "Invalid input")

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if parsed["error"] != "Invalid input" {
		t.Errorf("Expected error='Invalid input', got %v", parsed["error"])
	}
	if parsed["code"] != ErrCodeBadRequest {
		t.Errorf("Expected code=%s, got %v", ErrCodeBadRequest, parsed["code"])
	}
	if _, ok := parsed["field"]; ok {
		t.Error("Expected field to be omitted")
	}
}

func TestFieldError(t *testing.T) {
	resp := FieldError("title", "title is required")

	if resp.Field != "title" {
		t.Errorf("Expected field 'title', got %q", resp.Field)
	}
	if resp.Code != ErrCodeValidationFailed {
		t.Errorf("Expected code %s, got %s", ErrCodeValidationFailed, resp.Code)
	}
	if resp.Status() != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Status())
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeAlreadyApplied, http.StatusConflict},
		{ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrCodeInternalError, http.StatusInternalServerError},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if status := GetHTTPStatus(tt.code); status != tt.expected {
				t.Errorf("GetHTTPStatus(%s) = %d, want %d", tt.code, status, tt.expected)
			}
		})
	}
}

func TestCommonErrorResponses(t *testing.T) {
	tests := []struct {
		name         string
		resp         *ErrorBody
		expectedCode string
		expectedMsg  string
	}{
		{"BadRequest", BadRequest("bad"), ErrCodeBadRequest, "bad"},
		{"Unauthorized default", Unauthorized(""), ErrCodeUnauthorized, "Authentication required"},
		{"Forbidden default", Forbidden(""), ErrCodeForbidden, "Access denied"},
		{"NotFound default", NotFound(""), ErrCodeNotFound, "Resource not found"},
		{"Conflict custom", Conflict("Already applied"), ErrCodeConflict, "Already applied"},
		{"InternalError default", InternalError(""), ErrCodeInternalError, "An internal error occurred"},
		{"TooManyRequests default", TooManyRequests(""), ErrCodeTooManyRequests, "Too many requests, please try again later"},
		{"ServiceUnavailable default", ServiceUnavailable(""), ErrCodeServiceUnavailable, "Service temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.resp.Code != tt.expectedCode {
				t.Errorf("Expected code %s, got %s", tt.expectedCode, tt.resp.Code)
			}
			if tt.resp.Error != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, tt.resp.Error)
			}
		})
	}
}
