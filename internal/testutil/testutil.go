package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"library/internal/entity"
)

const (
	// TestISBN satisfies the ISBN-13 checksum.
	TestISBN = "0000000000000"
	// TestISBN2 is a second valid ISBN for multi-book scenarios.
	TestISBN2 = "9780306406157"
	// TestUserID is a valid 12-digit user ID.
	TestUserID = "111111111111"
)

// NewTestBook returns an available book that passes every validator.
func NewTestBook() entity.Book {
	return entity.Book{
		ISBN:   TestISBN,
		Title:  "TITLE",
		Author: "AUTHOR",
	}
}

// NewTestUser returns a valid user wired to the given channel.
func NewTestUser(notifier entity.NotificationService) entity.User {
	return entity.User{
		ID:       TestUserID,
		Name:     "Test User",
		Address:  "https://hooks.example.com/users/111111111111",
		Notifier: notifier,
	}
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var r *http.Request
	if bodyBytes != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorMessage extracts error.message from a JSON error envelope.
func ErrorMessage(body map[string]interface{}) string {
	e, ok := body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := e["message"].(string)
	return msg
}
