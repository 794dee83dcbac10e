package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"library/internal/testutil"
)

func TestJSONSuccess_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "rid-9"))
	w := httptest.NewRecorder()

	JSONSuccess(w, req, map[string]string{"isbn": testutil.TestISBN})

	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, true, resp.Body["success"])
	assert.Equal(t, testutil.TestISBN, resp.Body["data"].(map[string]interface{})["isbn"])
	assert.Equal(t, "rid-9", resp.Body["meta"].(map[string]interface{})["request_id"])
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusConflict, CodeConflict, "Book is already borrowed!")

	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, false, resp.Body["success"])
	assert.Equal(t, "Book is already borrowed!", testutil.ErrorMessage(resp.Body))
	assert.NotContains(t, resp.Body, "meta")
}

func TestJSONSuccessCreated(t *testing.T) {
	w := httptest.NewRecorder()
	JSONSuccessCreated(w, httptest.NewRequest(http.MethodPost, "/", nil), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}
