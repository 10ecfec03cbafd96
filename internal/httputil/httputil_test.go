package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathInt64(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{value: "42", want: 42},
		{value: "0", wantErr: true},
		{value: "-3", wantErr: true},
		{value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.SetPathValue("id", tt.value)
			got, err := PathInt64(r, "id")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRespondValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondValidationError(w, "validation failed", map[string]string{"title": "cannot be blank"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "validation failed", body["detail"])
	assert.Equal(t, map[string]interface{}{"title": "cannot be blank"}, body["fields"])
}


func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, http.StatusForbidden, "not permitted to delete task")

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Forbidden", body["title"])
	assert.Contains(t, body["type"], "403")
	assert.NotContains(t, body, "fields")

	assert.Equal(t, "about:blank", NewProblem(http.StatusTeapot, "").Type)
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "object", body: `{"title":"a"}`},
		{name: "empty", body: ``, wantErr: "request body is empty"},
		{name: "malformed", body: `{"title":`, wantErr: "invalid JSON"},
		{name: "trailing", body: `{"title":"a"} {"title":"b"}`, wantErr: "unexpected data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest struct {
				Title string `json:"title"`
			}
			err := ParseJSON(httptest.NewRecorder(), r, &dest)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", dest.Title)
		})
	}
}

func TestCallerFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := CallerFrom(r.Context())
	assert.False(t, ok)
	assert.Empty(t, GetUserID(r))

	r = WithCaller(r, Caller{UserID: "u-1", Username: "alice"})
	assert.Equal(t, "u-1", GetUserID(r))
	assert.Equal(t, "alice", GetUsername(r))
}
