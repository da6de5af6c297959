package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musyaffa-iman/EchoShift/internal/model"
)

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeRegisterRequest(t *testing.T) {
	var req RegisterRequest
	err := Decode(newRequest(`{"username":"alice","password":"secret"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "secret", req.Password)
}

func TestDecodeReportsMissingFieldsByJSONName(t *testing.T) {
	var req RegisterRequest
	err := Decode(newRequest(`{"password":"secret"}`), &req)
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, "username cannot be null or empty", err.Error())
}

func TestDecodeRejectsEmptyBody(t *testing.T) {
	var req LoginRequest
	err := Decode(newRequest(""), &req)
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, "Request body is required", err.Error())
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	var req LoginRequest
	err := Decode(newRequest(`{"username":`), &req)
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, "Invalid request body", err.Error())
}

func TestDecodeOptionalAcceptsEmptyBody(t *testing.T) {
	var req RunRequest
	require.NoError(t, DecodeOptional(newRequest(""), &req))
	assert.True(t, req.Patch().IsEmpty())
}

func TestDecodeRunRequestPartialFields(t *testing.T) {
	var req RunRequest
	require.NoError(t, DecodeOptional(newRequest(`{"score":100}`), &req))

	patch := req.Patch()
	require.NotNil(t, patch.Score)
	assert.Equal(t, 100, *patch.Score)
	assert.Nil(t, patch.TimeElapsed)
	assert.Nil(t, patch.LevelReached)
}

func TestDecodeRunRequestAllowsZeroScore(t *testing.T) {
	var req RunRequest
	require.NoError(t, DecodeOptional(newRequest(`{"score":0,"timeElapsed":0}`), &req))
	require.NotNil(t, req.Score)
	assert.Equal(t, 0, *req.Score)
}

func TestDecodeRunRequestRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"negative score", `{"score":-5}`, "score must be at least 0"},
		{"negative time", `{"timeElapsed":-0.5}`, "timeElapsed must be at least 0"},
		{"level zero", `{"levelReached":0}`, "levelReached must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RunRequest
			err := DecodeOptional(newRequest(tt.body), &req)
			require.ErrorIs(t, err, model.ErrInvalidInput)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestDecodeRunRequestRejectsWrongTypes(t *testing.T) {
	var req RunRequest
	err := DecodeOptional(newRequest(`{"score":"high"}`), &req)
	require.ErrorIs(t, err, model.ErrInvalidInput)
}
