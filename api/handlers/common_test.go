package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskmind-ai/taskmind/types"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, types.NewNotFoundError("agent not found: x"), zap.NewNop())

	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrAgentNotFound), resp.Error.Code)
}

func TestWriteError_StatusFromCode(t *testing.T) {
	tests := []struct {
		code types.ErrorCode
		want int
	}{
		{types.ErrInvalidRequest, http.StatusBadRequest},
		{types.ErrAgentNotFound, http.StatusNotFound},
		{types.ErrPersistence, http.StatusServiceUnavailable},
		{types.ErrInternalError, http.StatusInternalServerError},
		{types.ErrPlanningFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(rec, types.NewError(tt.code, "boom"), nil)
		assert.Equal(t, tt.want, rec.Code, "code %s", tt.code)
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("Valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
		rec := httptest.NewRecorder()

		var p payload
		require.NoError(t, DecodeJSONBody(rec, r, &p, zap.NewNop()))
		assert.Equal(t, "ok", p.Name)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		rec := httptest.NewRecorder()

		var p payload
		assert.Error(t, DecodeJSONBody(rec, r, &p, zap.NewNop()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownField", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bogus":1}`))
		rec := httptest.NewRecorder()

		var p payload
		assert.Error(t, DecodeJSONBody(rec, r, &p, zap.NewNop()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResponseWriter_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK) // second call ignored
	rw.Write([]byte("x"))

	assert.Equal(t, http.StatusTeapot, rw.StatusCode)
	assert.True(t, rw.Written)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, rw.StatusCode)
}
