package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		wantType  ErrorType
		wantCode  string
		status    int
		retryable bool
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, "", http.StatusBadRequest, false},
		{"not found", NewNotFoundError("node"), ErrorTypeNotFound, "", http.StatusNotFound, false},
		{"unauthorized", NewUnauthorizedError(""), ErrorTypeUnauthorized, "", http.StatusUnauthorized, false},
		{"internal", NewInternalError("oops"), ErrorTypeInternal, "", http.StatusInternalServerError, false},
		{"timeout", NewTimeoutError("fetch"), ErrorTypeTimeout, "", http.StatusGatewayTimeout, true},
		{"unavailable", NewUnavailableError("backend"), ErrorTypeUnavailable, "", http.StatusServiceUnavailable, true},
		{"superseded", NewSupersededError(4), ErrorTypeSuperseded, "", http.StatusConflict, false},
		{"malformed", NewMalformedExportError("bad top level"), ErrorTypeMalformedExport, CodeMalformedExport, http.StatusBadGateway, true},
		{"external", NewExternalError("backend", errors.New("refused")), ErrorTypeExternal, "", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.NotEmpty(t, tt.err.StackTrace)
		})
	}
}

func TestAppError_Chain(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalError("backend", nil).
		WithCode(CodeTransport).
		WithDetails(map[string]any{"status": 502}).
		WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "EXTERNAL: external service 'backend' error (caused by: connection refused)", err.Error())

	wrapped := fmt.Errorf("query handler failed: %w", err)
	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeExternal))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, CodeTransport, GetAppError(wrapped).Code)

	assert.False(t, IsAppError(cause))
	assert.Nil(t, GetAppError(cause))
	assert.False(t, IsRetryable(cause))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("node")))
	assert.True(t, IsValidation(NewValidationError("x")))
	assert.True(t, IsMalformedExport(NewMalformedExportError("x")))
	assert.True(t, IsSuperseded(NewSupersededError(1)))
	assert.False(t, IsSuperseded(NewNotFoundError("node")))
}

func TestFromContext(t *testing.T) {
	typed := NewUnavailableError("backend").WithCause(context.Canceled)
	plain := errors.New("boom")

	tests := []struct {
		name       string
		err        error
		wantType   ErrorType
		wantStatus int
		unchanged  bool
	}{
		{name: "nil", err: nil, unchanged: true},
		{name: "deadline", err: context.DeadlineExceeded, wantType: ErrorTypeTimeout, wantStatus: http.StatusGatewayTimeout},
		{name: "wrapped deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), wantType: ErrorTypeTimeout, wantStatus: http.StatusGatewayTimeout},
		{name: "canceled", err: context.Canceled, wantType: ErrorTypeCanceled, wantStatus: StatusClientClosedRequest},
		{name: "app error kept", err: typed, unchanged: true},
		{name: "other error kept", err: plain, unchanged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromContext(tt.err, "graph load")
			if tt.unchanged {
				assert.Equal(t, tt.err, got)
				return
			}
			appErr := GetAppError(got)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestErrorHandler_HandleContextErrors(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   ErrorType
	}{
		{"deadline", fmt.Errorf("query handler failed: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, ErrorTypeTimeout},
		{"canceled", context.Canceled, StatusClientClosedRequest, ErrorTypeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handler.Handle(w, r, tt.err)
			}))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, string(tt.wantType), resp.Type)
		})
	}
}

func serve(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	middleware.RequestID(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestErrorHandler_Handle(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)

	rec, resp := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.Handle(w, r, fmt.Errorf("wrapped: %w",
			NewNotFoundError("node").WithDetails(map[string]any{"node_id": "n1"})))
	}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, resp.Error)
	assert.Equal(t, string(ErrorTypeNotFound), resp.Type)
	assert.Equal(t, "node not found", resp.Message)
	assert.Equal(t, "n1", resp.Details["node_id"])
	assert.NotEmpty(t, resp.RequestID)
	assert.NotContains(t, resp.Details, "stack_trace")
}

func TestErrorHandler_PlainError(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		wantMessage string
	}{
		{"hides message", false, "An internal error occurred"},
		{"debug shows message", true, "secret detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewErrorHandler(zap.NewNop(), tt.debug)
			rec, resp := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handler.Handle(w, r, errors.New("secret detail"))
			}))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, string(ErrorTypeInternal), resp.Type)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestErrorHandler_DebugStackTrace(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), true)
	_, resp := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.Handle(w, r, NewValidationError("bad"))
	}))

	assert.Contains(t, resp.Details, "stack_trace")
}

func TestErrorHandler_HandleStatus(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)
	rec, resp := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleStatus(w, r, http.StatusServiceUnavailable, "graph not loaded")
	}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(ErrorTypeUnavailable), resp.Type)
	assert.Equal(t, "graph not loaded", resp.Message)
}

func TestErrorHandler_RecoversPanics(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)
	rec, resp := serve(t, handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "panic: boom", resp.Message)
}
