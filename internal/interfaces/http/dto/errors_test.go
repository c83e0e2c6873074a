package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeDuplicateSubmission, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBackendUnavailable, http.StatusBadGateway},
		{ErrCodeRenderTimeout, http.StatusGatewayTimeout},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"BACKEND_UNAVAILABLE", ErrCodeBackendUnavailable},
		{"DUPLICATE_SUBMISSION", ErrCodeDuplicateSubmission},
		{"INVALID_MARGINS", ErrCodeInvalidInput},
		{"RENDER_TIMEOUT", ErrCodeRenderTimeout},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestPageResponse(t *testing.T) {
	page := shared.Paginate([]string{"a", "b", "c"}, 2, 2)

	r := NewPageResponse(page, nil)
	assert.True(t, r.Success)
	assert.Equal(t, []string{"c"}, r.Data)
	require.NotNil(t, r.Meta)
	assert.Equal(t, int64(3), r.Meta.Total)
	assert.Equal(t, 2, r.Meta.TotalPages)

	r = NewPageResponse(page, map[string]int{"count": 3})
	assert.Equal(t, map[string]int{"count": 3}, r.Data)
}

func TestErrorResponseJSON(t *testing.T) {
	r := NewErrorResponseWithRequestID(ErrCodeNotFound, "Order not found", "req-1")
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_NOT_FOUND","message":"Order not found","request_id":"req-1"}}`, string(data))

	v := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{{Field: "vehicle_number", Message: "This field is required"}})
	assert.Equal(t, ErrCodeValidation, v.Error.Code)
	assert.Len(t, v.Error.Details, 1)
}

func TestSuccessResponseWithMeta(t *testing.T) {
	r := NewSuccessResponseWithMeta([]int{1}, 41, 1, 20)
	assert.Equal(t, 3, r.Meta.TotalPages)

	r = NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, r.Meta.TotalPages)
}
