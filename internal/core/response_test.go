// AngelaMos | 2026
// response_test.go

package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONErrorEnvelope(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/users/42", nil)
	w := httptest.NewRecorder()

	JSONError(w, r, NotFoundError("User not found with id: 42"))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Equal(t, "Not Found", body.Error)
	assert.Equal(t, "User not found with id: 42", body.Message)
	assert.Equal(t, "/api/users/42", body.Path)
	assert.Empty(t, body.FieldErrors)
}

func TestJSONErrorHidesInternalCause(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	w := httptest.NewRecorder()

	JSONError(w, r, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestJSONErrorFieldErrors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	w := httptest.NewRecorder()

	JSONError(w, r, ValidationError(map[string]string{
		"email": "email must be a valid email address",
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "email must be a valid email address", body.FieldErrors["email"])
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

type signupForm struct {
	Email string `validate:"required,email"`
	Role  string `validate:"required,oneof=ADMIN DEVELOPER"`
	Name  string `validate:"max=5"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(signupForm{Email: "nope", Name: "far too long"})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "Email must be a valid email address", fields["Email"])
	assert.Equal(t, "Role is required", fields["Role"])
	assert.Equal(t, "Name must be at most 5 characters", fields["Name"])
}

func TestFormatValidationErrorFallback(t *testing.T) {
	fields := FormatValidationError(errors.New("body is empty"))
	assert.Equal(t, map[string]string{"request": "body is empty"}, fields)
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}
