package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drepwatch/drepscore/internal/scoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Invalid request body", "drep_id is required")

	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.False(t, err.Timestamp.IsZero())
}

func TestNewContractError(t *testing.T) {
	cerr := &scoring.ContractError{Field: "eligible_proposals", Msg: "must not be negative"}
	err := NewContractError(cerr)

	assert.Equal(t, CategoryContract, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Contains(t, err.Error(), "CONTRACT_VIOLATION")

	var unwrapped *scoring.ContractError
	assert.True(t, errors.As(err, &unwrapped))
}

func TestNewRateLimitError(t *testing.T) {
	err := NewRateLimitError("30")

	assert.Equal(t, CategoryRateLimit, err.Category)
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatus)
	assert.Contains(t, err.Error(), "RATE_LIMIT_EXCEEDED")
}

func TestAppErrorJSONShape(t *testing.T) {
	t.Run("validation error without a cause renders cleanly", func(t *testing.T) {
		body, err := json.Marshal(NewValidationError("Invalid request body", "drep_id is required"))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "validation", got["category"])
		assert.Equal(t, float64(http.StatusBadRequest), got["http_status"])
		assert.Equal(t, "VALIDATION_ERROR", got["code"])
		assert.Equal(t, "Invalid request body", got["message"])
		assert.Equal(t, map[string]any{"validation_details": "drep_id is required"}, got["details"])
	})

	t.Run("rate limit error without a cause renders cleanly", func(t *testing.T) {
		body, err := json.Marshal(NewRateLimitError("30"))
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "rate_limit", got["category"])
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", got["code"])
		assert.Equal(t, map[string]any{"retry_after": "30"}, got["details"])
	})

	t.Run("contract error carries the offending field", func(t *testing.T) {
		appErr := NewContractError(&scoring.ContractError{Field: "eligible_proposals", Msg: "must not be negative"})
		appErr.RequestID = "req-42"

		body, err := json.Marshal(appErr)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "contract", got["category"])
		assert.Equal(t, "CONTRACT_VIOLATION", got["code"])
		assert.Equal(t, "req-42", got["request_id"])
		assert.Equal(t, map[string]any{"eligible_proposals": "must not be negative"}, got["details"])
	})
}

func TestToAppError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, ToAppError(nil))
	})

	t.Run("AppError passes through unchanged", func(t *testing.T) {
		original := NewValidationError("boom")
		assert.Same(t, original, ToAppError(original))
	})

	t.Run("contract violation maps to 400", func(t *testing.T) {
		cerr := &scoring.ContractError{Field: "votes", Msg: "vote newer than current epoch"}
		appErr := ToAppError(fmt.Errorf("scoring failed: %w", cerr))

		assert.Equal(t, CategoryContract, appErr.Category)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	})

	t.Run("unknown error maps to 500", func(t *testing.T) {
		appErr := ToAppError(errors.New("disk on fire"))

		assert.Equal(t, CategoryInternal, appErr.Category)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	})
}

func TestErrorHandlerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(&scoring.ContractError{Field: "eligible_proposals", Msg: "must not be negative"})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "contract")
}

func TestRecoveryHandlerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryHandler())
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal")
}
