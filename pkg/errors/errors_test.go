package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "webinar not found"))

	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "webinar not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestClonedSentinelsMatchWithIs(t *testing.T) {
	err := Clone(ErrConflict, "review already moderated")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrValidation, map[string]string{"rating": "must be between 1 and 5"})
	assert.Equal(t, "must be between 1 and 5", err.Details["rating"])
	assert.Nil(t, ErrValidation.Details)
}
