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
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "student not found"))

	appErr := FromError(wrapped)

	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "student not found", appErr.Message)
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "internal server error: boom", appErr.Error())
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrForbidden, "admin only")

	assert.Equal(t, "admin only", clone.Message)
	assert.Equal(t, "forbidden", ErrForbidden.Message)
	assert.Nil(t, FromError(nil))
}

func TestRosterErrorsKeepClientCodes(t *testing.T) {
	assert.Equal(t, ErrNotFound.Code, ErrStudentNotFound.Code)
	assert.Equal(t, ErrForbidden.Code, ErrAdminModeRequired.Code)
	assert.Equal(t, http.StatusConflict, ErrEmailTaken.Status)
	assert.Equal(t, http.StatusUnauthorized, ErrSessionRequired.Status)
}

func TestExportFailureUnwraps(t *testing.T) {
	cause := errors.New("gofpdf: bad font")
	err := fmt.Errorf("handler: %w", Wrap(cause, ErrExportFailed.Code, ErrExportFailed.Status, "failed to render pdf"))

	appErr := FromError(err)
	assert.Equal(t, "EXPORT_FAILED", appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, err, cause)
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(ErrCacheMiss, ErrInternal.Code, ErrInternal.Status, "cache lookup")

	assert.True(t, errors.Is(err, ErrCacheMiss))
}
