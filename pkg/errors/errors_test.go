package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesPredefined(t *testing.T) {
	err := Clone(ErrNotFound, "query not found")
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrInvalidRole))
	assert.Equal(t, "query not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrAttachmentIO.Code, ErrAttachmentIO.Status, "failed to store completion image")
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrAttachmentIO)
	assert.Equal(t, "failed to store completion image: disk full", err.Error())
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.Equal(t, http.StatusInternalServerError, appErr.Status)
	require.Equal(t, ErrInternal.Code, appErr.Code)

	wrapped := fmt.Errorf("outer: %w", ErrInvalidRole)
	require.Equal(t, ErrInvalidRole, FromError(wrapped))
	require.Nil(t, FromError(nil))
}
