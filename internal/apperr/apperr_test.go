package apperr_test

import (
	"errors"
	"testing"

	"github.com/lumenvault/photovault/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	base := apperr.New(apperr.KindNotFound, "catalog.GetPhoto", errors.New("no rows"))
	// Wrapping only the message text (not via %w) leaves no *Error in
	// the chain, so KindOf falls back to KindInternal.
	wrapped := errors.New("wrap: " + base.Error())

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(base))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(wrapped))
}

func TestIs(t *testing.T) {
	err := apperr.Newf(apperr.KindInvalidInput, "browse.Parse", "bad segment %q", "x")
	require.True(t, apperr.Is(err, apperr.KindInvalidInput))
	require.False(t, apperr.Is(err, apperr.KindConflict))
}
