package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("order %d not found", 7)
	wrapped := fmt.Errorf("generate report: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "order 7 not found", MessageOf(wrapped, "x"))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, Is(nil, KindInternal))
	assert.Equal(t, "fallback", MessageOf(err, "fallback"))
}

func TestIntegrityUnwrap(t *testing.T) {
	cause := errors.New("record not found")
	err := Integrity(cause, "order %d references missing patient %d", 1, 2)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "integrity")
	assert.Contains(t, err.Error(), "missing patient 2")
}
