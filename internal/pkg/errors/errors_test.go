package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("%w: quiz_not_found", ErrNotFound)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))

	deeper := fmt.Errorf("load quiz: %w", wrapped)
	assert.True(t, errors.Is(deeper, wrapped))
	assert.True(t, errors.Is(deeper, ErrNotFound))
}
