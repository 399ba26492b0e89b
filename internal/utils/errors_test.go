package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("commodity must not be empty")
	assert.Equal(t, "commodity must not be empty", err.Error())

	var valErr *ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("%s exceeds %d characters", "state", 100)
	assert.Equal(t, "state exceeds 100 characters", err.Error())
}
