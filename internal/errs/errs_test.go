package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	s := New(CodeParseError, "unexpected byte %q at %d", 'x', 5)
	assert.Equal(t, `PARSE_ERROR: unexpected byte 'x' at 5`, s.Error())
}

func TestStatusErrorWithDetail(t *testing.T) {
	inner := errors.New("boom")
	s := Wrap(CodeMemoryError, "allocation failed", inner)
	assert.Contains(t, s.Error(), "MEMORY_ERROR")
	assert.Contains(t, s.Error(), "allocation failed")
	assert.Contains(t, s.Error(), "boom")
}

func TestIs(t *testing.T) {
	s := New(CodeOutOfRange, "index 9 out of range")
	assert.True(t, Is(s, CodeOutOfRange))
	assert.False(t, Is(s, CodeNotFound))
	assert.False(t, Is(errors.New("plain"), CodeOutOfRange))
}
