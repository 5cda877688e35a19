package dfilog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopDoesNothing(t *testing.T) {
	assert.NotPanics(t, func() {
		var l Logger = Nop{}
		l.Debugf("x")
		l.Infof("x")
		l.Warnf("x")
		l.Errorf("x")
	})
}

func TestStdWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := NewStd(&buf)
	l.Warnf("field %s missing", "age")
	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "field age missing")
}
