package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.Success("Created task #1")
	p.Error("Could not load tasks", errors.New("API error 500"))

	assert.Contains(t, out.String(), "Created task #1")
	assert.NotContains(t, out.String(), "Could not")
	assert.Contains(t, errOut.String(), "Could not load tasks")
	assert.Contains(t, errOut.String(), "API error 500")
}

func TestPrinter_Reported(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)
	assert.False(t, p.Reported())

	p.Success("Created task #1")
	assert.False(t, p.Reported())

	p.Error("Could not load tasks", nil)
	assert.True(t, p.Reported())
}

func TestLatest(t *testing.T) {
	var l Latest
	_, ok := l.Take()
	assert.False(t, ok)

	l.Success("one")
	l.Error("two", errors.New("boom"))

	m, ok := l.Take()
	assert.True(t, ok)
	assert.Equal(t, Message{Kind: KindError, Text: "two: boom"}, m)
	assert.Contains(t, m.Render(), "two: boom")

	_, ok = l.Take()
	assert.False(t, ok)
}
