package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "#12": 12, " 7 ": 7, "#0042": 42} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "#", "abc", "1.5", "0", "-3", "TASK-ABCDE"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "#5", Format(5))

	n, err := Parse(Format(31))
	require.NoError(t, err)
	assert.Equal(t, 31, n)
}
