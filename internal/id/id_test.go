package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.True(t, Valid(b))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("not-a-uuid"))
}
