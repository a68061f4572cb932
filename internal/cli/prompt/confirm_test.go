package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswer(t *testing.T) {
	assert.True(t, parseAnswer("y", false))
	assert.True(t, parseAnswer(" YES ", false))
	assert.False(t, parseAnswer("n", true))
	assert.False(t, parseAnswer("maybe", true))
	assert.True(t, parseAnswer("", true))
	assert.False(t, parseAnswer("", false))
}

func TestConfirmWithForce(t *testing.T) {
	ok, err := ConfirmWithForce("Overwrite?", true)
	assert.NoError(t, err)
	assert.True(t, ok)
}
