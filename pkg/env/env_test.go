package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPrefersPrefixedName(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv(Prefix+"LOG_FORMAT", "json")

	assert.Equal(t, "json", Get("LOG_FORMAT", "text"))
}

func TestGetFallsBackToBareNameThenDefault(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	assert.Equal(t, "console", Get("LOG_FORMAT", "text"))

	t.Setenv("LOG_FORMAT", "  ")
	assert.Equal(t, "text", Get("LOG_FORMAT", "text"))
}
