package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "/start", want: "start"},
		{in: "/search example.com", want: "search"},
		{in: "/help@nomadly_bot", want: "help"},
		{in: "/my_domains@nomadly_bot extra", want: "my_domains"},
		{in: "plain text", want: "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCommand(tt.in), "input %q", tt.in)
	}
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCommand("/start"))
	assert.True(t, IsCommand("/search example.com"))
	assert.False(t, IsCommand("example.com"))
	assert.False(t, IsCommand(""))
	assert.False(t, IsCommand("start"))
}
