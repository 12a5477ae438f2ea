package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCommandsVocabulary(t *testing.T) {
	table := DefaultCommands()

	want := map[string]Command{
		"play":       {Name: "play", Wire: "pl_play", Rule: ArgOptionalFirstAsID},
		"pause":      {Name: "pause", Wire: "pl_pause", Rule: ArgNone},
		"stop":       {Name: "stop", Wire: "pl_stop", Rule: ArgNone},
		"seek":       {Name: "seek", Wire: "seek", Rule: ArgFirstAsValue},
		"volume":     {Name: "volume", Wire: "volume", Rule: ArgFirstAsValue},
		"fullscreen": {Name: "fullscreen", Wire: "fullscreen", Rule: ArgNone},
	}

	assert.Equal(t, []string{"fullscreen", "pause", "play", "seek", "stop", "volume"}, table.Names())
	for name, cmd := range want {
		got, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, cmd, got)
	}

	_, ok := table.Lookup("frobnicate")
	assert.False(t, ok)
}

func TestCommandQuery(t *testing.T) {
	table := DefaultCommands()

	tests := []struct {
		name    string
		command string
		args    []string
		want    string
	}{
		{name: "play with id", command: "play", args: []string{"5"}, want: "command=pl_play&id=5"},
		{name: "play without id", command: "play", want: "command=pl_play"},
		{name: "pause ignores args", command: "pause", args: []string{"1"}, want: "command=pl_pause"},
		{name: "stop", command: "stop", want: "command=pl_stop"},
		{name: "seek", command: "seek", args: []string{"30"}, want: "command=seek&val=30"},
		{name: "seek uses first arg only", command: "seek", args: []string{"+10", "x"}, want: "command=seek&val=+10"},
		{name: "volume", command: "volume", args: []string{"256"}, want: "command=volume&val=256"},
		{name: "fullscreen", command: "fullscreen", want: "command=fullscreen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := table.Lookup(tt.command)
			require.True(t, ok)

			got, err := cmd.Query(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandQueryMissingArgument(t *testing.T) {
	table := DefaultCommands()

	for _, name := range []string{"seek", "volume"} {
		cmd, ok := table.Lookup(name)
		require.True(t, ok)

		_, err := cmd.Query(nil)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrMissingArgument))

		var argErr *ArgumentError
		require.True(t, errors.As(err, &argErr))
		assert.Equal(t, name, argErr.Command)
		assert.Equal(t, 1, argErr.Want)
		assert.Equal(t, 0, argErr.Got)
	}
}

func TestArgFirstAsID(t *testing.T) {
	cmd := Command{Name: "goto", Wire: "pl_play", Rule: ArgFirstAsID}

	got, err := cmd.Query([]string{"7"})
	require.NoError(t, err)
	assert.Equal(t, "command=pl_play&id=7", got)

	_, err = cmd.Query(nil)
	assert.True(t, errors.Is(err, ErrMissingArgument))
}

func TestArgRuleString(t *testing.T) {
	assert.Equal(t, "none", ArgNone.String())
	assert.Equal(t, "first_as_id", ArgFirstAsID.String())
	assert.Equal(t, "first_as_value", ArgFirstAsValue.String())
	assert.Equal(t, "optional_first_as_id", ArgOptionalFirstAsID.String())
	assert.Equal(t, "unknown", ArgRule(42).String())
}
