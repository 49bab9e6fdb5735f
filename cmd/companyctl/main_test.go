package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{
		"--server", "http://directory:8080", "-o", "json",
		"list", "--industry", "Finance", "--sort", "-founded", "--limit", "5", "--local",
	})
	require.NoError(t, err)

	assert.Equal(t, "list", ctx.Command())
	assert.Equal(t, "http://directory:8080", cli.Server)
	assert.Equal(t, "json", cli.Output)
	assert.Equal(t, "Finance", cli.List.Industry)
	assert.Equal(t, "-founded", cli.List.Sort)
	assert.Equal(t, 5, cli.List.Limit)
	assert.Equal(t, 1, cli.List.Page)
	assert.True(t, cli.List.Local)
}

func TestParseRejectsUnknownOutput(t *testing.T) {
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"-o", "xml", "list"})
	assert.Error(t, err)
}

func TestParseGet(t *testing.T) {
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"get", "6f1d3c1e-0b7a-4c55-9a35-2f6c1f0e9a11"})
	require.NoError(t, err)
	assert.Equal(t, "get <id>", ctx.Command())
	assert.Equal(t, "6f1d3c1e-0b7a-4c55-9a35-2f6c1f0e9a11", cli.Get.ID)
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, newLogger(false))
	assert.NotNil(t, newLogger(true))
}
