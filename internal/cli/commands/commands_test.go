// Package commands_test provides tests for CLI command creation.
package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDiscoverCommand(t *testing.T) {
	cmd := NewDiscoverCommand()

	assert.Equal(t, "discover", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("schema"), "--schema flag should exist")
}

func TestNewAssetsCommand(t *testing.T) {
	cmd := NewAssetsCommand()

	assert.Equal(t, "assets", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("kind"), "--kind flag should exist")

	// Note: --output flag is a global persistent flag on root command, not local
}

func TestNewImportCommand(t *testing.T) {
	cmd := NewImportCommand()

	assert.Equal(t, "import [dir]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("file"), "--file flag should exist")
}

func TestNewFingerprintCommand(t *testing.T) {
	cmd := NewFingerprintCommand()

	assert.Equal(t, "fingerprint <asset-ref>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewCompareCommand(t *testing.T) {
	cmd := NewCompareCommand()

	assert.Equal(t, "compare <asset-a> <asset-b>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// Verify flags exist
	flags := []string{"port", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "this is...", truncate("this is far too long", 10))
}
