package warehouse

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drift/pkg/core"
)

func TestUnknownSourceError_Error(t *testing.T) {
	err := &UnknownSourceError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()

	// Check that error message contains important info
	assert.NotEmpty(t, msg, "error message should not be empty")

	// Should mention the type
	assert.Contains(t, msg, "fake_db", "error should mention the unknown type 'fake_db'")

	// Should hint about config
	assert.Contains(t, msg, "drift.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	// Register a mock source
	Register("test_source_internal", func(_ *slog.Logger) Source { return nil })

	assert.True(t, IsRegistered("test_source_internal"), "test_source_internal should be registered after Register()")

	factory, ok := Get("test_source_internal")
	assert.True(t, ok, "Get(test_source_internal) should return true after Register()")
	assert.NotNil(t, factory, "Get(test_source_internal) should return non-nil factory")
}

func TestNewSource_EmptyType(t *testing.T) {
	cfg := core.SourceConfig{
		Type: "",
	}

	_, err := NewSource(cfg, nil)
	require.Error(t, err, "NewSource with empty type should fail")
	assert.Equal(t, "source type not specified", err.Error(), "error message")
}

func TestNewSource_UnknownType(t *testing.T) {
	cfg := core.SourceConfig{
		Type: "no_such_warehouse",
	}

	_, err := NewSource(cfg, nil)
	require.Error(t, err)

	var unknown *UnknownSourceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_warehouse", unknown.Type)
}
