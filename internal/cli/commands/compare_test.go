package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareCommandTableVsSegment(t *testing.T) {
	setupProject(t)

	out := runCommand(t, NewCompareCommand(), []string{"table:main.orders", "segment:big_spenders"})

	var result compareOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result), "output: %s", out)

	assert.Equal(t, "table:main.orders", result.A)
	assert.Equal(t, "segment:big_spenders", result.B)

	res := result.Result
	require.NotNil(t, res)
	assert.NotEmpty(t, res.ID)
	require.NotNil(t, res.Constituents[0])
	require.NotNil(t, res.Constituents[1])
	assert.Nil(t, res.Overall, "composite comparisons report per-field distances")

	// Fields follow the first asset's constituent order
	require.Len(t, res.Fields, 3)
	assert.Equal(t, "total", res.Fields[0].Field)
	assert.Equal(t, "status", res.Fields[1].Field)
	assert.Equal(t, "created_at", res.Fields[2].Field)
	for _, fd := range res.Fields {
		assert.GreaterOrEqual(t, fd.Distance.Distance, 0.0)
		assert.LessOrEqual(t, fd.Distance.Distance, 1.0)
	}

	assert.NotEmpty(t, result.Descriptions)
}

func TestCompareCommandIdenticalAssets(t *testing.T) {
	setupProject(t)

	out := runCommand(t, NewCompareCommand(), []string{"table:main.orders", "table:main.orders"})

	var result compareOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	res := result.Result
	require.NotNil(t, res)
	assert.False(t, res.Significant)
	assert.Empty(t, res.TopContributors)
	for _, fd := range res.Fields {
		assert.Zero(t, fd.Distance.Distance, "field %s should have zero distance", fd.Field)
		assert.False(t, fd.Significant)
	}
}

func TestCompareCommandColumns(t *testing.T) {
	setupProject(t)

	out := runCommand(t, NewCompareCommand(), []string{"column:main.orders.total", "column:main.orders.total"})

	var result compareOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	res := result.Result
	require.NotNil(t, res)
	assert.Nil(t, res.Fields)
	require.NotNil(t, res.Overall, "leaf comparisons report one overall distance")
	assert.Zero(t, res.Overall.Distance)
	assert.False(t, res.Significant)
}

func TestCompareCommandShapeMismatch(t *testing.T) {
	setupProject(t)

	cmd := NewCompareCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"column:main.orders.total", "table:main.orders"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "composite")
}

func TestCompareCommandTableMode(t *testing.T) {
	t.Setenv("DRIFT_OUTPUT", "table")
	setupProject(t)

	out := runCommand(t, NewCompareCommand(), []string{"table:main.orders", "table:main.orders"})

	assert.Contains(t, out, "table:main.orders vs table:main.orders")
	assert.Contains(t, out, "No significant drift")
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "comparison id:")
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
