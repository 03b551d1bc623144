package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/drift/internal/catalog"
	"github.com/leapstack-labs/drift/internal/config"
	"github.com/leapstack-labs/drift/internal/testutil"
	"github.com/leapstack-labs/drift/pkg/core"
)

// seedTestCatalog populates a file-backed catalog the assets command can
// reopen. In-memory catalogs do not survive across connections.
func seedTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")

	store := catalog.NewStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())

	orders := core.TableRef{Schema: "main", Name: "orders"}
	require.NoError(t, store.UpsertTable(orders, []core.Column{
		{Name: "id", Type: "BIGINT", PrimaryKey: true},
		{Name: "total", Type: "DOUBLE"},
	}))
	require.NoError(t, store.SaveSegment(&catalog.Segment{
		Name:      "big_spenders",
		Table:     orders,
		Predicate: "total > 100",
	}))
	require.NoError(t, store.SaveCard(&catalog.Card{
		Name:  "revenue",
		Table: orders,
		Query: core.QueryDef{SQL: "SELECT sum(total) FROM main.orders"},
	}))
	require.NoError(t, store.Close())

	return path
}

func TestAssetsCommand(t *testing.T) {
	config.ResetConfig()
	t.Setenv("DRIFT_CATALOG_PATH", seedTestCatalog(t))

	cmd := NewAssetsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())

	var out assetsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), "output: %s", buf.String())

	assert.Equal(t, 3, out.Count)
	refs := make([]string, 0, len(out.Assets))
	for _, a := range out.Assets {
		refs = append(refs, a.Ref)
	}
	assert.Contains(t, refs, "table:main.orders")
	assert.Contains(t, refs, "segment:big_spenders")
	assert.Contains(t, refs, "card:revenue")
}

func TestAssetsCommandKindFilter(t *testing.T) {
	config.ResetConfig()
	t.Setenv("DRIFT_CATALOG_PATH", seedTestCatalog(t))

	cmd := NewAssetsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--kind", "segment"})

	require.NoError(t, cmd.Execute())

	var out assetsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Equal(t, 1, out.Count)
	assert.Equal(t, "segment:big_spenders", out.Assets[0].Ref)
	assert.Equal(t, "total > 100", out.Assets[0].Detail)
}

func TestAssetsCommandTableMode(t *testing.T) {
	config.ResetConfig()
	t.Setenv("DRIFT_CATALOG_PATH", seedTestCatalog(t))
	t.Setenv("DRIFT_OUTPUT", "table")

	cmd := NewAssetsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "REF")
	assert.Contains(t, output, "table:main.orders")
	assert.Contains(t, output, "(3 assets)")
}

func TestAssetsCommandEmptyCatalog(t *testing.T) {
	config.ResetConfig()
	t.Setenv("DRIFT_CATALOG_PATH", ":memory:")
	t.Setenv("DRIFT_OUTPUT", "table")

	cmd := NewAssetsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No assets in catalog")
}

func TestAssetsCommandMarkdownMode(t *testing.T) {
	config.ResetConfig()
	t.Setenv("DRIFT_CATALOG_PATH", seedTestCatalog(t))
	t.Setenv("DRIFT_OUTPUT", "markdown")

	cmd := NewAssetsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "# Catalog Assets")
	assert.Contains(t, output, "- **Count:** 3")
	assert.Contains(t, output, "| segment:big_spenders | segment |")
}
