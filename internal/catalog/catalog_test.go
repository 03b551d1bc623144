package catalog

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leapstack-labs/drift/internal/testutil"
	"github.com/leapstack-labs/drift/pkg/core"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(testutil.NewTestLogger(t))
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	return store
}

func TestStore_OpenClose(t *testing.T) {
	store := NewStore(nil)
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStore_OpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "catalog.db")

	store := NewStore(nil)
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file-backed store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate file-backed store: %v", err)
	}
}

func TestStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	tables := []string{"asset_tables", "asset_columns", "segments", "cards"}
	for _, table := range tables {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		} else {
			rows.Close()
		}
	}
}

func TestStore_TableRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	ref := core.TableRef{Schema: "main", Name: "orders"}
	columns := []core.Column{
		{Name: "id", Type: "BIGINT", PrimaryKey: true},
		{Name: "total", Type: "DOUBLE"},
		{Name: "status", Type: "VARCHAR", Role: core.RoleBreakout},
		{Name: "status_label", Type: "VARCHAR", Remapped: true},
	}

	if err := store.UpsertTable(ref, columns); err != nil {
		t.Fatalf("failed to upsert table: %v", err)
	}

	def, err := store.GetTable(ref)
	if err != nil {
		t.Fatalf("failed to get table: %v", err)
	}
	if def.Table != ref {
		t.Errorf("table ref = %v, want %v", def.Table, ref)
	}
	if !reflect.DeepEqual(def.Columns, columns) {
		t.Errorf("columns = %v, want %v", def.Columns, columns)
	}
}

func TestStore_UpsertTableReplacesColumns(t *testing.T) {
	store := setupTestStore(t)

	ref := core.TableRef{Name: "orders"}
	if err := store.UpsertTable(ref, []core.Column{{Name: "old"}}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.UpsertTable(ref, []core.Column{{Name: "new_a"}, {Name: "new_b"}}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	def, err := store.GetTable(ref)
	if err != nil {
		t.Fatalf("failed to get table: %v", err)
	}
	got := make([]string, len(def.Columns))
	for i, col := range def.Columns {
		got[i] = col.Name
	}
	if !reflect.DeepEqual(got, []string{"new_a", "new_b"}) {
		t.Errorf("columns after re-upsert = %v", got)
	}

	defs, err := store.ListTables()
	if err != nil {
		t.Fatalf("failed to list tables: %v", err)
	}
	if len(defs) != 1 {
		t.Errorf("tables = %d, want 1 after upsert of the same ref", len(defs))
	}
}

func TestStore_GetTableWithoutSchema(t *testing.T) {
	store := setupTestStore(t)

	ref := core.TableRef{Schema: "shop", Name: "orders"}
	if err := store.UpsertTable(ref, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Unqualified lookup finds the single match.
	def, err := store.GetTable(core.TableRef{Name: "orders"})
	if err != nil {
		t.Fatalf("unqualified lookup failed: %v", err)
	}
	if def.Table != ref {
		t.Errorf("table = %v, want %v", def.Table, ref)
	}

	// A second schema makes it ambiguous.
	if err := store.UpsertTable(core.TableRef{Schema: "archive", Name: "orders"}, nil); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := store.GetTable(core.TableRef{Name: "orders"}); err == nil {
		t.Error("expected ambiguity error for unqualified lookup across schemas")
	}
}

func TestStore_TableNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetTable(core.TableRef{Name: "missing"})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Kind != "table" {
		t.Errorf("kind = %q, want table", notFound.Kind)
	}
}

func TestStore_SegmentRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	seg := &Segment{
		Name:        "big_spenders",
		Table:       core.TableRef{Name: "orders"},
		Predicate:   "total > 100",
		Description: "Orders above one hundred",
	}
	if err := store.SaveSegment(seg); err != nil {
		t.Fatalf("failed to save segment: %v", err)
	}
	if seg.ID == "" {
		t.Error("save should assign an ID")
	}

	got, err := store.GetSegment("big_spenders")
	if err != nil {
		t.Fatalf("failed to get segment: %v", err)
	}
	if got.Predicate != seg.Predicate || got.Table != seg.Table || got.Description != seg.Description {
		t.Errorf("segment = %+v, want %+v", got, seg)
	}

	// Saving the same name updates in place.
	seg2 := &Segment{Name: "big_spenders", Table: seg.Table, Predicate: "total > 500"}
	if err := store.SaveSegment(seg2); err != nil {
		t.Fatalf("failed to update segment: %v", err)
	}
	got, err = store.GetSegment("big_spenders")
	if err != nil {
		t.Fatalf("failed to get segment: %v", err)
	}
	if got.Predicate != "total > 500" {
		t.Errorf("predicate after update = %q", got.Predicate)
	}

	segments, err := store.ListSegments()
	if err != nil {
		t.Fatalf("failed to list segments: %v", err)
	}
	if len(segments) != 1 {
		t.Errorf("segments = %d, want 1", len(segments))
	}
}

func TestStore_SegmentValidation(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveSegment(&Segment{Predicate: "x > 1"}); err == nil {
		t.Error("expected error for segment without name")
	}
	if err := store.SaveSegment(&Segment{Name: "s"}); err == nil {
		t.Error("expected error for segment without predicate")
	}
}

func TestStore_CardRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	card := &Card{
		Name:  "revenue_by_category",
		Table: core.TableRef{Name: "orders"},
		Query: core.QueryDef{
			SQL:        "SELECT category, sum(total) AS revenue FROM orders GROUP BY 1",
			Metrics:    []string{"revenue"},
			Dimensions: []string{"category"},
		},
		Description: "Revenue per category",
	}
	if err := store.SaveCard(card); err != nil {
		t.Fatalf("failed to save card: %v", err)
	}

	got, err := store.GetCard("revenue_by_category")
	if err != nil {
		t.Fatalf("failed to get card: %v", err)
	}
	if got.Query.SQL != card.Query.SQL {
		t.Errorf("sql = %q", got.Query.SQL)
	}
	if !reflect.DeepEqual(got.Query.Metrics, card.Query.Metrics) {
		t.Errorf("metrics = %v, want %v", got.Query.Metrics, card.Query.Metrics)
	}
	if !reflect.DeepEqual(got.Query.Dimensions, card.Query.Dimensions) {
		t.Errorf("dimensions = %v, want %v", got.Query.Dimensions, card.Query.Dimensions)
	}

	cards, err := store.ListCards()
	if err != nil {
		t.Fatalf("failed to list cards: %v", err)
	}
	if len(cards) != 1 {
		t.Errorf("cards = %d, want 1", len(cards))
	}
}

func TestStore_CardWithoutHints(t *testing.T) {
	store := setupTestStore(t)

	card := &Card{Name: "plain", Query: core.QueryDef{SQL: "SELECT 1"}}
	if err := store.SaveCard(card); err != nil {
		t.Fatalf("failed to save card: %v", err)
	}

	got, err := store.GetCard("plain")
	if err != nil {
		t.Fatalf("failed to get card: %v", err)
	}
	if got.Query.HasHints() {
		t.Errorf("hints = %v/%v, want none", got.Query.Metrics, got.Query.Dimensions)
	}
}

func TestStore_DeleteSegmentAndCard(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveSegment(&Segment{Name: "s", Predicate: "1=1"}); err != nil {
		t.Fatalf("save segment: %v", err)
	}
	if err := store.DeleteSegment("s"); err != nil {
		t.Fatalf("delete segment: %v", err)
	}
	if err := store.DeleteSegment("s"); err == nil {
		t.Error("expected NotFoundError on second delete")
	}

	if err := store.SaveCard(&Card{Name: "c", Query: core.QueryDef{SQL: "SELECT 1"}}); err != nil {
		t.Fatalf("save card: %v", err)
	}
	if err := store.DeleteCard("c"); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	if err := store.DeleteCard("c"); err == nil {
		t.Error("expected NotFoundError on second delete")
	}
}

func TestNotFoundError_Message(t *testing.T) {
	err := &NotFoundError{Kind: "segment", Name: "missing"}
	msg := err.Error()
	for _, want := range []string{"segment", "missing", "drift"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q should mention %q", msg, want)
		}
	}
}
