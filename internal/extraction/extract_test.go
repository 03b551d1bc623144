package extraction

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/leapstack-labs/drift/pkg/core"
)

// fakeSource serves a canned dataset and records the last request.
type fakeSource struct {
	dataset *core.Dataset
	err     error

	lastRef   core.DatasetRef
	lastQuery core.QueryDef
	lastOpts  core.QueryOptions
}

func (f *fakeSource) Fetch(_ context.Context, ref core.DatasetRef, opts core.QueryOptions) (*core.Dataset, error) {
	f.lastRef = ref
	f.lastOpts = opts
	return f.dataset, f.err
}

func (f *fakeSource) Execute(_ context.Context, q core.QueryDef, opts core.QueryOptions) (*core.Dataset, error) {
	f.lastQuery = q
	f.lastOpts = opts
	return f.dataset, f.err
}

func rowsOfInts(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{i}
	}
	return rows
}

func TestExtract_Column(t *testing.T) {
	col := core.Column{Name: "total", Type: "DOUBLE"}
	table := core.TableRef{Schema: "main", Name: "orders"}
	source := &fakeSource{dataset: &core.Dataset{
		Cols: []core.Column{col},
		Rows: [][]any{{1.0}, {2.0}, {nil}},
	}}
	factory := newCountingFactory()
	e := New(source, factory, NewPolicy(0), nil)

	ext, err := e.Extract(context.Background(), core.Options{}, core.ColumnAsset{Table: table, Column: col})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if got := source.lastRef.Columns; !reflect.DeepEqual(got, []core.Column{col}) {
		t.Errorf("fetched columns = %v, want just the asset column", got)
	}
	if ext.Constituents != nil {
		t.Error("column extraction should have no constituents")
	}
	if ext.Features["count"] != 3 {
		t.Errorf("reducer count = %v, want 3", ext.Features["count"])
	}
	if ext.Features["table"] != table {
		t.Errorf("table feature = %v, want %v", ext.Features["table"], table)
	}
}

func TestExtract_ColumnIgnoresExclusionFlags(t *testing.T) {
	// A primary key is still fingerprintable when it is the asset itself.
	col := core.Column{Name: "id", PrimaryKey: true}
	source := &fakeSource{dataset: &core.Dataset{
		Cols: []core.Column{col},
		Rows: [][]any{{1}, {2}},
	}}
	factory := newCountingFactory()
	e := New(source, factory, NewPolicy(0), nil)

	ext, err := e.Extract(context.Background(), core.Options{}, core.ColumnAsset{Column: col})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if ext.Features["count"] != 2 {
		t.Errorf("reducer count = %v, want 2", ext.Features["count"])
	}
}

func TestExtract_Table(t *testing.T) {
	table := core.TableRef{Name: "orders"}
	cols := []core.Column{
		{Name: "id", PrimaryKey: true},
		{Name: "total"},
		{Name: "status"},
	}
	source := &fakeSource{dataset: &core.Dataset{
		Cols: cols,
		Rows: [][]any{{1, 9.5, "paid"}, {2, 3.0, "open"}},
	}}
	e := New(source, newCountingFactory(), NewPolicy(0), nil)

	ext, err := e.Extract(context.Background(), core.Options{}, core.TableAsset{Table: table, Columns: cols})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if got := ext.Constituents.Names(); !reflect.DeepEqual(got, []string{"total", "status"}) {
		t.Errorf("constituents = %v, want [total status]", got)
	}
	want := core.FeatureSet{"table": table}
	if !reflect.DeepEqual(ext.Features, want) {
		t.Errorf("features = %v, want %v", ext.Features, want)
	}
	if ext.Dataset != nil {
		t.Error("table extraction should not carry the raw dataset")
	}
}

func TestExtract_Segment(t *testing.T) {
	table := core.TableRef{Name: "orders"}
	cols := []core.Column{{Name: "total"}}
	source := &fakeSource{dataset: &core.Dataset{
		Cols: cols,
		Rows: [][]any{{100.0}},
	}}
	e := New(source, newCountingFactory(), NewPolicy(0), nil)

	asset := core.SegmentAsset{
		SegmentName: "big_spenders",
		Table:       table,
		Columns:     cols,
		Predicate:   "total > 100",
	}
	ext, err := e.Extract(context.Background(), core.Options{}, asset)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if source.lastRef.Where != "total > 100" {
		t.Errorf("fetch predicate = %q, want the segment predicate", source.lastRef.Where)
	}
	if ext.Features["segment"] != "big_spenders" {
		t.Errorf("segment feature = %v", ext.Features["segment"])
	}
	if ext.Features["table"] != table {
		t.Errorf("table feature = %v", ext.Features["table"])
	}
}

func TestExtract_Card(t *testing.T) {
	table := core.TableRef{Name: "orders"}
	source := &fakeSource{dataset: &core.Dataset{
		Cols: []core.Column{{Name: "category", Type: "VARCHAR"}, {Name: "cnt", Type: "BIGINT"}},
		Rows: [][]any{{"widgets", int64(7)}, {"gadgets", int64(3)}},
	}}
	factory := newCountingFactory()
	e := New(source, factory, NewPolicy(0), nil)

	asset := core.CardAsset{
		CardName: "orders_by_category",
		Table:    table,
		Query: core.QueryDef{
			SQL:        "SELECT category, count(*) AS cnt FROM orders GROUP BY 1",
			Metrics:    []string{"cnt"},
			Dimensions: []string{"category"},
		},
	}
	ext, err := e.Extract(context.Background(), core.Options{}, asset)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if source.lastQuery.SQL != asset.Query.SQL {
		t.Errorf("executed SQL = %q", source.lastQuery.SQL)
	}

	// Hints tag category as the breakout and cnt as the aggregation, which
	// makes the result's own column order the aligned pair.
	pair, ok := factory.pairs["category/cnt"]
	if !ok {
		t.Fatalf("pair reducer not built; got %v", factory.pairs)
	}
	if pair.steps != 2 {
		t.Errorf("pair reducer saw %d rows, want 2", pair.steps)
	}
	if got := pair.values[0]; !reflect.DeepEqual(got, []any{"widgets", int64(7)}) {
		t.Errorf("first aligned row = %v", got)
	}

	if ext.Features["card"] != "orders_by_category" {
		t.Errorf("card feature = %v", ext.Features["card"])
	}
	if ext.Features["table"] != table {
		t.Errorf("table feature = %v", ext.Features["table"])
	}
	if got := ext.Constituents.Names(); !reflect.DeepEqual(got, []string{"category", "cnt"}) {
		t.Errorf("constituents = %v, want the full result columns", got)
	}
	if ext.Dataset == nil {
		t.Error("card extraction should carry the raw dataset")
	}
}

func TestExtract_CardKeepsWarehouseRoles(t *testing.T) {
	// Every column already carries a role; hints must not re-tag.
	source := &fakeSource{dataset: &core.Dataset{
		Cols: []core.Column{
			{Name: "category", Role: core.RoleBreakout},
			{Name: "cnt", Role: core.RoleAggregation},
		},
		Rows: [][]any{{"a", 1}},
	}}
	factory := newCountingFactory()
	e := New(source, factory, NewPolicy(0), nil)

	asset := core.CardAsset{
		CardName: "c",
		Query: core.QueryDef{
			SQL: "SELECT 1",
			// Deliberately contradictory hints.
			Metrics:    []string{"category"},
			Dimensions: []string{"cnt"},
		},
	}
	if _, err := e.Extract(context.Background(), core.Options{}, asset); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, ok := factory.pairs["category/cnt"]; !ok {
		t.Errorf("pair = %v, want category/cnt from warehouse roles", factory.pairs)
	}
}

func TestExtract_CardSecondBreakoutFallback(t *testing.T) {
	source := &fakeSource{dataset: &core.Dataset{
		Cols: []core.Column{
			{Name: "region", Role: core.RoleBreakout},
			{Name: "category", Role: core.RoleBreakout},
		},
		Rows: [][]any{{"eu", "widgets"}},
	}}
	factory := newCountingFactory()
	e := New(source, factory, NewPolicy(0), nil)

	asset := core.CardAsset{CardName: "c", Query: core.QueryDef{SQL: "SELECT 1"}}
	if _, err := e.Extract(context.Background(), core.Options{}, asset); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, ok := factory.pairs["region/category"]; !ok {
		t.Errorf("pair = %v, want region/category breakout fallback", factory.pairs)
	}
}

func TestExtract_CardNoRelatedPair(t *testing.T) {
	tests := []struct {
		name string
		cols []core.Column
	}{
		{"no roles at all", []core.Column{{Name: "a"}, {Name: "b"}}},
		{"single breakout only", []core.Column{{Name: "a", Role: core.RoleBreakout}}},
		{"aggregation without breakout", []core.Column{{Name: "a", Role: core.RoleAggregation}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{dataset: &core.Dataset{Cols: tt.cols, Rows: [][]any{}}}
			e := New(source, newCountingFactory(), NewPolicy(0), nil)

			asset := core.CardAsset{CardName: "c", Query: core.QueryDef{SQL: "SELECT 1"}}
			_, err := e.Extract(context.Background(), core.Options{}, asset)
			if !errors.Is(err, ErrNoRelatedPair) {
				t.Errorf("err = %v, want ErrNoRelatedPair", err)
			}
		})
	}
}

func TestExtract_SampleFlag(t *testing.T) {
	sampling := core.Options{MaxCost: core.MaxCost{Query: core.CostQuerySample}}

	tests := []struct {
		name string
		opts core.Options
		rows int
		want bool
	}{
		{"sampling at cap", sampling, 10000, true},
		{"sampling below cap", sampling, 9999, false},
		{"full scan at cap", core.Options{MaxCost: core.MaxCost{Query: core.CostQueryFullScan}}, 10000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{dataset: &core.Dataset{
				Cols: []core.Column{{Name: "v"}},
				Rows: rowsOfInts(tt.rows),
			}}
			e := New(source, newCountingFactory(), NewPolicy(10000), nil)

			ext, err := e.Extract(context.Background(), tt.opts, core.TableAsset{Table: core.TableRef{Name: "t"}})
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if ext.Sample != tt.want {
				t.Errorf("Sample = %v, want %v", ext.Sample, tt.want)
			}

			wantLimit := 0
			if e.policy.ShouldSample(tt.opts.MaxCost) {
				wantLimit = 10000
			}
			if source.lastOpts.Limit != wantLimit {
				t.Errorf("fetch limit = %d, want %d", source.lastOpts.Limit, wantLimit)
			}
		})
	}
}

func TestExtract_SourceErrorPropagates(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("connection refused")}
	e := New(source, newCountingFactory(), NewPolicy(0), nil)

	_, err := e.Extract(context.Background(), core.Options{}, core.TableAsset{Table: core.TableRef{Name: "t"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, source.err) {
		t.Errorf("source error not wrapped: %v", err)
	}
}

func TestExtract_PairReducerGetsQuery(t *testing.T) {
	source := &fakeSource{dataset: &core.Dataset{
		Cols: []core.Column{
			{Name: "d", Role: core.RoleBreakout},
			{Name: "m", Role: core.RoleAggregation},
		},
		Rows: [][]any{{"a", 1}},
	}}

	var gotOpts core.Options
	factory := &optsRecordingFactory{onPair: func(opts core.Options) { gotOpts = opts }}
	e := New(source, factory, NewPolicy(0), nil)

	q := core.QueryDef{SQL: "SELECT d, m FROM t"}
	asset := core.CardAsset{CardName: "c", Query: q}
	if _, err := e.Extract(context.Background(), core.Options{}, asset); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if gotOpts.Query == nil || gotOpts.Query.SQL != q.SQL {
		t.Errorf("pair reducer options carry %v, want the card query", gotOpts.Query)
	}
}

// optsRecordingFactory captures the options handed to Pair.
type optsRecordingFactory struct {
	onPair func(core.Options)
}

func (f *optsRecordingFactory) Column(_ core.Options, _ core.Column) core.Reducer {
	return &countingReducer{}
}

func (f *optsRecordingFactory) Pair(opts core.Options, _, _ core.Column) core.Reducer {
	f.onPair(opts)
	return &countingReducer{}
}
