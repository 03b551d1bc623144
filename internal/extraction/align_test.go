package extraction

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leapstack-labs/drift/pkg/core"
)

func TestAlignFields_Identity(t *testing.T) {
	dim := core.Column{Name: "category", Type: "VARCHAR", Role: core.RoleBreakout}
	metric := core.Column{Name: "total", Type: "DOUBLE", Role: core.RoleAggregation}

	ds := &core.Dataset{
		Cols: []core.Column{dim, metric},
		Rows: [][]any{{"a", 1.0}, {"b", 2.0}},
	}

	got, err := alignFields([2]core.Column{dim, metric}, ds)
	if err != nil {
		t.Fatalf("alignFields returned error: %v", err)
	}
	// Identity: the rows come back untouched, not copied.
	if &got[0] != &ds.Rows[0] {
		t.Error("expected the original rows slice, got a copy")
	}
}

func TestAlignFields_IdentityEmptyRows(t *testing.T) {
	dim := core.Column{Name: "category"}
	metric := core.Column{Name: "total"}

	ds := &core.Dataset{Cols: []core.Column{dim, metric}, Rows: nil}

	got, err := alignFields([2]core.Column{dim, metric}, ds)
	if err != nil {
		t.Fatalf("alignFields returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
}

func TestAlignFields_Projection(t *testing.T) {
	a := core.Column{Name: "a"}
	b := core.Column{Name: "b"}
	c := core.Column{Name: "c"}

	ds := &core.Dataset{
		Cols: []core.Column{a, b, c},
		Rows: [][]any{
			{1, "x", 10.0},
			{2, "y", 20.0},
			{3, "z", 30.0},
		},
	}

	got, err := alignFields([2]core.Column{c, a}, ds)
	if err != nil {
		t.Fatalf("alignFields returned error: %v", err)
	}

	want := [][]any{{10.0, 1}, {20.0, 2}, {30.0, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aligned rows = %v, want %v", got, want)
	}
}

func TestAlignFields_FirstMatchWins(t *testing.T) {
	// Two columns share a descriptor; the projection must use the first.
	dup := core.Column{Name: "v"}
	other := core.Column{Name: "w"}

	ds := &core.Dataset{
		Cols: []core.Column{other, dup, dup},
		Rows: [][]any{{"skip", "first", "second"}},
	}

	got, err := alignFields([2]core.Column{dup, other}, ds)
	if err != nil {
		t.Fatalf("alignFields returned error: %v", err)
	}
	if got[0][0] != "first" {
		t.Errorf("projection picked %v, want the first matching column", got[0][0])
	}
}

func TestAlignFields_WiderIdentityNotTaken(t *testing.T) {
	// Cols match the target pair only after reordering; rows must be
	// projected even though both fields are present.
	dim := core.Column{Name: "category"}
	metric := core.Column{Name: "total"}

	ds := &core.Dataset{
		Cols: []core.Column{metric, dim},
		Rows: [][]any{{5.0, "a"}},
	}

	got, err := alignFields([2]core.Column{dim, metric}, ds)
	if err != nil {
		t.Fatalf("alignFields returned error: %v", err)
	}
	want := [][]any{{"a", 5.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aligned rows = %v, want %v", got, want)
	}
}

func TestAlignFields_MissingField(t *testing.T) {
	present := core.Column{Name: "present"}
	missing := core.Column{Name: "missing"}

	ds := &core.Dataset{
		Cols: []core.Column{present},
		Rows: [][]any{{1}},
	}

	_, err := alignFields([2]core.Column{present, missing}, ds)
	if err == nil {
		t.Fatal("expected error for missing field")
	}
	var fieldErr *FieldNotInDatasetError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldNotInDatasetError, got %T", err)
	}
	if fieldErr.Field != missing {
		t.Errorf("error field = %v, want %v", fieldErr.Field, missing)
	}
}

func TestAlignFields_RoleDistinguishesDescriptors(t *testing.T) {
	// Equality is on the whole descriptor, so a role mismatch is a miss.
	tagged := core.Column{Name: "v", Role: core.RoleBreakout}
	untagged := core.Column{Name: "v"}
	other := core.Column{Name: "w"}

	ds := &core.Dataset{
		Cols: []core.Column{untagged, other},
		Rows: [][]any{{1, 2}},
	}

	_, err := alignFields([2]core.Column{tagged, other}, ds)
	var fieldErr *FieldNotInDatasetError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldNotInDatasetError, got %v", err)
	}
}
