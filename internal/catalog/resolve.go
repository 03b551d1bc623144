package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/drift/pkg/core"
)

// ResolveAsset turns an asset reference into an extractable asset. The
// reference syntax is "kind:name":
//
//	table:orders            table:shop.orders
//	column:orders.total     column:shop.orders.total
//	segment:big_spenders
//	card:revenue_by_month
//
// A bare reference without a kind prefix resolves as a table.
func (s *Store) ResolveAsset(ref string) (core.Asset, error) {
	kind, name := "table", ref
	if i := strings.Index(ref, ":"); i >= 0 {
		kind, name = ref[:i], ref[i+1:]
	}
	if name == "" {
		return nil, fmt.Errorf("empty asset reference %q", ref)
	}

	switch kind {
	case "table":
		return s.resolveTable(name)
	case "column":
		return s.resolveColumn(name)
	case "segment":
		return s.resolveSegment(name)
	case "card":
		return s.resolveCard(name)
	default:
		return nil, fmt.Errorf("unknown asset kind %q in reference %q (want table, column, segment, or card)", kind, ref)
	}
}

func (s *Store) resolveTable(name string) (core.Asset, error) {
	def, err := s.GetTable(parseTableRef(name))
	if err != nil {
		return nil, err
	}
	return core.TableAsset{Table: def.Table, Columns: def.Columns}, nil
}

func (s *Store) resolveColumn(name string) (core.Asset, error) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return nil, fmt.Errorf("column reference %q needs a table, like column:orders.total", name)
	}
	tableRef, columnName := parseTableRef(name[:i]), name[i+1:]

	def, err := s.GetTable(tableRef)
	if err != nil {
		return nil, err
	}
	for _, col := range def.Columns {
		if col.Name == columnName {
			return core.ColumnAsset{Table: def.Table, Column: col}, nil
		}
	}
	return nil, &NotFoundError{Kind: "column", Name: name}
}

func (s *Store) resolveSegment(name string) (core.Asset, error) {
	seg, err := s.GetSegment(name)
	if err != nil {
		return nil, err
	}

	asset := core.SegmentAsset{
		SegmentName: seg.Name,
		Table:       seg.Table,
		Predicate:   seg.Predicate,
	}
	// Column descriptors are optional: without them the warehouse derives
	// names and types at fetch time.
	def, err := s.GetTable(seg.Table)
	var notFound *NotFoundError
	switch {
	case err == nil:
		asset.Table = def.Table
		asset.Columns = def.Columns
	case errors.As(err, &notFound):
	default:
		return nil, err
	}
	return asset, nil
}

func (s *Store) resolveCard(name string) (core.Asset, error) {
	card, err := s.GetCard(name)
	if err != nil {
		return nil, err
	}
	return core.CardAsset{CardName: card.Name, Table: card.Table, Query: card.Query}, nil
}

// parseTableRef splits an optional "schema.table" qualification.
func parseTableRef(name string) core.TableRef {
	if parts := strings.SplitN(name, ".", 2); len(parts) == 2 {
		return core.TableRef{Schema: parts[0], Name: parts[1]}
	}
	return core.TableRef{Name: name}
}
