package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveSegment inserts or replaces a segment definition by name.
func (s *Store) SaveSegment(seg *Segment) error {
	if s.db == nil {
		return fmt.Errorf("catalog not opened")
	}
	if seg.Name == "" {
		return fmt.Errorf("segment name is required")
	}
	if seg.Predicate == "" {
		return fmt.Errorf("segment %q needs a predicate", seg.Name)
	}

	if seg.ID == "" {
		seg.ID = generateID()
	}
	if seg.CreatedAt.IsZero() {
		seg.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO segments (id, name, schema_name, table_name, predicate, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   schema_name = excluded.schema_name,
		   table_name = excluded.table_name,
		   predicate = excluded.predicate,
		   description = excluded.description`,
		seg.ID, seg.Name, seg.Table.Schema, seg.Table.Name, seg.Predicate, seg.Description, seg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save segment %s: %w", seg.Name, err)
	}

	s.logger.Debug("segment saved", "segment", seg.Name, "table", seg.Table.String())
	return nil
}

// GetSegment retrieves a segment by name.
func (s *Store) GetSegment(name string) (*Segment, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog not opened")
	}

	seg := &Segment{}
	err := s.db.QueryRow(
		`SELECT id, name, schema_name, table_name, predicate, description, created_at FROM segments WHERE name = ?`,
		name,
	).Scan(&seg.ID, &seg.Name, &seg.Table.Schema, &seg.Table.Name, &seg.Predicate, &seg.Description, &seg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "segment", Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get segment: %w", err)
	}
	return seg, nil
}

// ListSegments returns all segments ordered by name.
func (s *Store) ListSegments() ([]Segment, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, name, schema_name, table_name, predicate, description, created_at FROM segments ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.Name, &seg.Table.Schema, &seg.Table.Name, &seg.Predicate, &seg.Description, &seg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segments: %w", err)
	}
	return segments, nil
}

// DeleteSegment removes a segment by name.
func (s *Store) DeleteSegment(name string) error {
	if s.db == nil {
		return fmt.Errorf("catalog not opened")
	}

	res, err := s.db.Exec(`DELETE FROM segments WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete segment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "segment", Name: name}
	}
	return nil
}
