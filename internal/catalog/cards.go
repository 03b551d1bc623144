package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SaveCard inserts or replaces a card definition by name. Metric and
// dimension hints are stored as JSON arrays.
func (s *Store) SaveCard(card *Card) error {
	if s.db == nil {
		return fmt.Errorf("catalog not opened")
	}
	if card.Name == "" {
		return fmt.Errorf("card name is required")
	}
	if card.Query.SQL == "" {
		return fmt.Errorf("card %q needs a query", card.Name)
	}

	if card.ID == "" {
		card.ID = generateID()
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}

	metrics, err := json.Marshal(card.Query.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	dimensions, err := json.Marshal(card.Query.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to encode dimensions: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO cards (id, name, schema_name, table_name, query_sql, metrics, dimensions, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   schema_name = excluded.schema_name,
		   table_name = excluded.table_name,
		   query_sql = excluded.query_sql,
		   metrics = excluded.metrics,
		   dimensions = excluded.dimensions,
		   description = excluded.description`,
		card.ID, card.Name, card.Table.Schema, card.Table.Name, card.Query.SQL,
		string(metrics), string(dimensions), card.Description, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save card %s: %w", card.Name, err)
	}

	s.logger.Debug("card saved", "card", card.Name)
	return nil
}

// GetCard retrieves a card by name.
func (s *Store) GetCard(name string) (*Card, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog not opened")
	}

	card := &Card{}
	var metrics, dimensions string
	err := s.db.QueryRow(
		`SELECT id, name, schema_name, table_name, query_sql, metrics, dimensions, description, created_at FROM cards WHERE name = ?`,
		name,
	).Scan(&card.ID, &card.Name, &card.Table.Schema, &card.Table.Name, &card.Query.SQL,
		&metrics, &dimensions, &card.Description, &card.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "card", Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	if err := json.Unmarshal([]byte(metrics), &card.Query.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics for card %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(dimensions), &card.Query.Dimensions); err != nil {
		return nil, fmt.Errorf("failed to decode dimensions for card %s: %w", name, err)
	}
	return card, nil
}

// ListCards returns all cards ordered by name.
func (s *Store) ListCards() ([]Card, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, name, schema_name, table_name, query_sql, metrics, dimensions, description, created_at FROM cards ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []Card
	for rows.Next() {
		var card Card
		var metrics, dimensions string
		if err := rows.Scan(&card.ID, &card.Name, &card.Table.Schema, &card.Table.Name, &card.Query.SQL,
			&metrics, &dimensions, &card.Description, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if err := json.Unmarshal([]byte(metrics), &card.Query.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics for card %s: %w", card.Name, err)
		}
		if err := json.Unmarshal([]byte(dimensions), &card.Query.Dimensions); err != nil {
			return nil, fmt.Errorf("failed to decode dimensions for card %s: %w", card.Name, err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// DeleteCard removes a card by name.
func (s *Store) DeleteCard(name string) error {
	if s.db == nil {
		return fmt.Errorf("catalog not opened")
	}

	res, err := s.db.Exec(`DELETE FROM cards WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "card", Name: name}
	}
	return nil
}
