package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// scanNode scans a row into a Node. The row must have all 6 columns in standard order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var n Node
	var tags *string
	err := scanner.Scan(&n.ID, &n.Name, &n.Content, &tags, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return n, err
	}
	n.Tags = decodeTags(tags)
	return n, nil
}

// decodeTags parses the JSON tags column. NULL or malformed JSON yields an empty slice.
func decodeTags(raw *string) []string {
	if raw == nil || *raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(*raw), &tags); err != nil {
		return []string{}
	}
	return tags
}

// GetNode returns a single node by ID, or ErrNotFound.
func (s *Store) GetNode(id string) (*Node, error) {
	row := s.conn.QueryRow(`
		SELECT id, name, content, tags, created_at, updated_at
		FROM nodes WHERE id = ?
	`, id)

	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// SearchByIDPrefix finds nodes whose ID starts with the given prefix.
func (s *Store) SearchByIDPrefix(prefix string, limit int) ([]Node, error) {
	rows, err := s.conn.Query(`
		SELECT id, name, content, tags, created_at, updated_at
		FROM nodes WHERE id LIKE ? ORDER BY id LIMIT ?
	`, prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// CreatedAt returns the creation timestamp of a node in Unix millis.
// The second return is false when the node has no timestamp.
func (s *Store) CreatedAt(nodeID string) (int64, bool, error) {
	var created *int64
	err := s.conn.QueryRow(`SELECT created_at FROM nodes WHERE id = ?`, nodeID).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("%w: %s", ErrNotFound, nodeID)
	}
	if err != nil {
		return 0, false, err
	}
	if created == nil {
		return 0, false, nil
	}
	return *created, true, nil
}

// Content returns the textual content of a node. Nodes without content
// return an empty string.
func (s *Store) Content(nodeID string) (string, error) {
	var content *string
	err := s.conn.QueryRow(`SELECT content FROM nodes WHERE id = ?`, nodeID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, nodeID)
	}
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", nil
	}
	return *content, nil
}
