package store

import (
	"fmt"
	"strings"
)

// scanEdge scans a row into an Edge. The row must have all 5 columns in standard order.
func scanEdge(scanner interface{ Scan(dest ...any) error }) (Edge, error) {
	var e Edge
	err := scanner.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.Type, &e.CreatedAt)
	return e, err
}

// Edges returns the edges touching nodeID, filtered by direction and an
// edge type allowlist (nil or empty means all types). Results are ordered
// by (source_id, target_id, id) so repeated calls are byte-identical.
func (s *Store) Edges(nodeID string, dir Direction, types []EdgeType) ([]Edge, error) {
	var cond string
	args := []any{}

	switch dir {
	case DirOut:
		cond = "source_id = ?"
		args = append(args, nodeID)
	case DirIn:
		cond = "target_id = ?"
		args = append(args, nodeID)
	case DirBoth:
		cond = "(source_id = ? OR target_id = ?)"
		args = append(args, nodeID, nodeID)
	default:
		return nil, fmt.Errorf("unknown direction: %q", dir)
	}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		cond += " AND type IN (" + strings.Join(placeholders, ",") + ")"
	}

	rows, err := s.conn.Query(`
		SELECT id, source_id, target_id, type, created_at
		FROM edges WHERE `+cond+`
		ORDER BY source_id, target_id, id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
