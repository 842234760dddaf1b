package store

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "is": true,
	"it": true, "and": true, "or": true, "with": true, "from": true,
	"by": true, "this": true, "that": true, "as": true, "be": true,
}

// buildMatchQuery preprocesses a natural language query for FTS5.
// Splits on whitespace, removes stopwords and words < 3 chars, trims punctuation,
// joins with " OR ".
func buildMatchQuery(query string) string {
	words := strings.Fields(query)
	var filtered []string
	for _, w := range words {
		// Trim non-letter/digit chars from both ends
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if len(trimmed) < 3 {
			continue
		}
		if stopwords[strings.ToLower(trimmed)] {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	return strings.Join(filtered, " OR ")
}

// Search performs FTS5 search over node names and content.
// Returns an empty slice if the preprocessed query is empty or if the
// FTS table doesn't exist. Time filters in f are Unix millis; zero means unset.
func (s *Store) Search(query string, f SearchFilter) ([]SearchHit, error) {
	matchQuery := buildMatchQuery(query)
	if matchQuery == "" {
		return []SearchHit{}, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	sql := `
		SELECT n.id, n.name, n.tags, fts.rank
		FROM nodes n
		JOIN nodes_fts fts ON n.rowid = fts.rowid
		WHERE nodes_fts MATCH ?
	`
	args := []any{matchQuery}
	if f.CreatedAfter > 0 {
		sql += " AND n.created_at >= ?"
		args = append(args, f.CreatedAfter)
	}
	if f.CreatedBefore > 0 {
		sql += " AND n.created_at <= ?"
		args = append(args, f.CreatedBefore)
	}
	if f.UpdatedAfter > 0 {
		sql += " AND n.updated_at >= ?"
		args = append(args, f.UpdatedAfter)
	}
	if f.UpdatedBefore > 0 {
		sql += " AND n.updated_at <= ?"
		args = append(args, f.UpdatedBefore)
	}
	sql += " ORDER BY fts.rank, n.id LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(sql, args...)
	if err != nil {
		// Gracefully handle missing FTS table
		if strings.Contains(err.Error(), "no such table") {
			return []SearchHit{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var tags *string
		if err := rows.Scan(&h.ID, &h.Name, &tags, &h.Rank); err != nil {
			return nil, err
		}
		h.Tags = decodeTags(tags)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
