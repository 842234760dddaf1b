package store

// FieldValues returns all structured field values for a node, ordered by
// field name and then by position within the field.
func (s *Store) FieldValues(nodeID string) ([]FieldValue, error) {
	rows, err := s.conn.Query(`
		SELECT field_name, value_text, position
		FROM field_values WHERE node_id = ?
		ORDER BY field_name, position
	`, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []FieldValue
	for rows.Next() {
		var v FieldValue
		if err := rows.Scan(&v.FieldName, &v.ValueText, &v.Position); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
