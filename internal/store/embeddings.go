package store

// HasEmbeddings reports whether any node carries an embedding vector.
// The pipeline surfaces this in document metadata; it never computes
// similarity itself.
func (s *Store) HasEmbeddings() (bool, error) {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM nodes WHERE embedding IS NOT NULL").Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
