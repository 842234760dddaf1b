package store

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestStore creates an in-memory SQLite database with the full
// schema, including the FTS index.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}

	_, err = conn.Exec(`
		CREATE TABLE nodes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			content TEXT,
			tags TEXT,
			created_at INTEGER,
			updated_at INTEGER,
			embedding BLOB
		);
		CREATE TABLE edges (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			type TEXT NOT NULL,
			created_at INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE field_values (
			node_id TEXT NOT NULL,
			field_name TEXT NOT NULL,
			value_text TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);
		CREATE VIRTUAL TABLE nodes_fts USING fts5(name, content, content='nodes', content_rowid='rowid');
	`)
	if err != nil {
		t.Fatal(err)
	}

	return &Store{conn: conn, Path: ":memory:"}
}

func insertNode(t *testing.T, s *Store, id, name, content string) {
	t.Helper()
	_, err := s.conn.Exec(
		`INSERT INTO nodes (id, name, content, created_at, updated_at) VALUES (?, ?, ?, 1000, 1000)`,
		id, name, content,
	)
	if err != nil {
		t.Fatal(err)
	}
	var rowid int64
	if err := s.conn.QueryRow(`SELECT rowid FROM nodes WHERE id = ?`, id).Scan(&rowid); err != nil {
		t.Fatal(err)
	}
	_, err = s.conn.Exec(`INSERT INTO nodes_fts (rowid, name, content) VALUES (?, ?, ?)`, rowid, name, content)
	if err != nil {
		t.Fatal(err)
	}
}

func insertEdge(t *testing.T, s *Store, id, source, target string, edgeType EdgeType) {
	t.Helper()
	_, err := s.conn.Exec(
		`INSERT INTO edges (id, source_id, target_id, type, created_at) VALUES (?, ?, ?, ?, 1000)`,
		id, source, target, string(edgeType),
	)
	if err != nil {
		t.Fatal(err)
	}
}

func insertField(t *testing.T, s *Store, nodeID, name, value string, position int) {
	t.Helper()
	_, err := s.conn.Exec(
		`INSERT INTO field_values (node_id, field_name, value_text, position) VALUES (?, ?, ?, ?)`,
		nodeID, name, value, position,
	)
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetNode_Found(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertNode(t, s, "node-1", "Project Plan", "some content")

	n, err := s.GetNode("node-1")
	if err != nil {
		t.Fatal(err)
	}
	if n.Name != "Project Plan" {
		t.Errorf("name = %q, want %q", n.Name, "Project Plan")
	}
	if n.Content == nil || *n.Content != "some content" {
		t.Error("content not loaded")
	}
}

func TestGetNode_NotFound(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	_, err := s.GetNode("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetNode_TagsDecoding(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	_, err := s.conn.Exec(
		`INSERT INTO nodes (id, name, tags) VALUES ('tagged', 'Tagged', '["project","urgent"]'), ('untagged', 'Untagged', NULL)`,
	)
	if err != nil {
		t.Fatal(err)
	}

	tagged, err := s.GetNode("tagged")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged.Tags) != 2 || tagged.Tags[0] != "project" || tagged.Tags[1] != "urgent" {
		t.Errorf("tags = %v, want [project urgent]", tagged.Tags)
	}

	untagged, err := s.GetNode("untagged")
	if err != nil {
		t.Fatal(err)
	}
	if untagged.Tags == nil || len(untagged.Tags) != 0 {
		t.Errorf("NULL tags should decode to empty slice, got %v", untagged.Tags)
	}
}

func TestSearchByIDPrefix(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertNode(t, s, "abc123-one", "One", "")
	insertNode(t, s, "abc123-two", "Two", "")
	insertNode(t, s, "xyz789", "Other", "")

	matches, err := s.SearchByIDPrefix("abc123", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	// Ordered by id
	if matches[0].ID != "abc123-one" || matches[1].ID != "abc123-two" {
		t.Errorf("unexpected order: %s, %s", matches[0].ID, matches[1].ID)
	}
}

func TestEdges_DirectionFiltering(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertNode(t, s, "A", "A", "")
	insertNode(t, s, "B", "B", "")
	insertNode(t, s, "C", "C", "")
	insertEdge(t, s, "e1", "A", "B", EdgeChild)
	insertEdge(t, s, "e2", "C", "A", EdgeReference)

	out, err := s.Edges("A", DirOut, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "e1" {
		t.Errorf("out edges: got %v", out)
	}

	in, err := s.Edges("A", DirIn, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 1 || in[0].ID != "e2" {
		t.Errorf("in edges: got %v", in)
	}

	both, err := s.Edges("A", DirBoth, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(both) != 2 {
		t.Errorf("both edges: expected 2, got %d", len(both))
	}
}

func TestEdges_TypeAllowlist(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertEdge(t, s, "e1", "A", "B", EdgeChild)
	insertEdge(t, s, "e2", "A", "C", EdgeReference)
	insertEdge(t, s, "e3", "A", "D", EdgeField)

	edges, err := s.Edges("A", DirOut, []EdgeType{EdgeChild, EdgeReference})
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	for _, e := range edges {
		if e.Type == EdgeField {
			t.Error("field edge should have been filtered out")
		}
	}
}

func TestEdges_DeterministicOrder(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	// Inserted out of target order on purpose
	insertEdge(t, s, "e3", "A", "Z", EdgeChild)
	insertEdge(t, s, "e1", "A", "B", EdgeChild)
	insertEdge(t, s, "e2", "A", "M", EdgeChild)

	for run := 0; run < 3; run++ {
		edges, err := s.Edges("A", DirOut, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(edges) != 3 {
			t.Fatalf("expected 3 edges, got %d", len(edges))
		}
		if edges[0].TargetID != "B" || edges[1].TargetID != "M" || edges[2].TargetID != "Z" {
			t.Errorf("run %d: expected B,M,Z order, got %s,%s,%s",
				run, edges[0].TargetID, edges[1].TargetID, edges[2].TargetID)
		}
	}
}

func TestFieldValues_Ordering(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertField(t, s, "N", "status", "active", 0)
	insertField(t, s, "N", "assignee", "bob", 1)
	insertField(t, s, "N", "assignee", "alice", 0)

	values, err := s.FieldValues("N")
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	// field_name asc, then position asc
	if values[0].FieldName != "assignee" || values[0].ValueText != "alice" {
		t.Errorf("first value: got %s=%s", values[0].FieldName, values[0].ValueText)
	}
	if values[1].ValueText != "bob" {
		t.Errorf("second value: got %s", values[1].ValueText)
	}
	if values[2].FieldName != "status" {
		t.Errorf("third value: got %s", values[2].FieldName)
	}
}

func TestCreatedAt(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertNode(t, s, "N", "Node", "")
	_, err := s.conn.Exec(`INSERT INTO nodes (id, name) VALUES ('no-ts', 'No Timestamp')`)
	if err != nil {
		t.Fatal(err)
	}

	created, ok, err := s.CreatedAt("N")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || created != 1000 {
		t.Errorf("created = %d ok = %v, want 1000 true", created, ok)
	}

	_, ok, err = s.CreatedAt("no-ts")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("node without timestamp should report ok=false")
	}

	_, _, err = s.CreatedAt("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHasEmbeddings(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	insertNode(t, s, "N", "Node", "")

	has, err := s.HasEmbeddings()
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("expected no embeddings")
	}

	_, err = s.conn.Exec(`UPDATE nodes SET embedding = X'00000000' WHERE id = 'N'`)
	if err != nil {
		t.Fatal(err)
	}

	has, err = s.HasEmbeddings()
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("expected embeddings present")
	}
}
