package store

// EdgeType classifies a directed link between two nodes.
type EdgeType string

const (
	EdgeChild     EdgeType = "child"
	EdgeParent    EdgeType = "parent"
	EdgeReference EdgeType = "reference"
	EdgeField     EdgeType = "field"
)

// AllEdgeTypes returns every known edge type in a fixed order.
func AllEdgeTypes() []EdgeType {
	return []EdgeType{EdgeChild, EdgeParent, EdgeReference, EdgeField}
}

// Direction selects which edges to follow relative to a node.
type Direction string

const (
	DirOut  Direction = "out"
	DirIn   Direction = "in"
	DirBoth Direction = "both"
)

// Node represents a row in the nodes table.
type Node struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Content   *string  `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt *int64   `json:"created_at"` // Unix millis
	UpdatedAt *int64   `json:"updated_at"` // Unix millis
}

// Edge represents a row in the edges table.
type Edge struct {
	ID        string   `json:"id"`
	SourceID  string   `json:"source_id"`
	TargetID  string   `json:"target_id"`
	Type      EdgeType `json:"type"`
	CreatedAt int64    `json:"created_at"` // Unix millis
}

// FieldValue is one ordered value of a structured field on a node.
type FieldValue struct {
	FieldName string `json:"field_name"`
	ValueText string `json:"value_text"`
	Position  int    `json:"position"`
}

// SearchHit is a single full-text search result.
type SearchHit struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
	Rank float64  `json:"rank"` // FTS5 bm25 rank; lower is better
}

// SearchFilter bounds a full-text search. Zero time values mean unset.
type SearchFilter struct {
	Limit         int
	CreatedAfter  int64 // Unix millis
	CreatedBefore int64
	UpdatedAfter  int64
	UpdatedBefore int64
}
