// Package assemble orchestrates the context pipeline:
// Resolve → Traverse → Enrich → Score → Budget.
//
// One pipeline execution per call; no state is kept across calls. Every
// per-seed and per-node sub-operation degrades to a skip with a
// diagnostic, so a partially broken graph still yields a best-effort
// document. Only a hard backend failure on the initial resolve
// propagates as an error.
package assemble

import (
	"time"

	"github.com/jcfischer/supertag-cli-sub000/internal/budget"
	"github.com/jcfischer/supertag-cli-sub000/internal/score"
	"github.com/jcfischer/supertag-cli-sub000/internal/store"
	"github.com/jcfischer/supertag-cli-sub000/internal/traverse"
)

// Pipeline constants.
const (
	// hardDepthCap bounds traversal depth regardless of lens or caller.
	hardDepthCap = 5

	// searchSeedLimit is the top-K for free-text seed resolution.
	searchSeedLimit = 5

	// perSeedNodeCap bounds each seed's traversal result.
	perSeedNodeCap = 200

	// headerReserve is the token allowance for document framing.
	headerReserve = 200

	// minPerNode is the smallest useful allocation for one node.
	minPerNode = 100

	// DefaultMaxTokens is the budget used when the caller passes none.
	DefaultMaxTokens = 4000

	// DefaultTimeout bounds one pipeline execution.
	DefaultTimeout = 5 * time.Second

	// enrichConcurrency bounds parallel per-node enrichment.
	enrichConcurrency = 8
)

// Backend is the read surface the pipeline needs. *store.Store
// satisfies it.
type Backend interface {
	traverse.Graph
	SearchByIDPrefix(prefix string, limit int) ([]store.Node, error)
	Search(query string, f store.SearchFilter) ([]store.SearchHit, error)
	FieldValues(nodeID string) ([]store.FieldValue, error)
	CreatedAt(nodeID string) (int64, bool, error)
	Content(nodeID string) (string, error)
	HasEmbeddings() (bool, error)
}

// Options configures one pipeline execution.
type Options struct {
	Workspace string
	Depth     int // 0 means use the lens depth
	MaxTokens int // 0 means DefaultMaxTokens
	Lens      string
	Timeout   time.Duration // 0 means DefaultTimeout
}

// ContextNode is one enriched, scored, budgeted node in the document.
type ContextNode struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Content    string              `json:"content,omitempty"`
	Tags       []string            `json:"tags"`
	Fields     map[string][]string `json:"fields,omitempty"`
	Score      score.Score         `json:"score"`
	Distance   int                 `json:"distance"`
	Path       []string            `json:"path"`
	Created    *int64              `json:"created,omitempty"` // Unix millis
	Tokens     int                 `json:"tokens"`
	Summarized bool                `json:"summarized,omitempty"`
}

// Meta describes one assembled document.
type Meta struct {
	DocumentID          string       `json:"document_id"`
	Query               string       `json:"query"`
	Workspace           string       `json:"workspace,omitempty"`
	Lens                string       `json:"lens"`
	Backend             string       `json:"backend"`
	EmbeddingsAvailable bool         `json:"embeddings_available"`
	AnchorID            string       `json:"anchor_id,omitempty"`
	Partial             bool         `json:"partial,omitempty"`
	GeneratedAt         time.Time    `json:"generated_at"`
	Tokens              budget.Usage `json:"tokens"`
}

// Document is the pipeline's final output.
type Document struct {
	Meta     Meta                 `json:"meta"`
	Nodes    []ContextNode        `json:"nodes"`
	Overflow []budget.OverflowRef `json:"overflow"`
}

// Diagnostic records one skipped sub-operation for the debug channel.
type Diagnostic struct {
	Phase   string `json:"phase"` // resolve, traverse, enrich
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}
