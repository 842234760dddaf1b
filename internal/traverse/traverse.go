// Package traverse implements bounded-depth BFS over the typed edge graph.
package traverse

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jcfischer/supertag-cli-sub000/internal/store"
)

// ErrNodeNotFound is returned when the traversal source does not exist.
var ErrNodeNotFound = errors.New("traversal source not found")

// Graph is the read surface the engine needs. *store.Store satisfies it.
type Graph interface {
	GetNode(id string) (*store.Node, error)
	Edges(nodeID string, dir store.Direction, types []store.EdgeType) ([]store.Edge, error)
}

// Query describes one traversal run.
type Query struct {
	SourceID    string
	Direction   store.Direction
	Types       []store.EdgeType // nil or empty means all types
	MaxDepth    int              // >= 1
	ResultLimit int              // >= 1
}

// Relationship records how a node was first discovered.
type Relationship struct {
	Type      store.EdgeType  `json:"type"`
	Direction store.Direction `json:"direction"` // out or in, relative to the discovering frontier node
	Distance  int             `json:"distance"`  // hop count >= 1
	Path      []string        `json:"path"`      // node ids from source to this node, inclusive
}

// RelatedNode is one node reached by traversal.
type RelatedNode struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Tags []string     `json:"tags"`
	Rel  Relationship `json:"relationship"`
}

// Result holds one traversal run's output. Related excludes the source
// node; callers that want it must add it at distance 0 themselves.
type Result struct {
	Source    *store.Node   `json:"source"`
	Related   []RelatedNode `json:"related"`
	Truncated bool          `json:"truncated"`
	Count     int           `json:"count"`
}

// Run performs a level-order BFS from q.SourceID. Nodes are discovered
// in ascending-id order within each level, a node is never re-recorded
// at a larger distance, and hitting ResultLimit sets Truncated and
// stops discovery without dropping already-collected nodes.
func Run(g Graph, q Query) (*Result, error) {
	if q.MaxDepth < 1 {
		q.MaxDepth = 1
	}
	if q.ResultLimit < 1 {
		q.ResultLimit = 1
	}

	source, err := g.GetNode(q.SourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, q.SourceID)
		}
		return nil, err
	}

	result := &Result{Source: source}

	visited := map[string]bool{q.SourceID: true}
	paths := map[string][]string{q.SourceID: {q.SourceID}}
	frontier := []string{q.SourceID}

	for depth := 1; depth <= q.MaxDepth && len(frontier) > 0 && !result.Truncated; depth++ {
		sort.Strings(frontier)
		var next []string

		for _, current := range frontier {
			if result.Truncated {
				break
			}

			edges, err := g.Edges(current, q.Direction, q.Types)
			if err != nil {
				continue
			}

			// Explicit neighbor-id sort so expansion order never depends
			// on store iteration order.
			type candidate struct {
				neighbor string
				dir      store.Direction
				edge     store.Edge
			}
			candidates := make([]candidate, 0, len(edges))
			for _, edge := range edges {
				neighbor, edgeDir := otherEndpoint(edge, current)
				if q.Direction != store.DirBoth && edgeDir != q.Direction {
					continue
				}
				candidates = append(candidates, candidate{neighbor, edgeDir, edge})
			}
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].neighbor != candidates[j].neighbor {
					return candidates[i].neighbor < candidates[j].neighbor
				}
				return candidates[i].edge.ID < candidates[j].edge.ID
			})

			for _, c := range candidates {
				neighbor, edgeDir, edge := c.neighbor, c.dir, c.edge
				if visited[neighbor] {
					continue
				}

				if len(result.Related) >= q.ResultLimit {
					result.Truncated = true
					break
				}

				node, err := g.GetNode(neighbor)
				if err != nil {
					// Dangling edge: mark seen so it is not retried at
					// a deeper level, but record nothing.
					visited[neighbor] = true
					continue
				}

				visited[neighbor] = true
				path := append(append([]string{}, paths[current]...), neighbor)
				paths[neighbor] = path

				result.Related = append(result.Related, RelatedNode{
					ID:   node.ID,
					Name: node.Name,
					Tags: node.Tags,
					Rel: Relationship{
						Type:      edge.Type,
						Direction: edgeDir,
						Distance:  depth,
						Path:      path,
					},
				})
				next = append(next, neighbor)
			}
		}

		frontier = next
	}

	result.Count = len(result.Related)
	return result, nil
}

// otherEndpoint returns the neighbor reached over edge from current,
// and whether the edge leaves (out) or enters (in) current.
func otherEndpoint(edge store.Edge, current string) (string, store.Direction) {
	if edge.SourceID == current {
		return edge.TargetID, store.DirOut
	}
	return edge.SourceID, store.DirIn
}
