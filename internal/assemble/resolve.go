package assemble

import (
	"errors"

	"github.com/jcfischer/supertag-cli-sub000/internal/store"
)

// RefKind tags the result of query classification.
type RefKind string

const (
	RefID    RefKind = "id"
	RefQuery RefKind = "query"
)

// Ref is a classified query: either a node identifier or free text.
type Ref struct {
	Kind  RefKind
	Value string
}

// Classify decides whether query looks like a node identifier: at least
// 6 chars, only alphanumerics, hyphens, and underscores, no spaces.
// Everything else is free text.
func Classify(query string) Ref {
	if len(query) >= 6 && isIdentShaped(query) {
		return Ref{Kind: RefID, Value: query}
	}
	return Ref{Kind: RefQuery, Value: query}
}

func isIdentShaped(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// resolveSeeds turns a query into seed nodes. Identifier-shaped queries
// try a direct lookup, then an unambiguous id-prefix match, then fall
// back to search. Zero seeds is a defined success outcome, not an error;
// only a hard backend failure on the first attempt propagates.
func (a *Assembler) resolveSeeds(query string, diags *[]Diagnostic) ([]store.Node, error) {
	ref := Classify(query)

	if ref.Kind == RefID {
		node, err := a.backend.GetNode(ref.Value)
		if err == nil {
			return []store.Node{*node}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		matches, err := a.backend.SearchByIDPrefix(ref.Value, 10)
		if err == nil && len(matches) == 1 {
			return []store.Node{matches[0]}, nil
		}
		if err == nil && len(matches) > 1 {
			*diags = append(*diags, Diagnostic{
				Phase:   "resolve",
				Message: "ambiguous id prefix, falling back to search: " + ref.Value,
			})
		}
		// fall through to search
	}

	hits, err := a.backend.Search(query, store.SearchFilter{Limit: searchSeedLimit})
	if err != nil {
		return nil, err
	}

	var seeds []store.Node
	for _, h := range hits {
		node, err := a.backend.GetNode(h.ID)
		if err != nil {
			*diags = append(*diags, Diagnostic{
				Phase:   "resolve",
				NodeID:  h.ID,
				Message: "search hit vanished: " + err.Error(),
			})
			continue
		}
		seeds = append(seeds, *node)
	}
	return seeds, nil
}
