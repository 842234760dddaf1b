// Package budget implements greedy, score-ordered node selection under
// a token ceiling. Pure given its inputs; no I/O or randomness.
package budget

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken is the approximation ratio for token counting.
const charsPerToken = 4

// truncationMarker is appended to content cut to fit the budget.
const truncationMarker = "…"

// Budget bounds one pruning pass. MaxTokens must exceed
// HeaderReserve + MinPerNode for a non-degenerate budget.
type Budget struct {
	MaxTokens     int
	HeaderReserve int
	MinPerNode    int
}

// Node is one scored candidate, in the caller's score-descending order.
type Node struct {
	ID       string
	Name     string
	Content  string
	Distance int // 0 marks a seed node, pinned unconditionally
	Score    float64
}

// Allocation is an included node with its final content and token cost.
type Allocation struct {
	Node
	Tokens     int
	Summarized bool // content was truncated to fit
}

// OverflowRef identifies a node dropped for budget reasons.
type OverflowRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Usage reports how the budget was spent. Budget is the usable budget
// (MaxTokens minus HeaderReserve).
type Usage struct {
	Budget          int     `json:"budget"`
	Used            int     `json:"used"`
	Utilization     float64 `json:"utilization"`
	NodesIncluded   int     `json:"nodes_included"`
	NodesSummarized int     `json:"nodes_summarized"`
}

// Result is one pruning pass's output.
type Result struct {
	Included []Allocation
	Overflow []OverflowRef
	Usage    Usage
}

// EstimateTokens estimates the token cost of content from its length,
// at 4 chars per token, rounded up.
func EstimateTokens(content string) int {
	return (len(content) + charsPerToken - 1) / charsPerToken
}

// Prune selects nodes in the given (score-descending) order under b.
//
// Seed nodes (Distance 0) are pinned first, before the greedy pass
// consumes any budget; a seed whose content does not fit is truncated,
// never dropped. The greedy pass then includes nodes in full while they
// fit, truncates one node when at least MinPerNode remains, and moves
// everything past that point to Overflow.
func Prune(nodes []Node, b Budget) Result {
	remaining := b.MaxTokens - b.HeaderReserve
	usable := remaining

	var included []Allocation
	var overflow []OverflowRef
	summarized := 0

	// Pin seeds in score order.
	rest := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Distance != 0 {
			rest = append(rest, n)
			continue
		}
		alloc := allocate(n, remaining)
		if alloc.Summarized {
			summarized++
		}
		included = append(included, alloc)
		remaining -= alloc.Tokens
	}

	// Greedy pass over the remainder.
	exhausted := false
	for _, n := range rest {
		if exhausted || remaining < b.MinPerNode {
			exhausted = true
			overflow = append(overflow, OverflowRef{ID: n.ID, Name: n.Name, Score: n.Score})
			continue
		}
		alloc := allocate(n, remaining)
		if alloc.Summarized {
			summarized++
		}
		included = append(included, alloc)
		remaining -= alloc.Tokens
	}

	used := usable - remaining
	utilization := 0.0
	if usable > 0 {
		utilization = float64(used) / float64(usable)
	}

	return Result{
		Included: included,
		Overflow: overflow,
		Usage: Usage{
			Budget:          usable,
			Used:            used,
			Utilization:     utilization,
			NodesIncluded:   len(included),
			NodesSummarized: summarized,
		},
	}
}

// allocate gives n up to its full content cost, truncating to remaining
// tokens when the content does not fit. remaining may be 0 or negative
// for over-budget pinned seeds, yielding an empty allocation.
func allocate(n Node, remaining int) Allocation {
	cost := EstimateTokens(n.Content)
	if cost <= remaining {
		return Allocation{Node: n, Tokens: cost}
	}

	if remaining < 0 {
		remaining = 0
	}
	n.Content = truncateContent(n.Content, remaining)
	return Allocation{Node: n, Tokens: remaining, Summarized: true}
}

// truncateContent cuts content to tokens*4 bytes, backed off to the
// previous rune boundary, and appends a truncation marker. The cut is
// by bytes, never at word boundaries.
func truncateContent(content string, tokens int) string {
	max := tokens * charsPerToken
	if max <= 0 {
		return ""
	}
	if len(content) <= max {
		return content
	}
	cut := max
	if cut > len(truncationMarker) {
		cut -= len(truncationMarker)
	}
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return strings.TrimRight(content[:cut], " \t\n") + truncationMarker
}
