// Package format renders a context document as markdown or JSON.
// Both renderings are deterministic given a document.
package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jcfischer/supertag-cli-sub000/internal/assemble"
)

// JSON renders doc as indented JSON.
func JSON(doc *assemble.Document) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return b.String(), nil
}

// Markdown renders doc as a context document for an agent or reader:
// a header with query and token usage, one section per node, and an
// overflow list naming what was dropped.
func Markdown(doc *assemble.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Context: %s\n\n", doc.Meta.Query)
	fmt.Fprintf(&b, "Lens: %s | Tokens: %d/%d (%.0f%%) | Nodes: %d",
		doc.Meta.Lens, doc.Meta.Tokens.Used, doc.Meta.Tokens.Budget,
		doc.Meta.Tokens.Utilization*100, len(doc.Nodes))
	if doc.Meta.Partial {
		b.WriteString(" | PARTIAL")
	}
	b.WriteString("\n")

	if len(doc.Nodes) == 0 {
		b.WriteString("\nNo matching nodes found.\n")
		return b.String()
	}

	for _, n := range doc.Nodes {
		b.WriteString("\n")
		writeNode(&b, n)
	}

	if len(doc.Overflow) > 0 {
		b.WriteString("\n## Not included (over budget)\n\n")
		for _, o := range doc.Overflow {
			fmt.Fprintf(&b, "- %s (%s, score %.2f)\n", o.Name, shortID(o.ID), o.Score)
		}
	}

	return b.String()
}

func writeNode(b *strings.Builder, n assemble.ContextNode) {
	fmt.Fprintf(b, "## %s\n\n", n.Name)
	fmt.Fprintf(b, "- id: %s | distance: %d | score: %.2f\n", n.ID, n.Distance, n.Score.Total)

	if len(n.Tags) > 0 {
		fmt.Fprintf(b, "- tags: %s\n", strings.Join(n.Tags, ", "))
	}
	if len(n.Path) > 1 {
		fmt.Fprintf(b, "- path: %s\n", strings.Join(shortIDs(n.Path), " → "))
	}

	if len(n.Fields) > 0 {
		names := make([]string, 0, len(n.Fields))
		for name := range n.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "- %s: %s\n", name, strings.Join(n.Fields[name], "; "))
		}
	}

	if n.Content != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(n.Content, "\n"))
		b.WriteString("\n")
		if n.Summarized {
			b.WriteString("_(truncated to fit budget)_\n")
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = shortID(id)
	}
	return out
}
