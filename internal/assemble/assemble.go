package assemble

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jcfischer/supertag-cli-sub000/internal/budget"
	"github.com/jcfischer/supertag-cli-sub000/internal/lens"
	"github.com/jcfischer/supertag-cli-sub000/internal/score"
	"github.com/jcfischer/supertag-cli-sub000/internal/store"
	"github.com/jcfischer/supertag-cli-sub000/internal/traverse"
)

// Assembler runs the context pipeline against a backend and a lens table.
// Safe for concurrent use; each Assemble call is independent.
type Assembler struct {
	backend Backend
	lenses  *lens.Table

	// injectable for deterministic tests
	now   func() time.Time
	newID func() string
}

// New creates an assembler over backend with the given lens table.
func New(backend Backend, lenses *lens.Table) *Assembler {
	return &Assembler{
		backend: backend,
		lenses:  lenses,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// mergedNode accumulates traversal and enrichment data for one node.
type mergedNode struct {
	id       string
	name     string
	tags     []string
	distance int
	path     []string

	content string
	fields  map[string][]string
	created *int64
}

// Assemble executes one pipeline run. Zero resolved seeds yields an
// empty document and a nil error. Diagnostics report every skipped
// sub-operation and are returned alongside, not inside, the document.
func (a *Assembler) Assemble(ctx context.Context, query string, opts Options) (*Document, []Diagnostic, error) {
	lensName := opts.Lens
	if lensName == "" {
		lensName = "default"
	}
	activeLens, err := a.lenses.Get(lensName)
	if err != nil {
		return nil, nil, err
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var diags []Diagnostic
	partial := false

	// Resolve
	seeds, err := a.resolveSeeds(query, &diags)
	if err != nil {
		return nil, diags, fmt.Errorf("resolving %q: %w", query, err)
	}

	embeddingsAvailable, err := a.backend.HasEmbeddings()
	if err != nil {
		embeddingsAvailable = false
		diags = append(diags, Diagnostic{Phase: "resolve", Message: "embedding probe failed: " + err.Error()})
	}

	meta := Meta{
		DocumentID:          a.newID(),
		Query:               query,
		Workspace:           opts.Workspace,
		Lens:                activeLens.Name,
		Backend:             "sqlite",
		EmbeddingsAvailable: embeddingsAvailable,
		GeneratedAt:         a.now(),
	}

	if len(seeds) == 0 {
		return &Document{Meta: meta, Nodes: []ContextNode{}, Overflow: []budget.OverflowRef{}}, diags, nil
	}
	meta.AnchorID = seeds[0].ID

	// Traverse
	depth := opts.Depth
	if depth <= 0 {
		depth = activeLens.MaxDepth
	}
	effectiveDepth := min(depth, activeLens.MaxDepth, hardDepthCap)

	merged := make(map[string]*mergedNode)
	for _, seed := range seeds {
		if ctx.Err() != nil {
			partial = true
			diags = append(diags, Diagnostic{Phase: "traverse", Message: "deadline reached, traversal incomplete"})
			break
		}

		result, err := traverse.Run(a.backend, traverse.Query{
			SourceID:    seed.ID,
			Direction:   store.DirBoth,
			Types:       activeLens.PriorityTypes,
			MaxDepth:    effectiveDepth,
			ResultLimit: perSeedNodeCap,
		})
		if err != nil {
			diags = append(diags, Diagnostic{Phase: "traverse", NodeID: seed.ID, Message: err.Error()})
			continue
		}

		for _, r := range result.Related {
			mergeRelated(merged, r)
		}
	}

	// Every seed is present at distance 0, unconditionally.
	for _, seed := range seeds {
		merged[seed.ID] = &mergedNode{
			id:   seed.ID,
			name: seed.Name,
			tags: seed.Tags,
			path: []string{},
		}
	}

	// Enrich
	enrichDiags, enrichPartial := a.enrich(ctx, merged, activeLens)
	diags = append(diags, enrichDiags...)
	partial = partial || enrichPartial

	// Score
	now := a.now()
	scores := make(map[string]score.Score, len(merged))
	for id, m := range merged {
		scores[id] = score.Node(score.Input{
			Distance:            m.distance,
			CreatedAt:           m.created,
			EmbeddingsAvailable: embeddingsAvailable,
			Now:                 now,
		})
	}

	ordered := make([]*mergedNode, 0, len(merged))
	for _, m := range merged {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		si, sj := scores[ordered[i].id].Total, scores[ordered[j].id].Total
		if si != sj {
			return si > sj
		}
		return ordered[i].id < ordered[j].id
	})

	// Budget
	candidates := make([]budget.Node, len(ordered))
	for i, m := range ordered {
		candidates[i] = budget.Node{
			ID:       m.id,
			Name:     m.name,
			Content:  m.content,
			Distance: m.distance,
			Score:    scores[m.id].Total,
		}
	}
	pruned := budget.Prune(candidates, budget.Budget{
		MaxTokens:     maxTokens,
		HeaderReserve: headerReserve,
		MinPerNode:    minPerNode,
	})

	nodes := make([]ContextNode, 0, len(pruned.Included))
	for _, alloc := range pruned.Included {
		m := merged[alloc.ID]
		nodes = append(nodes, ContextNode{
			ID:         m.id,
			Name:       m.name,
			Content:    alloc.Content,
			Tags:       m.tags,
			Fields:     m.fields,
			Score:      scores[m.id],
			Distance:   m.distance,
			Path:       m.path,
			Created:    m.created,
			Tokens:     alloc.Tokens,
			Summarized: alloc.Summarized,
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Score.Total != nodes[j].Score.Total {
			return nodes[i].Score.Total > nodes[j].Score.Total
		}
		return nodes[i].ID < nodes[j].ID
	})

	meta.Partial = partial
	meta.Tokens = pruned.Usage

	overflow := pruned.Overflow
	if overflow == nil {
		overflow = []budget.OverflowRef{}
	}

	return &Document{Meta: meta, Nodes: nodes, Overflow: overflow}, diags, nil
}

// mergeRelated folds one traversal hit into the merged set, keeping the
// smallest distance and, on equal distance, the lexicographically
// smaller path so completion order can never change the result.
func mergeRelated(merged map[string]*mergedNode, r traverse.RelatedNode) {
	existing, ok := merged[r.ID]
	if ok {
		if existing.distance < r.Rel.Distance {
			return
		}
		if existing.distance == r.Rel.Distance &&
			strings.Join(existing.path, "\x00") <= strings.Join(r.Rel.Path, "\x00") {
			return
		}
	}
	merged[r.ID] = &mergedNode{
		id:       r.ID,
		name:     r.Name,
		tags:     r.Tags,
		distance: r.Rel.Distance,
		path:     r.Rel.Path,
	}
}

// enrich fetches field values, content, and creation timestamp for each
// merged node. The three sub-fetches fail independently per node; every
// failure is reported as a diagnostic and the data simply omitted.
func (a *Assembler) enrich(ctx context.Context, merged map[string]*mergedNode, activeLens lens.Lens) ([]Diagnostic, bool) {
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Per-slot diagnostics keep output order independent of goroutine
	// completion order.
	slotDiags := make([][]Diagnostic, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			m := merged[id]

			if fields, err := a.backend.FieldValues(id); err != nil {
				slotDiags[i] = append(slotDiags[i], Diagnostic{Phase: "enrich", NodeID: id, Message: "fields: " + err.Error()})
			} else if len(fields) > 0 {
				m.fields = groupFields(fields, activeLens)
			}

			if content, err := a.backend.Content(id); err != nil {
				slotDiags[i] = append(slotDiags[i], Diagnostic{Phase: "enrich", NodeID: id, Message: "content: " + err.Error()})
			} else {
				m.content = content
			}

			if created, ok, err := a.backend.CreatedAt(id); err != nil {
				slotDiags[i] = append(slotDiags[i], Diagnostic{Phase: "enrich", NodeID: id, Message: "created: " + err.Error()})
			} else if ok {
				m.created = &created
			}
			return nil
		})
	}
	_ = g.Wait()

	var diags []Diagnostic
	for _, sd := range slotDiags {
		diags = append(diags, sd...)
	}

	if ctx.Err() != nil {
		diags = append(diags, Diagnostic{Phase: "enrich", Message: "deadline reached, enrichment incomplete"})
		return diags, true
	}
	return diags, false
}

// groupFields merges ordered field values into per-name value lists,
// honoring the lens field allowlist.
func groupFields(values []store.FieldValue, activeLens lens.Lens) map[string][]string {
	fields := make(map[string][]string)
	for _, v := range values {
		if !activeLens.AllowsField(v.FieldName) {
			continue
		}
		fields[v.FieldName] = append(fields[v.FieldName], v.ValueText)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
