package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcfischer/supertag-cli-sub000/internal/store"
	"github.com/jcfischer/supertag-cli-sub000/internal/traverse"
)

var (
	travDepth     int
	travDirection string
	travTypes     string
	travLimit     int
	travJSON      bool
)

var traverseCmd = &cobra.Command{
	Use:   "traverse <node-id>",
	Short: "Raw bounded-depth traversal from a node, for graph debugging",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := store.Direction(travDirection)
		if dir != store.DirOut && dir != store.DirIn && dir != store.DirBoth {
			return fmt.Errorf("--direction must be out, in, or both, got %q", travDirection)
		}

		var types []store.EdgeType
		if travTypes != "" {
			for _, t := range strings.Split(travTypes, ",") {
				types = append(types, store.EdgeType(strings.TrimSpace(t)))
			}
		}

		s, err := OpenStore()
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := traverse.Run(s, traverse.Query{
			SourceID:    args[0],
			Direction:   dir,
			Types:       types,
			MaxDepth:    travDepth,
			ResultLimit: travLimit,
		})
		if err != nil {
			return fmt.Errorf("traversing: %w", err)
		}

		if travJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printTraversal(result)
		return nil
	},
}

func init() {
	traverseCmd.Flags().IntVar(&travDepth, "depth", 2, "Max traversal depth")
	traverseCmd.Flags().StringVar(&travDirection, "direction", "both", "Edge direction: out, in, or both")
	traverseCmd.Flags().StringVar(&travTypes, "types", "", "Comma-separated edge type allowlist")
	traverseCmd.Flags().IntVar(&travLimit, "limit", 50, "Max related nodes")
	traverseCmd.Flags().BoolVar(&travJSON, "json", false, "JSON output")
	rootCmd.AddCommand(traverseCmd)
}

func printTraversal(result *traverse.Result) {
	srcID := result.Source.ID
	if len(srcID) > 8 {
		srcID = srcID[:8]
	}

	if result.Count == 0 {
		fmt.Printf("No related nodes for: %s (%s)\n", result.Source.Name, srcID)
		return
	}

	fmt.Printf("Related to: %s (%s)\n\n", result.Source.Name, srcID)
	for _, r := range result.Related {
		fmt.Printf("  d=%d [%s/%s] %s\n", r.Rel.Distance, r.Rel.Type, r.Rel.Direction, r.Name)
		if len(r.Rel.Path) > 1 {
			hops := make([]string, len(r.Rel.Path))
			for i, id := range r.Rel.Path {
				if len(id) > 8 {
					id = id[:8]
				}
				hops[i] = id
			}
			fmt.Printf("      %s\n", strings.Join(hops, " → "))
		}
	}

	fmt.Printf("\n%d node(s)", result.Count)
	if result.Truncated {
		fmt.Print(" (truncated)")
	}
	fmt.Println()
}
