package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcfischer/supertag-cli-sub000/internal/assemble"
	"github.com/jcfischer/supertag-cli-sub000/internal/format"
)

var (
	ctxDepth     int
	ctxMaxTokens int
	ctxLens      string
	ctxFormat    string
	ctxWorkspace string
	ctxTimeout   time.Duration
	ctxDebug     bool
)

var contextCmd = &cobra.Command{
	Use:   "context <query|node-id>",
	Short: "Assemble a budgeted context document around a query or node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ctxDepth < 1 || ctxDepth > 5 {
			return fmt.Errorf("--depth must be between 1 and 5, got %d", ctxDepth)
		}
		if ctxMaxTokens < 100 {
			return fmt.Errorf("--max-tokens must be at least 100, got %d", ctxMaxTokens)
		}
		if ctxFormat != "markdown" && ctxFormat != "json" {
			return fmt.Errorf("--format must be markdown or json, got %q", ctxFormat)
		}

		lenses, err := LoadLenses()
		if err != nil {
			return err
		}
		if _, err := lenses.Get(ctxLens); err != nil {
			return err
		}

		s, err := OpenStore()
		if err != nil {
			return err
		}
		defer s.Close()

		assembler := assemble.New(s, lenses)
		doc, diags, err := assembler.Assemble(context.Background(), args[0], assemble.Options{
			Workspace: ctxWorkspace,
			Depth:     ctxDepth,
			MaxTokens: ctxMaxTokens,
			Lens:      ctxLens,
			Timeout:   ctxTimeout,
		})
		if err != nil {
			return fmt.Errorf("assembling context: %w", err)
		}

		if ctxDebug {
			for _, d := range diags {
				if d.NodeID != "" {
					fmt.Fprintf(os.Stderr, "debug: [%s] %s: %s\n", d.Phase, d.NodeID, d.Message)
				} else {
					fmt.Fprintf(os.Stderr, "debug: [%s] %s\n", d.Phase, d.Message)
				}
			}
		}

		if ctxFormat == "json" {
			out, err := format.JSON(doc)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}

		fmt.Print(format.Markdown(doc))
		return nil
	},
}

func init() {
	contextCmd.Flags().IntVar(&ctxDepth, "depth", 2, "Traversal depth (1-5)")
	contextCmd.Flags().IntVar(&ctxMaxTokens, "max-tokens", assemble.DefaultMaxTokens, "Token budget (>= 100)")
	contextCmd.Flags().StringVar(&ctxLens, "lens", "default", "Lens preset")
	contextCmd.Flags().StringVar(&ctxFormat, "format", "markdown", "Output format: markdown or json")
	contextCmd.Flags().StringVar(&ctxWorkspace, "workspace", "", "Workspace label recorded in document meta")
	contextCmd.Flags().DurationVar(&ctxTimeout, "timeout", assemble.DefaultTimeout, "Pipeline timeout")
	contextCmd.Flags().BoolVar(&ctxDebug, "debug", false, "Print skip diagnostics to stderr")
	rootCmd.AddCommand(contextCmd)
}
