package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcfischer/supertag-cli-sub000/internal/store"
)

var (
	searchLimit         int
	searchJSON          bool
	searchCreatedAfter  string
	searchCreatedBefore string
	searchUpdatedAfter  string
	searchUpdatedBefore string
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Full-text search over node names and content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := store.SearchFilter{Limit: searchLimit}
		var err error
		if filter.CreatedAfter, err = parseDateFlag(searchCreatedAfter); err != nil {
			return fmt.Errorf("--created-after: %w", err)
		}
		if filter.CreatedBefore, err = parseDateFlag(searchCreatedBefore); err != nil {
			return fmt.Errorf("--created-before: %w", err)
		}
		if filter.UpdatedAfter, err = parseDateFlag(searchUpdatedAfter); err != nil {
			return fmt.Errorf("--updated-after: %w", err)
		}
		if filter.UpdatedBefore, err = parseDateFlag(searchUpdatedBefore); err != nil {
			return fmt.Errorf("--updated-before: %w", err)
		}

		s, err := OpenStore()
		if err != nil {
			return err
		}
		defer s.Close()

		hits, err := s.Search(strings.Join(args, " "), filter)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hits)
		}

		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, h := range hits {
			id := h.ID
			if len(id) > 8 {
				id = id[:8]
			}
			line := fmt.Sprintf("  %s  %s", id, h.Name)
			if len(h.Tags) > 0 {
				line += "  [" + strings.Join(h.Tags, ", ") + "]"
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d match(es)\n", len(hits))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Max results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "JSON output")
	searchCmd.Flags().StringVar(&searchCreatedAfter, "created-after", "", "Only nodes created after this RFC 3339 date")
	searchCmd.Flags().StringVar(&searchCreatedBefore, "created-before", "", "Only nodes created before this RFC 3339 date")
	searchCmd.Flags().StringVar(&searchUpdatedAfter, "updated-after", "", "Only nodes updated after this RFC 3339 date")
	searchCmd.Flags().StringVar(&searchUpdatedBefore, "updated-before", "", "Only nodes updated before this RFC 3339 date")
	rootCmd.AddCommand(searchCmd)
}

// parseDateFlag parses an RFC 3339 date or datetime into Unix millis.
// Empty input returns 0 (unset).
func parseDateFlag(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UnixMilli(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return 0, fmt.Errorf("expected RFC 3339 date, got %q", value)
	}
	return t.UnixMilli(), nil
}
