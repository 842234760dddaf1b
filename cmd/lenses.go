package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var lensesCmd = &cobra.Command{
	Use:   "lenses",
	Short: "List lens presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := LoadLenses()
		if err != nil {
			return err
		}

		for _, name := range table.Names() {
			l, err := table.Get(name)
			if err != nil {
				return err
			}
			types := make([]string, len(l.PriorityTypes))
			for i, t := range l.PriorityTypes {
				types[i] = string(t)
			}
			fmt.Printf("%-10s depth=%d types=%s", l.Name, l.MaxDepth, strings.Join(types, ","))
			if l.RestrictsFields() {
				fmt.Printf(" fields=%s", strings.Join(l.IncludeFields, ","))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lensesCmd)
}
