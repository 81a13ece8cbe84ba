package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hakim/scandeck/internal/pipeline"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the scan tools and presets the backend can run",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Tool\tTitle\tTarget\tDescription")
		fmt.Fprintln(w, "----\t-----\t------\t-----------")
		for _, t := range catalog.Tools() {
			target := "required"
			if !t.RequiresTarget {
				target = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name, t.Title, target, t.Description)
		}
		w.Flush()

		fmt.Println()
		fmt.Println("Presets:")
		presets := pipeline.BuiltinPresets()
		for _, name := range pipeline.PresetNames() {
			p := presets[name]
			fmt.Printf("  %-8s %s (%s)\n", p.Name, p.Description, strings.Join(p.Tools, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
