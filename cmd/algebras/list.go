package main

import (
	"fmt"

	"github.com/irakli/algebras-go/internal/catalog"
	"github.com/irakli/algebras-go/internal/langcode"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <catalog-dir>",
		Short: "List the languages of a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.LoadDir(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog: %s (%d keys)\n", args[0], len(c.Keys()))
			for _, t := range c.Tables() {
				fmt.Fprintf(out, "  %-35s [%s] %d/%d entries\n",
					langcode.DisplayName(t.Code()), t.Code(), t.Len(), len(c.Keys()))
			}
			return nil
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
