package main

import (
	"encoding/json"
	"os"

	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tool catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := scopes.New()
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(gw.Tools())
		}
		return tui.RenderCatalog(cmd.OutOrStdout(), gw.Tools(), tui.IsTerminal(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
