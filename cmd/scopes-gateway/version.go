package main

import (
	"fmt"
	"strings"

	"github.com/kamiazya/scopes"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scopes-gateway",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scopes-gateway version %s\n", strings.TrimSpace(scopes.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
