package main

import (
	"os"

	"github.com/kamiazya/scopes/internal/cli"
	"github.com/kamiazya/scopes/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-args]",
	Short: "Invoke one tool and print the response",
	Long: `Invokes a tool against the configured backend and prints the envelope.
The in-memory backend starts empty on every run; use the redis backend to replay keys across runs.`,
	Example: `  scopes-gateway call scopes.create '{"title":"Launch"}' --key launch-0001`,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		rt, err := cli.NewRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := cli.CallOptions{Tool: args[0]}
		if len(args) > 1 {
			opts.Arguments = args[1]
		}
		opts.IdempotencyKey, _ = cmd.Flags().GetString("key")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		_, err = cli.Call(cmd.Context(), rt.Gateway, opts, cmd.OutOrStdout(), !tui.IsTerminal(os.Stdout))
		return err
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringP("key", "k", "", "Idempotency key")
	callCmd.Flags().Bool("json", false, "Print the raw response object")
}
