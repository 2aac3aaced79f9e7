// Command famfund runs the famfund API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/famfund/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "famfund",
		Short:         "Family fund: shared expenses and personal finance API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				return config.LoadEnvFile(envFile)
			}
			return config.LoadEnvFile()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file (default ./.env if present)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	return root
}
