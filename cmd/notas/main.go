// Command notas is a European Portuguese vocabulary trainer for Chinese speakers.
//
// Subcommands:
//
//	study                      run the terminal UI (default)
//	dataset clean|import       offline vocabulary dataset tools
//	backup export|import       dump or restore learner progress
//	migrate [up|down|status]   postgres schema migrations
//	version                    print build information
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/notas/internal/config"
)

// configPath is bound to the persistent --config flag.
var configPath string

func loadConfig() (*config.Config, error) {
	return config.LoadFrom(configPath)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notas",
		Short:         "European Portuguese vocabulary trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default $CONFIG_PATH or ./config.yaml)")

	study := newStudyCmd()
	root.RunE = study.RunE
	root.Flags().AddFlagSet(study.Flags())

	root.AddCommand(
		study,
		newDatasetCmd(),
		newBackupCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "notas:", err)
		stop()
		os.Exit(1)
	}
}
