// catalogsync loads content definitions into the lecture catalog and removes
// previously ingested batches.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/catalog-sync/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalogsync",
		Short: "Synchronize the lecture catalog with content definition files",
		Long: `catalogsync materializes content definition documents (topics, scholars,
collections, series, lectures and audio assets) into the catalog database,
uploading local audio files to object storage, and removes ingested batches.

Configuration is read from CONFIG_PATH (default ./config.yaml) and the
environment.`,
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g := &globalFlags{}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default: $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(newIngestCmd(g))
	root.AddCommand(newRemoveCmd(g))
	root.AddCommand(newMigrateCmd(g))
	return root
}

type globalFlags struct {
	configPath string
}

// openApp is replaced in tests.
var openApp = app.Open

func (g *globalFlags) open(cmd *cobra.Command) (*app.App, error) {
	return openApp(cmd.Context(), app.Options{
		ConfigPath: g.configPath,
		LogOutput:  cmd.ErrOrStderr(),
	})
}
