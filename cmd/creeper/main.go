// Command creeper is the thin CLI entrypoint over internal/app's CAS,
// resolver, and vanilla install pipeline. Launch command construction
// and process spawning are left to a separate runner; this file exists
// so the pipeline has somewhere to be driven from end to end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/creeperpm/creeper/internal/buildinfo"
	"github.com/creeperpm/creeper/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

// globalCtx is canceled on SIGINT/SIGTERM; commands that perform
// cancellable work (resolution, installs) should use it.
var (
	globalCtx    context.Context
	globalCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "creeper",
	Short: "A package manager for Minecraft game instances",
	Long: `creeper resolves a set of mod/loader packages against a package
registry, downloads and verifies every required artifact exactly once
into a deduplicated local store, and produces a deterministic launch
plan for a runner to execute.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output")

	rootCmd.PersistentPreRun = initLogger
	rootCmd.Version = buildinfo.Version()

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(versionsCmd)
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived %s, canceling operation...\n", sig)
		globalCancel()
		<-sigChan
		fmt.Fprintln(os.Stderr, "Forced exit")
		exitWithCode(ExitCancelled)
	}()

	if err := rootCmd.Execute(); err != nil {
		if globalCtx.Err() == context.Canceled {
			exitWithCode(ExitCancelled)
		}
		exitWithCode(ExitGeneral)
	}
}

func initLogger(cmd *cobra.Command, args []string) {
	level := log.ResolveLevel(quietFlag, verboseFlag, debugFlag)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log.SetDefault(log.New(handler))
}
