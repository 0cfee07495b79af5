// Command pfb inspects and benchmarks ParFlow Binary files on local disk or
// object storage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(ctx).Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}

func newRootCmd(ctx context.Context) *cobra.Command {
	c := &cli{ctx: ctx}
	rootCmd := &cobra.Command{
		Use:           "pfb [command] (flags)",
		Short:         "ParFlow binary file inspection and read benchmarking tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		c.infoCmd(),
		c.locateCmd(),
		c.readCmd(),
		c.subsetCmd(),
		c.benchCmd(),
	)
	c.registerFlags(rootCmd.PersistentFlags())
	return rootCmd
}
