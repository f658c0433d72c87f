package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "analyzer",
		Short:         "Analyze Telegram chat exports (result.json)",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yml", "Path to YAML config")
	rootCmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "Disable colors even on a terminal")

	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(membersCmd(opts))
	rootCmd.AddCommand(forwardedCmd(opts))
	rootCmd.AddCommand(titlesCmd(opts))
	rootCmd.AddCommand(messagesCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))

	return rootCmd
}
