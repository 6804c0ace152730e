package main

import (
	"github.com/spf13/cobra"

	"lspwiki/internal/version"
)

var (
	verbosity int
	quiet     bool
	logFile   string
)

var rootCmd = &cobra.Command{
	Use:   "lspwiki [path]",
	Short: "lspwiki - structural analysis of source trees",
	Long: `lspwiki extracts files, symbols, imports, exports, dependencies and entry
points from a source tree. It asks the project's language server first and
falls back to built-in extractors when no server is available.

Running lspwiki with a path is the same as 'lspwiki analyze <path>'.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runAnalyze,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("lspwiki version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Disable console logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
	addAnalyzeFlags(rootCmd)
}
