package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lspwiki/internal/config"
	"lspwiki/internal/errors"
	"lspwiki/internal/paths"
	"lspwiki/internal/project"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration",
	Long:  "Creates a .lspwiki/ directory with the default configuration in the project root",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	if !project.RootExists(root) {
		return errors.New(errors.PathNotFound, fmt.Sprintf("%s does not exist", root), nil)
	}

	configPath := filepath.Join(paths.ConfigDir(root), "config.json")
	out := cmd.OutOrStdout()
	if _, err := os.Stat(configPath); err == nil && !initForce {
		// already initialized is success
		fmt.Fprintf(out, "Configuration already at %s\n", configPath)
		fmt.Fprintln(out, "Run 'lspwiki init --force' to overwrite it.")
		return nil
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		return errors.New(errors.InternalError, "failed to write configuration", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", configPath)
	return nil
}
