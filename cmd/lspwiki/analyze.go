package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"lspwiki/internal/analysis"
	"lspwiki/internal/config"
	"lspwiki/internal/errors"
	"lspwiki/internal/model"
	"lspwiki/internal/project"
	"lspwiki/internal/slogutil"
)

var (
	outputPath   string
	outputFormat string
	noLSP        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a source tree and print its structural model",
	Long: `Analyze a source tree and emit a ProjectAnalysis document.

The document goes to stdout unless --output is set. An output path ending in
.zst is written zstd-compressed.

Examples:
  lspwiki analyze .
  lspwiki analyze ./service --no-lsp
  lspwiki analyze . -o analysis.json.zst
  lspwiki analyze . --format yaml -vv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the analysis to a file instead of stdout")
	cmd.Flags().StringVar(&outputFormat, "format", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&noLSP, "no-lsp", false, "Skip the language server and use built-in extractors")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	if !project.RootExists(root) {
		return errors.New(errors.PathNotFound, root+" does not exist", nil)
	}

	format, err := resolveFormat(cmd, outputPath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := analysis.New(cfg, logger).Analyze(ctx, root, analysis.Options{UseLSP: !noLSP})
	if err != nil {
		return err
	}
	logger.Debug("Analysis path", "states", result.Path, "source", result.Source())

	return writeAnalysis(result.Analysis, outputPath, format, cmd.OutOrStdout())
}

// resolveFormat uses --format when given, otherwise the output file extension.
func resolveFormat(cmd *cobra.Command, path string) (model.Format, error) {
	if !cmd.Flags().Changed("format") && path != "" {
		return formatForPath(path), nil
	}
	return model.ParseFormat(outputFormat)
}

// newLogger builds the run logger. CLI verbosity flags take precedence over
// logging.level from the config file.
func newLogger(cfg *config.Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	level := slogutil.LevelFromVerbosity(verbosity, quiet)
	if verbosity == 0 && !quiet && cfg.Logging.Level != "" {
		level = slogutil.LevelFromString(cfg.Logging.Level)
	}
	file := logFile
	if file == "" {
		file = cfg.Logging.File
	}

	logger, closer, err := slogutil.Setup(slogutil.Options{
		Level:      level,
		Console:    console,
		File:       file,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, nil, errors.New(errors.InternalError, "failed to open log file", err)
	}
	return logger, closer, nil
}
