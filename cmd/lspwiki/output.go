package main

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"lspwiki/internal/errors"
	"lspwiki/internal/model"
)

const zstdSuffix = ".zst"

// formatForPath picks a format from a file name like "out.yaml.zst".
func formatForPath(path string) model.Format {
	name := strings.ToLower(strings.TrimSuffix(path, zstdSuffix))
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return model.FormatYAML
	}
	return model.FormatJSON
}

// writeAnalysis encodes a to path, or to stdout when path is empty.
func writeAnalysis(a *model.ProjectAnalysis, path string, format model.Format, stdout io.Writer) error {
	if path == "" {
		if err := model.Encode(stdout, a, format); err != nil {
			return errors.New(errors.InternalError, "failed to write analysis", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.New(errors.InternalError, "failed to create output file", err)
	}

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, zstdSuffix) {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return errors.New(errors.InternalError, "failed to create zstd writer", err)
		}
		w = enc
	}

	if err := model.Encode(w, a, format); err != nil {
		if enc != nil {
			_ = enc.Close()
		}
		_ = f.Close()
		return errors.New(errors.InternalError, "failed to write analysis", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			_ = f.Close()
			return errors.New(errors.InternalError, "failed to flush zstd stream", err)
		}
	}
	if err := f.Close(); err != nil {
		return errors.New(errors.InternalError, "failed to close output file", err)
	}
	return nil
}
