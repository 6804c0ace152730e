package lsp

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"lspwiki/internal/config"
	"lspwiki/internal/errors"
	"lspwiki/internal/model"
	"lspwiki/internal/paths"
	"lspwiki/internal/project"
)

// Transport runs one language server session per analysis.
type Transport struct {
	Servers   map[string]ServerCommand
	Options   Options
	HoverDocs bool
	Logger    *slog.Logger

	// start is swapped in tests.
	start func(ctx context.Context, sc ServerCommand, root string, opts Options, logger *slog.Logger) (*Client, error)
}

// NewTransport builds a transport from the lsp config section.
func NewTransport(cfg config.LspConfig, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	servers := make(map[string]ServerCommand, len(cfg.Servers))
	for name, s := range cfg.Servers {
		servers[name] = ServerCommand{Name: name, Command: s.Command, Args: s.Args, Install: s.Install}
	}
	return &Transport{
		Servers:   servers,
		Options:   OptionsFromConfig(cfg),
		HoverDocs: cfg.HoverDocs,
		Logger:    logger,
		start:     Start,
	}
}

// HasServer reports whether a launch command is configured for server.
func (t *Transport) HasServer(server string) bool {
	sc, ok := t.Servers[server]
	return ok && sc.Command != ""
}

// Analyze starts the server, extracts symbols for every file and shuts the
// server down. A request that times out leaves that file empty and the
// session continues; any other failure aborts the whole attempt.
func (t *Transport) Analyze(ctx context.Context, server, root string, files []project.SourceFile) ([]model.FileInfo, error) {
	sc, ok := t.Servers[server]
	if !ok || sc.Command == "" {
		return nil, errors.New(errors.ServerUnavailable, "no command configured for "+server, nil)
	}

	start := t.start
	if start == nil {
		start = Start
	}
	client, err := start(ctx, sc, root, t.Options, t.Logger)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	hover := t.HoverDocs && client.Supports("hoverProvider")
	if t.HoverDocs && !hover {
		t.Logger.Debug("Server has no hover support, skipping docs", "server", server)
	}

	infos := make([]model.FileInfo, 0, len(files))
	for _, f := range files {
		info := model.NewFileInfo(f.Path, string(f.Language))

		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			t.Logger.Debug("Skipping unreadable file",
				"path", f.Path,
				"error", errors.New(errors.ExtractionFailed, "cannot read source file", err),
			)
			infos = append(infos, info)
			continue
		}
		text := string(data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "�")
		}

		// Hover needs the document open, so it runs before didClose.
		err = client.WithDocument(ctx, f.AbsPath, project.LanguageID(f.Path), text, func() error {
			symbols, err := client.Symbols(ctx, f.AbsPath)
			if err != nil {
				return err
			}
			if hover {
				t.fillHoverDocs(ctx, client, f.AbsPath, text, symbols)
			}
			info.Symbols = symbols
			return nil
		})
		switch {
		case err == nil:
		case errors.HasCode(err, errors.Timeout) && ctx.Err() == nil:
			t.Logger.Debug("documentSymbol timed out", "path", f.Path, "error", err)
		default:
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// fillHoverDocs sets missing docstrings of top-level symbols from hover text.
func (t *Transport) fillHoverDocs(ctx context.Context, client *Client, absPath, text string, symbols []model.Symbol) {
	uri := paths.FileURI(absPath)
	lines := strings.Split(text, "\n")
	for i := range symbols {
		sym := &symbols[i]
		if sym.Docstring != "" || sym.Line > len(lines) {
			continue
		}
		col := strings.Index(lines[sym.Line-1], sym.Name)
		if col < 0 {
			col = 0
		}
		doc, err := client.Hover(ctx, uri, sym.Line-1, utf16Len(lines[sym.Line-1][:col]))
		if err != nil {
			t.Logger.Debug("Hover failed", "symbol", sym.Name, "error", err)
			continue
		}
		sym.Docstring = doc
	}
}

// utf16Len counts UTF-16 code units, the unit of LSP character offsets.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
