// Package analysis runs one structural analysis of a project tree.
//
// A run moves through DETECT, an optional TRANSPORT_ATTEMPT against a
// language server, FALLBACK to the built-in extractors when that attempt
// fails, and ASSEMBLE. Symbols come from exactly one of the two paths.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lspwiki/internal/config"
	"lspwiki/internal/errors"
	"lspwiki/internal/extract"
	"lspwiki/internal/lsp"
	"lspwiki/internal/model"
	"lspwiki/internal/project"
)

// State is a step of the analysis state machine.
type State string

const (
	StateDetect           State = "DETECT"
	StateTransportAttempt State = "TRANSPORT_ATTEMPT"
	StateSuccess          State = "SUCCESS"
	StateFail             State = "FAIL"
	StateFallback         State = "FALLBACK"
	StateAssemble         State = "ASSEMBLE"
	StateDone             State = "DONE"
)

// Transport extracts symbols through a language server.
type Transport interface {
	HasServer(server string) bool
	Analyze(ctx context.Context, server, root string, files []project.SourceFile) ([]model.FileInfo, error)
}

// Options controls a single run.
type Options struct {
	UseLSP bool
}

// Result is the analysis plus the states the run went through.
type Result struct {
	Analysis *model.ProjectAnalysis
	Path     []State
	// TransportErr is why the transport attempt failed, nil otherwise.
	TransportErr error
}

// Source reports which path produced the symbols.
func (r *Result) Source() string {
	for _, s := range r.Path {
		if s == StateSuccess {
			return "lsp"
		}
	}
	return "fallback"
}

// Analyzer wires detection, the transport and the fallback extractors.
type Analyzer struct {
	cfg       *config.Config
	logger    *slog.Logger
	transport Transport
	registry  *extract.Registry
}

// New creates an analyzer using the configured language servers and the
// default extractor registry.
func New(cfg *config.Config, logger *slog.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		cfg:       cfg,
		logger:    logger,
		transport: lsp.NewTransport(cfg.Lsp, logger),
		registry:  extract.Default(logger),
	}
}

// WithTransport replaces the language server transport.
func (a *Analyzer) WithTransport(t Transport) *Analyzer {
	a.transport = t
	return a
}

// WithRegistry replaces the fallback extractor registry.
func (a *Analyzer) WithRegistry(r *extract.Registry) *Analyzer {
	a.registry = r
	return a
}

// run carries the per-invocation state.
type run struct {
	logger *slog.Logger
	path   []State
}

func (r *run) enter(s State) {
	r.path = append(r.path, s)
	r.logger.Debug("Analysis state", "state", string(s))
}

// Analyze produces the ProjectAnalysis for root. A missing root is
// PATH_NOT_FOUND; every transport failure is absorbed by the fallback.
func (a *Analyzer) Analyze(ctx context.Context, root string, opts Options) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.New(errors.InternalError, "cannot resolve project root", err)
	}
	if !project.RootExists(absRoot) {
		return nil, errors.New(errors.PathNotFound, fmt.Sprintf("%s does not exist", root), nil)
	}

	r := &run{logger: a.logger.With("run", uuid.NewString())}
	started := time.Now()
	dopts := a.discoverOptions()

	r.enter(StateDetect)
	det := project.Detect(absRoot, dopts, r.logger)
	files, err := project.SourceFiles(absRoot, det.Language, dopts)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to list source files", err)
	}
	r.logger.Info("Detected project",
		"language", project.LanguageDisplayName(det.Language),
		"framework", det.Framework,
		"files", len(files),
	)

	var infos []model.FileInfo
	var transportErr error
	viaTransport := false
	if a.transportEligible(det, opts) {
		r.enter(StateTransportAttempt)
		infos, transportErr = a.attemptTransport(ctx, r, det, absRoot, files)
		if transportErr == nil {
			viaTransport = true
			r.enter(StateSuccess)
		} else {
			r.enter(StateFail)
			r.logger.Warn("Language server unavailable, using built-in extractors",
				"server", det.Server,
				"code", string(errors.CodeOf(transportErr)),
				"error", transportErr,
			)
		}
	}
	if !viaTransport {
		r.enter(StateFallback)
		infos = a.fallback(absRoot, files)
	}

	r.enter(StateAssemble)
	analysis := &model.ProjectAnalysis{
		Name:         filepath.Base(absRoot),
		Root:         absRoot,
		Language:     string(det.Language),
		Framework:    det.Framework,
		EntryPoints:  project.EntryPoints(absRoot, det.Language, dopts),
		Files:        infos,
		Dependencies: project.Dependencies(absRoot, det.Language, r.logger),
		CallGraph:    map[string][]string{},
	}

	r.enter(StateDone)
	symbols := 0
	for i := range infos {
		symbols += infos[i].SymbolCount()
	}
	r.logger.Info("Analysis complete",
		"files", len(infos),
		"symbols", symbols,
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return &Result{Analysis: analysis, Path: r.path, TransportErr: transportErr}, nil
}

func (a *Analyzer) transportEligible(det project.Detection, opts Options) bool {
	return opts.UseLSP &&
		a.cfg.Lsp.Enabled &&
		a.transport != nil &&
		det.Server != "" &&
		a.transport.HasServer(det.Server)
}

// attemptTransport runs the language server path. A run in which no file
// produced a symbol counts as a failure.
func (a *Analyzer) attemptTransport(ctx context.Context, r *run, det project.Detection, root string, files []project.SourceFile) ([]model.FileInfo, error) {
	infos, err := a.transport.Analyze(ctx, det.Server, root, files)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if len(infos[i].Symbols) > 0 {
			return infos, nil
		}
	}
	if len(files) == 0 {
		return infos, nil
	}
	r.logger.Debug("Language server returned no symbols", "server", det.Server, "files", len(files))
	return nil, errors.New(errors.ExtractionFailed, "language server returned no symbols", nil)
}

// fallback extracts every file with the registry. Per-file failures leave
// that file empty.
func (a *Analyzer) fallback(root string, files []project.SourceFile) []model.FileInfo {
	registry := a.registry
	if registry == nil {
		registry = extract.Default(a.logger)
	}
	a.logger.Debug("Using built-in extractors", "languages", registry.Languages(), "files", len(files))
	infos := make([]model.FileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, registry.ExtractFile(root, f.Path, string(f.Language)))
	}
	return infos
}

func (a *Analyzer) discoverOptions() project.DiscoverOptions {
	return project.DiscoverOptions{
		Exclude:          a.cfg.Discovery.Exclude,
		RespectGitignore: a.cfg.Discovery.RespectGitignore,
		MaxFileSizeBytes: int64(a.cfg.Discovery.MaxFileSizeBytes),
	}
}
