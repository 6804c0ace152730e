// Package lsp drives a language server over stdio and converts its
// documentSymbol results into the lspwiki model.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"lspwiki/internal/config"
	"lspwiki/internal/errors"
	"lspwiki/internal/model"
	"lspwiki/internal/paths"
)

// ServerCommand describes how to launch a language server.
type ServerCommand struct {
	Name    string
	Command string
	Args    []string
	Install string // shown as a suggested fix when Command is missing
}

// Options bounds every blocking step of a session.
type Options struct {
	HandshakeTimeout time.Duration
	RequestTimeout   time.Duration
	SettleTimeout    time.Duration
	ShutdownTimeout  time.Duration
	PollAttempts     int
	MaxSymbolDepth   int
}

// OptionsFromConfig converts the lsp config section.
func OptionsFromConfig(cfg config.LspConfig) Options {
	return Options{
		HandshakeTimeout: cfg.HandshakeTimeout(),
		RequestTimeout:   cfg.RequestTimeout(),
		SettleTimeout:    cfg.SettleTimeout(),
		ShutdownTimeout:  cfg.ShutdownTimeout(),
		PollAttempts:     cfg.PollAttempts,
		MaxSymbolDepth:   cfg.MaxSymbolDepth,
	}
}

// Client is a session with one language server process.
type Client struct {
	conn   *Conn
	stdin  io.Closer
	cmd    *exec.Cmd
	root   string
	opts   Options
	logger *slog.Logger

	// reqMu keeps exactly one request in flight.
	reqMu sync.Mutex

	pendingMu sync.Mutex
	nextID    int64
	pending   map[int64]chan *Message

	diagMu    sync.Mutex
	diagnosed map[string]chan struct{}

	// done is closed when the reader exits; readErr is valid after that.
	done    chan struct{}
	readErr error

	closeOnce    sync.Once
	capabilities json.RawMessage
}

// Start launches the server in root and completes the initialize handshake.
// A missing binary is SERVER_UNAVAILABLE; a failed or slow handshake is
// HANDSHAKE_FAILED and leaves no process behind.
func Start(ctx context.Context, sc ServerCommand, root string, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path, err := exec.LookPath(sc.Command)
	if err != nil {
		e := errors.New(errors.ServerUnavailable, fmt.Sprintf("language server %q not found", sc.Command), err).
			WithDetails(map[string]string{"server": sc.Name, "command": sc.Command})
		if sc.Install != "" {
			e = e.WithFix(errors.FixAction{
				Type:        errors.InstallTool,
				Command:     sc.Install,
				Description: "Install " + sc.Name,
				Tool:        sc.Name,
			})
		}
		return nil, e
	}

	cmd := exec.Command(path, sc.Args...)
	cmd.Dir = root

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.New(errors.ServerUnavailable, "failed to create stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.New(errors.ServerUnavailable, "failed to create stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.New(errors.ServerUnavailable, "failed to create stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.New(errors.ServerUnavailable, fmt.Sprintf("failed to start %s", sc.Command), err)
	}

	logger = logger.With("server", sc.Name)
	go drainStderr(stderr, logger)

	c := newClient(stdout, stdin, root, opts, logger)
	c.cmd = cmd
	if err := c.initialize(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	logger.Info("Started language server", "command", sc.Command, "pid", cmd.Process.Pid)
	return c, nil
}

// connect runs a session over an existing stream pair.
func connect(ctx context.Context, r io.Reader, w io.WriteCloser, root string, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := newClient(r, w, root, opts, logger)
	if err := c.initialize(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func newClient(r io.Reader, w io.WriteCloser, root string, opts Options, logger *slog.Logger) *Client {
	if opts.MaxSymbolDepth < 1 {
		opts.MaxSymbolDepth = DefaultMaxSymbolDepth
	}
	c := &Client{
		conn:      NewConn(r, w),
		stdin:     w,
		root:      root,
		opts:      opts,
		logger:    logger,
		pending:   make(map[int64]chan *Message),
		diagnosed: make(map[string]chan struct{}),
		done:      make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func drainStderr(r io.Reader, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logger.Debug("Language server stderr", "line", scanner.Text())
	}
}

func (c *Client) initialize(ctx context.Context) error {
	rootURI := paths.FileURI(c.root)
	params := map[string]interface{}{
		"processId": os.Getpid(),
		"rootUri":   rootURI,
		"rootPath":  c.root,
		"workspaceFolders": []map[string]string{
			{"uri": rootURI, "name": filepath.Base(c.root)},
		},
		"capabilities": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"documentSymbol": map[string]interface{}{
					"hierarchicalDocumentSymbolSupport": true,
				},
				"definition": map[string]interface{}{
					"linkSupport": true,
				},
				"references": map[string]interface{}{},
				"hover": map[string]interface{}{
					"contentFormat": []string{"markdown", "plaintext"},
				},
				"callHierarchy": map[string]interface{}{},
				"publishDiagnostics": map[string]interface{}{},
			},
			"workspace": map[string]interface{}{
				"workspaceFolders": true,
			},
		},
	}

	result, err := c.call(ctx, "initialize", params, c.opts.HandshakeTimeout)
	if err != nil {
		return errors.New(errors.HandshakeFailed, "initialize request failed", err)
	}

	var init struct {
		Capabilities json.RawMessage `json:"capabilities"`
	}
	if err := json.Unmarshal(result, &init); err == nil {
		c.capabilities = init.Capabilities
	}

	if err := c.notify("initialized", map[string]interface{}{}); err != nil {
		return errors.New(errors.HandshakeFailed, "initialized notification failed", err)
	}
	return nil
}

// Capabilities returns the server's declared capabilities.
func (c *Client) Capabilities() json.RawMessage {
	return c.capabilities
}

// Supports reports whether the server declared a provider capability such
// as "hoverProvider". Both true and an options object count.
func (c *Client) Supports(provider string) bool {
	var caps map[string]json.RawMessage
	if err := json.Unmarshal(c.capabilities, &caps); err != nil {
		return false
	}
	v, ok := caps[provider]
	if !ok {
		return false
	}
	s := strings.TrimSpace(string(v))
	return s != "false" && s != "null"
}

// call sends a request and waits for its response, at most timeout.
// A timed-out request is abandoned; its late response is discarded.
func (c *Client) call(ctx context.Context, method string, params interface{}, timeout time.Duration) (json.RawMessage, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, errors.New(errors.ProtocolError, "failed to marshal params", err)
	}

	c.pendingMu.Lock()
	c.nextID++
	id := c.nextID
	respCh := make(chan *Message, 1)
	c.pending[id] = respCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	msg := &Message{
		JSONRPC: "2.0",
		ID:      json.RawMessage(strconv.FormatInt(id, 10)),
		Method:  method,
		Params:  raw,
	}
	if err := c.conn.Write(msg); err != nil {
		return nil, errors.New(errors.ProtocolError, "failed to send "+method, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return nil, errors.New(errors.ProtocolError, method+" returned an error", resp.Error)
		}
		return resp.Result, nil
	case <-timer.C:
		return nil, errors.New(errors.Timeout, fmt.Sprintf("%s timed out after %s", method, timeout), nil)
	case <-ctx.Done():
		return nil, errors.New(errors.Timeout, method+" cancelled", ctx.Err())
	case <-c.done:
		return nil, errors.New(errors.ProtocolError, "language server closed the connection", c.readErr)
	}
}

func (c *Client) notify(method string, params interface{}) error {
	msg := &Message{JSONRPC: "2.0", Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return errors.New(errors.ProtocolError, "failed to marshal params", err)
		}
		msg.Params = raw
	}
	return c.conn.Write(msg)
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		msg, err := c.conn.Read()
		if err != nil {
			if errors.HasCode(err, errors.ProtocolError) && !stderrors.Is(err, errMessageTooLarge) {
				c.logger.Debug("Dropping malformed message", "error", err)
				continue
			}
			c.readErr = err
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg *Message) {
	if msg.IsResponse() {
		id, ok := msg.IntID()
		if !ok {
			return
		}
		c.pendingMu.Lock()
		respCh, ok := c.pending[id]
		c.pendingMu.Unlock()
		if !ok {
			c.logger.Debug("Discarding unmatched response", "id", id)
			return
		}
		select {
		case respCh <- msg:
		default:
		}
		return
	}

	switch msg.Method {
	case "textDocument/publishDiagnostics":
		var p struct {
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(msg.Params, &p); err == nil {
			c.markDiagnosed(p.URI)
		}
	case "window/logMessage", "window/showMessage":
		var p struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg.Params, &p); err == nil {
			c.logger.Debug("Language server message", "message", p.Message)
		}
	}

	// Server-initiated requests get a null result.
	if len(msg.ID) > 0 && msg.Method != "" {
		_ = c.conn.Write(&Message{JSONRPC: "2.0", ID: msg.ID, Result: json.RawMessage("null")})
	}
}

func (c *Client) diagnosticsSignal(uri string) chan struct{} {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	ch, ok := c.diagnosed[uri]
	if !ok {
		ch = make(chan struct{})
		c.diagnosed[uri] = ch
	}
	return ch
}

func (c *Client) markDiagnosed(uri string) {
	c.diagMu.Lock()
	defer c.diagMu.Unlock()
	ch, ok := c.diagnosed[uri]
	if !ok {
		ch = make(chan struct{})
		c.diagnosed[uri] = ch
	}
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func (c *Client) resetDiagnostics(uri string) {
	c.diagMu.Lock()
	delete(c.diagnosed, uri)
	c.diagMu.Unlock()
}

// waitReady blocks until the server publishes diagnostics for uri or the
// settle timeout passes, whichever is first.
func (c *Client) waitReady(ctx context.Context, uri string) {
	if c.opts.SettleTimeout <= 0 {
		return
	}
	timer := time.NewTimer(c.opts.SettleTimeout)
	defer timer.Stop()
	select {
	case <-c.diagnosticsSignal(uri):
	case <-timer.C:
	case <-ctx.Done():
	case <-c.done:
	}
}

// DocumentSymbols opens a document, waits for the server to settle, requests
// its symbols and closes it again.
func (c *Client) DocumentSymbols(ctx context.Context, absPath, languageID, text string) ([]model.Symbol, error) {
	var symbols []model.Symbol
	err := c.WithDocument(ctx, absPath, languageID, text, func() error {
		var err error
		symbols, err = c.Symbols(ctx, absPath)
		return err
	})
	return symbols, err
}

// WithDocument opens a document, waits for the server to settle and runs fn
// while the document is still open. The document is closed when fn returns.
func (c *Client) WithDocument(ctx context.Context, absPath, languageID, text string, fn func() error) error {
	uri := paths.FileURI(absPath)

	c.resetDiagnostics(uri)
	err := c.notify("textDocument/didOpen", map[string]interface{}{
		"textDocument": map[string]interface{}{
			"uri":        uri,
			"languageId": languageID,
			"version":    1,
			"text":       text,
		},
	})
	if err != nil {
		return errors.New(errors.ProtocolError, "didOpen failed", err)
	}
	defer func() {
		_ = c.notify("textDocument/didClose", map[string]interface{}{
			"textDocument": map[string]interface{}{"uri": uri},
		})
	}()

	c.waitReady(ctx, uri)
	return fn()
}

// Symbols requests the symbols of an open document. An empty result is
// retried PollAttempts times with exponential backoff before it is accepted.
func (c *Client) Symbols(ctx context.Context, absPath string) ([]model.Symbol, error) {
	rel := c.relPath(absPath)
	params := map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": paths.FileURI(absPath)},
	}
	backoff := c.opts.SettleTimeout
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	for attempt := 0; ; attempt++ {
		result, err := c.call(ctx, "textDocument/documentSymbol", params, c.opts.RequestTimeout)
		if err != nil {
			return nil, err
		}
		symbols, err := normalizeSymbols(result, rel, c.opts.MaxSymbolDepth)
		if err != nil {
			return nil, err
		}
		if len(symbols) > 0 || attempt >= c.opts.PollAttempts {
			return symbols, nil
		}

		c.logger.Debug("Empty symbol result, polling again", "path", rel, "attempt", attempt+1, "backoff", backoff)
		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return symbols, nil
		}
		backoff *= 2
	}
}

// Hover returns the hover text at a position, flattened to plain text.
func (c *Client) Hover(ctx context.Context, uri string, line, character int) (string, error) {
	result, err := c.call(ctx, "textDocument/hover", positionParams(uri, line, character), c.opts.RequestTimeout)
	if err != nil {
		return "", err
	}
	if len(result) == 0 || string(result) == "null" {
		return "", nil
	}
	var hover struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(result, &hover); err != nil {
		return "", errors.New(errors.ProtocolError, "unexpected hover result", err)
	}
	return flattenHover(hover.Contents), nil
}

// flattenHover accepts MarkupContent, MarkedString and MarkedString[].
func flattenHover(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value != "" {
		return strings.TrimSpace(obj.Value)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var parts []string
		for _, item := range list {
			if text := flattenHover(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n\n")
	}
	return ""
}

// References returns the locations referring to the symbol at a position.
func (c *Client) References(ctx context.Context, uri string, line, character int) ([]Location, error) {
	params := positionParams(uri, line, character)
	params["context"] = map[string]interface{}{"includeDeclaration": false}

	result, err := c.call(ctx, "textDocument/references", params, c.opts.RequestTimeout)
	if err != nil {
		return nil, err
	}
	locations := []Location{}
	if len(result) == 0 || string(result) == "null" {
		return locations, nil
	}
	if err := json.Unmarshal(result, &locations); err != nil {
		return nil, errors.New(errors.ProtocolError, "unexpected references result", err)
	}
	return locations, nil
}

func positionParams(uri string, line, character int) map[string]interface{} {
	return map[string]interface{}{
		"textDocument": map[string]interface{}{"uri": uri},
		"position": map[string]interface{}{
			"line":      line,
			"character": character,
		},
	}
}

func (c *Client) relPath(absPath string) string {
	if !paths.IsWithinRepo(absPath, c.root) {
		return filepath.ToSlash(absPath)
	}
	rel, err := paths.CanonicalizePath(absPath, c.root)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return rel
}

// Close shuts the session down: shutdown and exit notifications, stdin
// closed, then a bounded wait for the process before it is killed.
// Calling Close more than once is safe.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		_ = c.notify("shutdown", nil)
		_ = c.notify("exit", nil)
		_ = c.stdin.Close()

		if c.cmd == nil || c.cmd.Process == nil {
			return
		}
		exited := make(chan error, 1)
		go func() { exited <- c.cmd.Wait() }()

		timer := time.NewTimer(c.opts.ShutdownTimeout)
		defer timer.Stop()
		select {
		case <-exited:
			return
		case <-timer.C:
		}

		if err := c.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			c.logger.Warn("Failed to kill language server", "error", err)
		}
		select {
		case <-exited:
		case <-time.After(c.opts.ShutdownTimeout):
			c.logger.Warn("Language server did not exit", "pid", c.cmd.Process.Pid)
		}
	})
	return nil
}
