package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"lspwiki/internal/errors"
)

// Message is a JSON-RPC 2.0 request, response or notification.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// IsResponse reports whether the message answers a request.
func (m *Message) IsResponse() bool {
	return m.Method == "" && len(m.ID) > 0
}

// IntID returns the numeric id of the message, if it has one.
func (m *Message) IntID() (int64, bool) {
	if len(m.ID) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(string(m.ID), 10, 64)
	return id, err == nil
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("LSP error [%d]: %s", e.Code, e.Message)
}

// JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// Conn frames JSON-RPC messages with LSP base protocol headers.
// Writes are serialized; reads must come from a single goroutine.
type Conn struct {
	r   *bufio.Reader
	w   io.Writer
	wmu sync.Mutex
}

// NewConn creates a connection reading from r and writing to w.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: bufio.NewReader(r), w: w}
}

// Write sends one framed message.
func (c *Conn) Write(msg *Message) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return WriteMessage(c.w, msg)
}

// Read receives one framed message.
func (c *Conn) Read() (*Message, error) {
	return ReadMessage(c.r)
}

// WriteMessage writes msg with a Content-Length header counting payload bytes.
func WriteMessage(w io.Writer, msg *Message) error {
	if msg.JSONRPC == "" {
		msg.JSONRPC = "2.0"
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.New(errors.ProtocolError, "failed to marshal message", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(data))
	buf.Write(data)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// maxMessageSize bounds a single payload. A larger Content-Length leaves the
// stream unreadable, so the reader has to give up on the connection.
const maxMessageSize = 64 << 20

var errMessageTooLarge = fmt.Errorf("message exceeds %d bytes", maxMessageSize)

// ReadMessage reads a header block and its payload.
// Unknown headers are ignored. Malformed headers or payloads return a
// PROTOCOL_ERROR; stream failures are returned as is.
func ReadMessage(r *bufio.Reader) (*Message, error) {
	length := -1
	malformed := ""
	headers := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if headers == 0 {
				// Blank line between messages
				continue
			}
			break
		}
		headers++

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			malformed = line
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				malformed = line
				continue
			}
			length = n
		}
	}

	if length < 0 {
		if malformed != "" {
			return nil, errors.New(errors.ProtocolError, "malformed header: "+strconv.Quote(malformed), nil)
		}
		return nil, errors.New(errors.ProtocolError, "missing Content-Length header", nil)
	}

	if length > maxMessageSize {
		return nil, errors.New(errors.ProtocolError, fmt.Sprintf("Content-Length %d rejected", length), errMessageTooLarge)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, errors.New(errors.ProtocolError, "invalid message payload", err)
	}
	return &msg, nil
}
