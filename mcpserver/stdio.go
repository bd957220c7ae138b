package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

const stdioSessionID = "stdio"

// rawArgumentsKey carries the undecoded arguments of a tools/call request.
type rawArgumentsKey struct{}

// HandleMessage processes one JSON-RPC message and returns the response, or
// nil for notifications. Tool arguments reach the operation as sent, so
// property order and number precision survive.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	var envelope struct {
		Method string `json:"method"`
		Params struct {
			Arguments json.RawMessage `json:"arguments"`
		} `json:"params"`
	}
	if err := json.Unmarshal(message, &envelope); err == nil &&
		envelope.Method == string(mcp.MethodToolsCall) && len(envelope.Params.Arguments) > 0 {
		ctx = context.WithValue(ctx, rawArgumentsKey{}, envelope.Params.Arguments)
	}
	return s.mcp.HandleMessage(ctx, message)
}

func rawArguments(ctx context.Context) (json.RawMessage, bool) {
	raw, ok := ctx.Value(rawArgumentsKey{}).(json.RawMessage)
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

// stdioSession is the single client session of a stdio transport.
type stdioSession struct {
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
}

func newStdioSession() *stdioSession {
	return &stdioSession{notifications: make(chan mcp.JSONRPCNotification, 100)}
}

func (s *stdioSession) SessionID() string { return stdioSessionID }

func (s *stdioSession) NotificationChannel() chan<- mcp.JSONRPCNotification {
	return s.notifications
}

func (s *stdioSession) Initialize() { s.initialized.Store(true) }

func (s *stdioSession) Initialized() bool { return s.initialized.Load() }

// frameWriter writes newline-delimited JSON-RPC messages.
type frameWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *frameWriter) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintf(w.out, "%s\n", data)
	return err
}

type frame struct {
	line []byte
	err  error
}

func readFrames(ctx context.Context, in io.Reader) <-chan frame {
	frames := make(chan frame)
	go func() {
		defer close(frames)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case frames <- frame{line: line}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					select {
					case frames <- frame{err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()
	return frames
}

// ServeStdio serves MCP over the given streams until ctx is cancelled or in closes.
// It returns nil when in reaches EOF.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	session := newStdioSession()
	if err := s.mcp.RegisterSession(ctx, session); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	defer s.mcp.UnregisterSession(ctx, session.SessionID())

	ctx, cancel := context.WithCancel(s.mcp.WithContext(ctx, session))
	w := &frameWriter{out: out}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-session.notifications:
				if err := w.write(n); err != nil {
					s.logger.Error().Err(err).Msg("Failed to write notification")
				}
			}
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	s.logger.Info().Str("transport", "stdio").Msg("MCP server listening")

	frames := readFrames(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if f.err != nil {
				return fmt.Errorf("read request: %w", f.err)
			}
			if resp := s.HandleMessage(ctx, bytes.TrimSpace(f.line)); resp != nil {
				if err := w.write(resp); err != nil {
					return fmt.Errorf("write response: %w", err)
				}
			}
		}
	}
}
