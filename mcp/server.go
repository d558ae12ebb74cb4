package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "mcp-server-linux-roles"
	ServerVersion   = "0.1.0"
)

// Server answers MCP requests read line by line from an input stream.
// Requests are handled one at a time, so responses leave in request order.
type Server struct {
	reader     *bufio.Reader
	writer     io.Writer
	dispatcher *Dispatcher
	version    string
	mu         sync.Mutex
	log        *slog.Logger
}

// ServerOption is a functional option for configuring Server
type ServerOption func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		s.log = log.With("component", "rpc")
	}
}

// WithVersion overrides the advertised server version.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a new MCP server
func NewServer(r io.Reader, w io.Writer, dispatcher *Dispatcher, opts ...ServerOption) *Server {
	s := &Server{
		reader:     bufio.NewReader(r),
		writer:     w,
		dispatcher: dispatcher,
		version:    ServerVersion,
		log:        slog.Default().With("component", "rpc"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type readResult struct {
	line string
	err  error
}

// Run serves until the input ends (nil), ctx is cancelled (nil, after the
// in-flight request finishes), or reading or writing fails (error).
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("server starting", "version", s.version)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan readResult)
	go func() {
		for {
			line, err := s.reader.ReadString('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		var res readResult
		select {
		case <-parent.Done():
			s.log.Info("context cancelled, shutting down")
			return nil
		case res = <-lines:
		}

		if res.line != "" {
			if err := s.handleLine(ctx, res.line); err != nil {
				return err
			}
		}

		if res.err == io.EOF {
			s.log.Info("EOF received, shutting down")
			return nil
		}
		if res.err != nil {
			s.log.Error("read error", "error", res.err)
			return fmt.Errorf("failed to read request: %w", res.err)
		}
	}
}

// handleLine processes one input line. Only write failures are returned.
func (s *Server) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	s.log.Debug("received message", "line", line)

	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Error("JSON parse error", "error", err)
		return nil
	}
	if req.JSONRPC != "2.0" {
		s.log.Warn("ignoring message with wrong jsonrpc version", "jsonrpc", req.JSONRPC)
		return nil
	}

	if req.IsNotification() {
		switch req.Method {
		case "notifications/initialized", "initialized":
			s.log.Debug("initialized notification received")
		default:
			s.log.Debug("ignoring notification", "method", req.Method)
		}
		return nil
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if result == nil && rpcErr == nil {
		return nil
	}
	if rpcErr != nil {
		return s.sendError(req.ID, rpcErr.Code, rpcErr.Message)
	}
	return s.sendResult(req.ID, result)
}

// dispatch routes a request. A nil result and nil error means no response.
func (s *Server) dispatch(ctx context.Context, req *JSONRPCRequest) (result any, rpcErr *RPCError) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", "method", req.Method, "panic", r)
			result = nil
			rpcErr = &RPCError{Code: mcpgo.INTERNAL_ERROR, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req), nil
	case "tools/list":
		return ToolsListResult{Tools: s.dispatcher.Tools()}, nil
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		s.log.Debug("ignoring unknown method", "method", req.Method)
		return nil, nil
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) InitializeResult {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.log.Warn("failed to parse initialize params", "error", err)
		}
	}
	s.log.Info("client initializing", "client", params.ClientInfo.Name, "protocolVersion", params.ProtocolVersion)

	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capability{
			Tools: &ToolCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) (any, *RPCError) {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.log.Error("failed to parse tool call params", "error", err)
		return nil, &RPCError{Code: mcpgo.INVALID_PARAMS, Message: "Invalid params"}
	}

	result, err := s.dispatcher.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Error("tool call failed", "tool", params.Name, "error", err)
		return nil, &RPCError{Code: mcpgo.INTERNAL_ERROR, Message: err.Error()}
	}
	return result, nil
}

func (s *Server) sendResult(id json.RawMessage, result any) error {
	return s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
	})
}

func (s *Server) send(resp JSONRPCResponse) error {
	if (resp.Result == nil) == (resp.Error == nil) {
		s.log.Error("refusing to send response without exactly one of result and error")
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		data, err = json.Marshal(JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   &RPCError{Code: mcpgo.INTERNAL_ERROR, Message: "failed to encode response"},
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.writer, "%s\n", data); err != nil {
		s.log.Error("failed to write response", "error", err)
		return fmt.Errorf("failed to write response: %w", err)
	}
	s.log.Debug("sent response", "data", string(data))
	return nil
}
