// Package mcp exposes call graph exploration to agents over the Model
// Context Protocol.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/callscope/internal/analyzer"
	"github.com/ziadkadry99/callscope/internal/snapshots"
	"github.com/ziadkadry99/callscope/internal/state"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over a single exploration session. Tool calls
// move the session forward through state.Apply.
type Server struct {
	analysis *analyzer.Service
	limits   snapshots.Limits
	mcp      *server.MCPServer

	mu    sync.Mutex
	state state.State
}

// NewServer creates a new MCP server. analysis may be nil, in which case
// analyze_path reports that analysis is unavailable.
func NewServer(analysis *analyzer.Service, limits snapshots.Limits) *Server {
	if limits == (snapshots.Limits{}) {
		limits = snapshots.DefaultLimits()
	}
	s := &Server{
		analysis: analysis,
		limits:   limits,
		state:    state.New(),
	}

	s.mcp = server.NewMCPServer(
		"callscope",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(loadGraphTool, s.handleLoadGraph)
	s.mcp.AddTool(analyzePathTool, s.handleAnalyzePath)
	s.mcp.AddTool(topFunctionsTool, s.handleTopFunctions)
	s.mcp.AddTool(nodeDetailsTool, s.handleNodeDetails)
	s.mcp.AddTool(namespaceTreeTool, s.handleNamespaceTree)
	s.mcp.AddTool(callTreeDiagramTool, s.handleCallTreeDiagram)
}

// apply advances the session and returns the new state.
func (s *Server) apply(events ...state.Event) state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Replay(s.state, events...)
	return s.state
}

// snapshot returns the current state.
func (s *Server) snapshot() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
