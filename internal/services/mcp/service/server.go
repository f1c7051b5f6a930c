package service

import (
	"fmt"

	"github.com/cbta/cbta-mcp/internal/platform/branding"
	"github.com/cbta/cbta-mcp/internal/services/mcp/domain"
	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// serverInstructions tells clients how the tools relate.
const serverInstructions = "Field-sales reporting over the CBTA database. " +
	"The fetch_* report tools return deduplicated Markdown tables; output them as returned. " +
	"The raw log tools and the official directory resources expose uncleaned data for manual reconciliation."

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over Streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	reports   *report.Service
	logger    *zap.Logger
}

// New creates a configured MCP server whose tools, resources and prompts all
// read through reports.
func New(reports *report.Service, logger *zap.Logger) (*Server, error) {
	if reports == nil {
		return nil, fmt.Errorf("report service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	prompts, err := domain.LoadPrompts()
	if err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		Instructions: serverInstructions,
	})
	server := &Server{mcpServer: mcpServer, reports: reports, logger: logger}

	registrar := mcpServerRegistrationAdapter{server: mcpServer}
	for _, module := range server.registrationModules(prompts) {
		if err := module.register(registrar); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
		logger.Debug("registered MCP module", zap.String("module", module.name), zap.Stringer("kind", module.kind))
	}
	return server, nil
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

func (k mcpRegistrationKind) String() string {
	switch k {
	case mcpRegistrationKindTools:
		return "tools"
	case mcpRegistrationKindResources:
		return "resources"
	case mcpRegistrationKindPrompts:
		return "prompts"
	default:
		return "unknown"
	}
}
