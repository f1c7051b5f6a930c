package service

import (
	"fmt"

	"github.com/cbta/cbta-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
	mcpRegistrationKindPrompts
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpReportToolsModuleName        = "report-tools"
	mcpSalesmanToolsModuleName      = "salesman-tools"
	mcpRawToolsModuleName           = "raw-tools"
	mcpDirectoryResourcesModuleName = "directory-resources"
	mcpPromptsModuleName            = "prompts"
)

// mcpRegistrationTarget is the subset of the MCP server that modules register against.
type mcpRegistrationTarget interface {
	AddTool(tool *mcp.Tool, handler any) error
	AddResource(resource *mcp.Resource, handler mcp.ResourceHandler)
	AddPrompt(prompt *mcp.Prompt, handler mcp.PromptHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

func (r mcpServerRegistrationAdapter) AddPrompt(prompt *mcp.Prompt, handler mcp.PromptHandler) {
	r.server.AddPrompt(prompt, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.NoInput, domain.ReportResult](),
	newMCPToolRegistrar[domain.NoInput, domain.ListingResult](),
	newMCPToolRegistrar[domain.SalesmanHistoryInput, domain.SalesmanHistoryResult](),
	newMCPToolRegistrar[domain.SalesmanComparisonInput, domain.TextResult](),
	newMCPToolRegistrar[domain.BestPerformersInput, domain.BestPerformersResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func (s *Server) registrationModules(prompts []domain.PromptSpec) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpReportToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerReportTools(registrar, s.reports, s.logger)
			},
		},
		{
			name: mcpSalesmanToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerSalesmanTools(registrar, s.reports, s.logger)
			},
		},
		{
			name: mcpRawToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerRawTools(registrar, s.reports, s.logger)
			},
		},
		{
			name: mcpDirectoryResourcesModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerDirectoryResources(registrar, s.reports)
				return nil
			},
		},
		{
			name: mcpPromptsModuleName,
			kind: mcpRegistrationKindPrompts,
			register: func(registrar mcpRegistrationTarget) error {
				registerPrompts(registrar, prompts, s.reports)
				return nil
			},
		},
	}
}
