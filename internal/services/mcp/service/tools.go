package service

import (
	"fmt"

	"github.com/cbta/cbta-mcp/internal/services/mcp/domain"
	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// registerReportTools registers one tool per catalog report.
func registerReportTools(registrar mcpRegistrationTarget, reports *report.Service, logger *zap.Logger) error {
	for _, entry := range report.Catalog() {
		if err := registerTool(registrar, domain.ReportTool(entry), domain.ReportHandler(reports, logger, entry.Name)); err != nil {
			return err
		}
	}
	return nil
}

func registerSalesmanTools(registrar mcpRegistrationTarget, reports *report.Service, logger *zap.Logger) error {
	if err := registerTool(registrar, domain.SalesmanHistoryTool(), domain.SalesmanHistoryHandler(reports, logger)); err != nil {
		return err
	}
	if err := registerTool(registrar, domain.SalesmanComparisonTool(), domain.SalesmanComparisonHandler(reports, logger)); err != nil {
		return err
	}
	return registerTool(registrar, domain.BestPerformersTool(), domain.BestPerformersHandler(reports, logger))
}

func registerRawTools(registrar mcpRegistrationTarget, reports *report.Service, logger *zap.Logger) error {
	if err := registerTool(registrar, domain.RawSalesLogTool(), domain.RawSalesLogHandler(reports, logger)); err != nil {
		return err
	}
	if err := registerTool(registrar, domain.RawProductLogTool(), domain.RawProductLogHandler(reports, logger)); err != nil {
		return err
	}
	return registerTool(registrar, domain.RawPlanLogTool(), domain.RawPlanLogHandler(reports, logger))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerDirectoryResources registers the official reference listings.
func registerDirectoryResources(registrar mcpRegistrationTarget, reports *report.Service) {
	registrar.AddResource(domain.ProductRegistryResource(), domain.ProductRegistryResourceHandler(reports))
	registrar.AddResource(domain.UserDirectoryResource(), domain.UserDirectoryResourceHandler(reports))
	registrar.AddResource(domain.CustomerDirectoryResource(), domain.CustomerDirectoryResourceHandler(reports))
}

func registerPrompts(registrar mcpRegistrationTarget, prompts []domain.PromptSpec, reports *report.Service) {
	for _, spec := range prompts {
		registrar.AddPrompt(spec.Prompt(), domain.PromptHandler(spec, reports))
	}
}
