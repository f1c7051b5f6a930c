package domain

import (
	"context"

	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ListingResult represents the MCP tool output for a raw log listing.
type ListingResult struct {
	Title string   `json:"title" jsonschema:"listing heading"`
	Items []string `json:"items" jsonschema:"one entry per distinct raw value"`
}

// RawSalesLogTool defines the MCP tool schema for raw salesman names.
func RawSalesLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "fetch_raw_transaction_data_by_salesman_name",
		Description: "Fetches raw transaction counts grouped by the exact salesman_name strings recorded in the logs. " +
			"Names are not cleaned, so typos, codes and multi-salesman entries appear as written.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// RawProductLogTool defines the MCP tool schema for raw product names.
func RawProductLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "fetch_raw_transaction_data_by_product_name",
		Description: "Fetches raw transaction counts grouped by the exact product names recorded in the logs.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// RawPlanLogTool defines the MCP tool schema for raw plan counts.
func RawPlanLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "fetch_raw_visit_plans",
		Description: "Fetches raw planned visit counts grouped by user id, before any name mapping.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// RawSalesLogHandler lists transaction counts per raw salesman field.
func RawSalesLogHandler(svc *report.Service, logger *zap.Logger) mcp.ToolHandlerFor[NoInput, ListingResult] {
	return listingHandler(logger, RawSalesLogTool().Name, svc.RawSalesLog)
}

// RawProductLogHandler lists transaction counts per raw product name.
func RawProductLogHandler(svc *report.Service, logger *zap.Logger) mcp.ToolHandlerFor[NoInput, ListingResult] {
	return listingHandler(logger, RawProductLogTool().Name, svc.RawProductLog)
}

// RawPlanLogHandler lists planned visit counts per user id.
func RawPlanLogHandler(svc *report.Service, logger *zap.Logger) mcp.ToolHandlerFor[NoInput, ListingResult] {
	return listingHandler(logger, RawPlanLogTool().Name, svc.RawPlanLog)
}

func listingHandler(logger *zap.Logger, tool string, load func(context.Context) (report.Listing, error)) mcp.ToolHandlerFor[NoInput, ListingResult] {
	return instrument(logger, tool, emptyListing, func(ctx context.Context, _ NoInput) (string, ListingResult, error) {
		listing, err := load(ctx)
		if err != nil {
			return "", emptyListing(), err
		}
		result := ListingResult{Title: listing.Title, Items: listing.Items}
		if result.Items == nil {
			result.Items = []string{}
		}
		return listing.Text(), result, nil
	})
}

func emptyListing() ListingResult { return ListingResult{Items: []string{}} }
