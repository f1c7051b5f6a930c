package domain

import (
	"context"

	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// NoInput is the argument struct of tools that take no parameters.
type NoInput struct{}

// ReportResult represents the MCP tool output for a tabular report.
type ReportResult struct {
	Title   string     `json:"title" jsonschema:"report title"`
	Columns []string   `json:"columns" jsonschema:"column headers in display order"`
	Rows    [][]string `json:"rows" jsonschema:"rendered cells, one slice per row"`
}

// reportDescriptions extends the catalog entries with the guidance a model
// needs to pick the right report.
var reportDescriptions = map[string]string{
	"fetch_deduplicated_visit_report":           "Retrieves a consolidated report of 'Planned Visits' grouped by Customer. Customer names are normalised and near-duplicates merged, so one customer appears once with all of its ids.",
	"fetch_deduplicated_sales_report":           "Retrieves a consolidated Sales Performance Report grouped by Salesman. Raw salesman fields are resolved by code, digits or fuzzy name; entries naming several salesmen credit each of them in full.",
	"fetch_transaction_report_by_customer_name": "Retrieves transaction counts grouped by normalized Customer Name, linking accounting customer ids to the official customer directory.",
	"fetch_visit_plans_by_salesman":             "Retrieves the count of 'Planned Visits' grouped by Salesman.",
	"fetch_transaction_report_by_product":       "Retrieves sales performance grouped by Product (Units Sold & Revenue). Raw product names are mapped to the official product registry.",
	"fetch_visit_plans_by_clinic":               "Retrieves 'Planned Visits' grouped by Clinic, distinguishing branches by City.",
	"fetch_report_counts_by_salesman":           "Retrieves the count of *Completed* Visits (Reports) grouped by Salesman.",
	"fetch_comprehensive_salesman_performance":  "Retrieves a 360-degree 'Scorecard' for Salesmen (Plans vs Visits vs Sales) with plan-to-visit and visit-to-transaction ratios.",
}

// ReportTool defines the MCP tool schema for a catalog report.
func ReportTool(entry report.Entry) *mcp.Tool {
	description, ok := reportDescriptions[entry.Name]
	if !ok {
		description = entry.Description
	}
	return &mcp.Tool{
		Name:        entry.Name,
		Description: description,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// ReportHandler runs the catalog report called name and returns its Markdown
// table as content.
func ReportHandler(svc *report.Service, logger *zap.Logger, name string) mcp.ToolHandlerFor[NoInput, ReportResult] {
	return instrument(logger, name, emptyReport, func(ctx context.Context, _ NoInput) (string, ReportResult, error) {
		table, err := svc.Run(ctx, name)
		if err != nil {
			return "", emptyReport(), err
		}
		return table.Markdown(), reportResult(table), nil
	})
}

func emptyReport() ReportResult {
	return ReportResult{Columns: []string{}, Rows: [][]string{}}
}

func reportResult(table report.Table) ReportResult {
	result := ReportResult{Title: table.Title, Columns: table.Columns, Rows: table.Rows}
	if result.Columns == nil {
		result.Columns = []string{}
	}
	if result.Rows == nil {
		result.Rows = [][]string{}
	}
	return result
}
