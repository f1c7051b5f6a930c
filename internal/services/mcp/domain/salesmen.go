package domain

import (
	"context"
	"strings"

	platformerrors "github.com/cbta/cbta-mcp/internal/platform/errors"
	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// SalesmanHistoryInput represents the MCP tool input for a single salesman deep dive.
type SalesmanHistoryInput struct {
	SalesmanName string `json:"salesman_name" jsonschema:"salesman name or code, e.g. 'Gladys' or 'PS100'"`
}

// SalesmanComparisonInput represents the MCP tool input for comparing two salesmen.
type SalesmanComparisonInput struct {
	SalesmanA string `json:"salesman_a" jsonschema:"first salesman name or code"`
	SalesmanB string `json:"salesman_b" jsonschema:"second salesman name or code"`
}

// BestPerformersInput represents the MCP tool input for the period leaderboard.
type BestPerformersInput struct {
	StartDate string `json:"start_date" jsonschema:"inclusive start date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date" jsonschema:"inclusive end date (YYYY-MM-DD)"`
}

// SalesmanHistoryResult represents the MCP tool output for a salesman deep dive.
type SalesmanHistoryResult struct {
	Found        bool     `json:"found" jsonschema:"whether the name resolved to an official user"`
	UserID       string   `json:"user_id,omitempty" jsonschema:"official user identifier"`
	Name         string   `json:"name,omitempty" jsonschema:"official user name"`
	Transactions int64    `json:"transactions" jsonschema:"resolved transaction count"`
	Notes        []string `json:"notes" jsonschema:"non-empty notes from the newest visit reports"`
}

// TextResult represents the MCP tool output of tools that render a text dataset.
type TextResult struct {
	Text string `json:"text" jsonschema:"rendered dataset"`
}

// BestPerformersResult represents the MCP tool output for the period leaderboard.
type BestPerformersResult struct {
	StartDate  string             `json:"start_date" jsonschema:"inclusive start date"`
	EndDate    string             `json:"end_date" jsonschema:"inclusive end date"`
	Performers []report.Performer `json:"performers" jsonschema:"per-salesman activity in the period"`
	TopProduct string             `json:"top_product,omitempty" jsonschema:"product with the most units sold"`
	TopUnits   float64            `json:"top_units,omitempty" jsonschema:"units sold of the top product"`
}

func emptySalesmanHistory() SalesmanHistoryResult {
	return SalesmanHistoryResult{Notes: []string{}}
}

func emptyText() TextResult { return TextResult{} }

func emptyBestPerformers() BestPerformersResult {
	return BestPerformersResult{Performers: []report.Performer{}}
}

// SalesmanHistoryTool defines the MCP tool schema for a single salesman deep dive.
func SalesmanHistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "fetch_salesman_visit_history",
		Description: "Fetches detailed visit notes and transaction stats for a SPECIFIC salesman. " +
			"Identifies the salesman from the input name or code, counts their transactions using identity resolution " +
			"and returns their recent visit notes.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// SalesmanComparisonTool defines the MCP tool schema for comparing two salesmen.
func SalesmanComparisonTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "fetch_salesman_comparison_data",
		Description: "Fetches side-by-side visit notes and transaction stats for TWO salesmen, " +
			"combined into a single dataset for comparative analysis.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// BestPerformersTool defines the MCP tool schema for the period leaderboard.
func BestPerformersTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "fetch_best_performers",
		Description: "Finds the best performing salesmen between start_date and end_date (YYYY-MM-DD, inclusive): " +
			"most visits, most transactions, highest revenue, best conversion ratio and the most popular product.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// SalesmanHistoryHandler renders one salesman's history. A name that resolves
// to nobody is reported in the text, not as a tool error.
func SalesmanHistoryHandler(svc *report.Service, logger *zap.Logger) mcp.ToolHandlerFor[SalesmanHistoryInput, SalesmanHistoryResult] {
	return instrument(logger, SalesmanHistoryTool().Name, emptySalesmanHistory, func(ctx context.Context, input SalesmanHistoryInput) (string, SalesmanHistoryResult, error) {
		name := strings.TrimSpace(input.SalesmanName)
		if name == "" {
			return "", emptySalesmanHistory(), platformerrors.New(platformerrors.CodeArgumentMissing, "salesman_name is required")
		}
		history, err := svc.SalesmanHistory(ctx, name)
		if platformerrors.CodeOf(err) == platformerrors.CodeSalesmanNotFound {
			return "Error: " + errorMessage(err), emptySalesmanHistory(), nil
		}
		if err != nil {
			return "", emptySalesmanHistory(), err
		}
		return history.Text(), SalesmanHistoryResult{
			Found:        true,
			UserID:       history.UserID,
			Name:         history.Name,
			Transactions: history.Transactions,
			Notes:        history.Notes,
		}, nil
	})
}

// SalesmanComparisonHandler renders two salesman histories as one dataset.
func SalesmanComparisonHandler(svc *report.Service, logger *zap.Logger) mcp.ToolHandlerFor[SalesmanComparisonInput, TextResult] {
	return instrument(logger, SalesmanComparisonTool().Name, emptyText, func(ctx context.Context, input SalesmanComparisonInput) (string, TextResult, error) {
		a, b := strings.TrimSpace(input.SalesmanA), strings.TrimSpace(input.SalesmanB)
		if a == "" || b == "" {
			return "", TextResult{}, platformerrors.New(platformerrors.CodeArgumentMissing, "salesman_a and salesman_b are required")
		}
		text, err := svc.Comparison(ctx, a, b)
		if err != nil {
			return "", TextResult{}, err
		}
		return text, TextResult{Text: text}, nil
	})
}

// BestPerformersHandler renders the leaderboard for an inclusive date range.
func BestPerformersHandler(svc *report.Service, logger *zap.Logger) mcp.ToolHandlerFor[BestPerformersInput, BestPerformersResult] {
	return instrument(logger, BestPerformersTool().Name, emptyBestPerformers, func(ctx context.Context, input BestPerformersInput) (string, BestPerformersResult, error) {
		performance, err := svc.BestPerformers(ctx, input.StartDate, input.EndDate)
		if err != nil {
			return "", emptyBestPerformers(), err
		}
		return performance.Text(), BestPerformersResult{
			StartDate:  performance.Start,
			EndDate:    performance.End,
			Performers: performance.Performers,
			TopProduct: performance.TopProduct,
			TopUnits:   performance.TopUnits,
		}, nil
	})
}
