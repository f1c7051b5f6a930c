package domain

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptCatalogYAML []byte

// PromptSpec is one entry of the prompt catalog.
type PromptSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Sources     []string `yaml:"sources"`
	Template    string   `yaml:"template"`

	tmpl *template.Template
}

type promptCatalog struct {
	Prompts []PromptSpec `yaml:"prompts"`
}

// Prompt source names usable from templates.
const (
	SourceOfficialUsers    = "official_users"
	SourceOfficialProducts = "official_products"
	SourceRawSales         = "raw_sales"
	SourceRawProducts      = "raw_products"
	SourceRawPlans         = "raw_plans"
)

// promptSources resolves the data a template may inline.
func promptSources(svc *report.Service) map[string]func(context.Context) (report.Listing, error) {
	return map[string]func(context.Context) (report.Listing, error){
		SourceOfficialUsers:    svc.UserDirectory,
		SourceOfficialProducts: svc.ProductRegistry,
		SourceRawSales:         svc.RawSalesLog,
		SourceRawProducts:      svc.RawProductLog,
		SourceRawPlans:         svc.RawPlanLog,
	}
}

var knownSources = map[string]bool{
	SourceOfficialUsers:    true,
	SourceOfficialProducts: true,
	SourceRawSales:         true,
	SourceRawProducts:      true,
	SourceRawPlans:         true,
}

// LoadPrompts parses the embedded prompt catalog.
func LoadPrompts() ([]PromptSpec, error) {
	return ParsePrompts(promptCatalogYAML)
}

// ParsePrompts parses a YAML prompt catalog and compiles every template.
func ParsePrompts(data []byte) ([]PromptSpec, error) {
	var catalog promptCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Prompts))
	for i := range catalog.Prompts {
		spec := &catalog.Prompts[i]
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return nil, fmt.Errorf("prompt %d: name is required", i)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("prompt %q: duplicate name", spec.Name)
		}
		seen[spec.Name] = true
		for _, source := range spec.Sources {
			if !knownSources[source] {
				return nil, fmt.Errorf("prompt %q: unknown source %q", spec.Name, source)
			}
		}
		tmpl, err := template.New(spec.Name).Option("missingkey=error").Parse(spec.Template)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", spec.Name, err)
		}
		spec.tmpl = tmpl
	}
	return catalog.Prompts, nil
}

// Prompt defines the MCP prompt for a catalog entry.
func (p PromptSpec) Prompt() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        p.Name,
		Description: p.Description,
	}
}

// Render loads the entry's sources and executes its template.
func (p PromptSpec) Render(ctx context.Context, svc *report.Service) (string, error) {
	if p.tmpl == nil {
		return "", fmt.Errorf("prompt %q is not compiled", p.Name)
	}
	data := make(map[string]string, len(p.Sources))
	if len(p.Sources) > 0 {
		sources := promptSources(svc)
		for _, name := range p.Sources {
			listing, err := sources[name](ctx)
			if err != nil {
				return "", fmt.Errorf("load %s: %w", name, err)
			}
			data[name] = listing.Text()
		}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", p.Name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// PromptHandler renders the catalog entry as a single user message.
func PromptHandler(spec PromptSpec, svc *report.Service) mcp.PromptHandler {
	return func(ctx context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := spec.Render(ctx, svc)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: spec.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: text},
				},
			},
		}, nil
	}
}
