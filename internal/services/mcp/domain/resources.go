package domain

import (
	"context"
	"fmt"

	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// ProductRegistryURI addresses the official product registry.
	ProductRegistryURI = "sales://official_products"
	// UserDirectoryURI addresses the official user directory.
	UserDirectoryURI = "users://official_directory"
	// CustomerDirectoryURI addresses the official customer directory.
	CustomerDirectoryURI = "customers://official_directory"
)

// ProductRegistryResource defines the MCP resource for official products.
func ProductRegistryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "official_products",
		Description: "The official product registry. Use it as the source of truth when mapping raw product names.",
		MIMEType:    "text/plain",
		URI:         ProductRegistryURI,
	}
}

// UserDirectoryResource defines the MCP resource for official users.
func UserDirectoryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "official_users",
		Description: "The official user directory with id, username code and name of every salesman.",
		MIMEType:    "text/plain",
		URI:         UserDirectoryURI,
	}
}

// CustomerDirectoryResource defines the MCP resource for official customers.
func CustomerDirectoryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "official_customers",
		Description: "The official customer directory with id, name and normalised phone.",
		MIMEType:    "text/plain",
		URI:         CustomerDirectoryURI,
	}
}

// ProductRegistryResourceHandler reads the product registry.
func ProductRegistryResourceHandler(svc *report.Service) mcp.ResourceHandler {
	return listingResourceHandler(ProductRegistryURI, svc.ProductRegistry)
}

// UserDirectoryResourceHandler reads the user directory.
func UserDirectoryResourceHandler(svc *report.Service) mcp.ResourceHandler {
	return listingResourceHandler(UserDirectoryURI, svc.UserDirectory)
}

// CustomerDirectoryResourceHandler reads the customer directory.
func CustomerDirectoryResourceHandler(svc *report.Service) mcp.ResourceHandler {
	return listingResourceHandler(CustomerDirectoryURI, svc.CustomerDirectory)
}

func listingResourceHandler(uri string, load func(context.Context) (report.Listing, error)) mcp.ResourceHandler {
	return func(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		listing, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", uri, err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     listing.Text(),
				},
			},
		}, nil
	}
}
