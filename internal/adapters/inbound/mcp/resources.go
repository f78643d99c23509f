package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/repograde/repograde/internal/domain"
)

func registerResources(s *server.MCPServer, svc Services) {
	// repograde://tools - analyzers and dynamic test types
	s.AddResource(
		mcplib.NewResource(
			"repograde://tools",
			"Available Checks",
			mcplib.WithResourceDescription("Analyzer tools and dynamic test types this server can run"),
			mcplib.WithMIMEType("application/json"),
		),
		handleToolsResource(),
	)

	// repograde://history/{owner}/{name} - stored records for one repository
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"repograde://history/{owner}/{name}",
			"Repository History",
			mcplib.WithTemplateDescription("Stored analysis and dynamic test records for a repository, newest first"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleHistoryResource(svc),
	)
}

func handleToolsResource() server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		catalog := struct {
			Tools     []domain.Tool     `json:"tools"`
			TestTypes []domain.TestType `json:"testTypes"`
		}{domain.AllTools, domain.AllTestTypes}
		return jsonContents(request.Params.URI, catalog)
	}
}

func handleHistoryResource(svc Services) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		owner := templateArg(request, "owner")
		name := templateArg(request, "name")
		if owner == "" || name == "" {
			return nil, fmt.Errorf("owner and name are required")
		}

		records, err := svc.Analyze.History(ctx, domain.RepoRef{Owner: owner, Name: name}.String(), defaultHistoryLimit)
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []domain.Record{}
		}
		return jsonContents(request.Params.URI, records)
	}
}

// templateArg reads a URI template variable. Depending on the matcher the
// value arrives as a string or a one-element slice.
func templateArg(request mcplib.ReadResourceRequest, key string) string {
	switch v := request.Params.Arguments[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
