// Package mcp exposes the analyzers and the dynamic test flow as MCP tools
// over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/repograde/repograde/internal/application"
)

// Services are the application services the tools call. Dynamic is nil when
// no text generator is configured; DynamicErr then says why.
type Services struct {
	Analyze    *application.AnalyzeService
	Dynamic    *application.DynamicService
	DynamicErr error
}

// NewServer creates the MCP server with every repograde tool and resource
// registered.
func NewServer(svc Services, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"repograde",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, svc)
	registerResources(s, svc)

	return s
}
