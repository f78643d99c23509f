package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/repograde/repograde/internal/domain"
)

const defaultHistoryLimit = 20

func registerTools(s *server.MCPServer, svc Services) {
	s.AddTool(
		mcplib.NewTool("repograde_analyze",
			mcplib.WithDescription("Run code-quality analyzers against a GitHub repository and return one scored result per tool as JSON"),
			mcplib.WithString("repository", mcplib.Required(), mcplib.Description("Repository as owner/name")),
			mcplib.WithString("tools", mcplib.Description("Comma-separated tools (eslint, stylelint, htmlhint, prettier, markdownlint, npm-audit, depcheck, codescanning). Defaults to all")),
			mcplib.WithString("token", mcplib.Description("GitHub token; the configured token is used when empty")),
		),
		handleAnalyze(svc),
	)

	s.AddTool(
		mcplib.NewTool("repograde_dynamic_test",
			mcplib.WithDescription("Generate a CI workflow for a test type and return an AI quality report for the repository. Nothing is committed"),
			mcplib.WithString("repository", mcplib.Required(), mcplib.Description("Repository as owner/name")),
			mcplib.WithString("test_type", mcplib.Required(), mcplib.Description("One of eslint, prettier, jest, security, performance, accessibility")),
			mcplib.WithString("token", mcplib.Description("GitHub token; the configured token is used when empty")),
		),
		handleDynamicTest(svc),
	)

	s.AddTool(
		mcplib.NewTool("repograde_commit_workflow",
			mcplib.WithDescription("Commit a generated workflow to .github/workflows, creating or updating the file"),
			mcplib.WithString("repository", mcplib.Required(), mcplib.Description("Repository as owner/name")),
			mcplib.WithString("workflow_name", mcplib.Required(), mcplib.Description("File name, e.g. eslint-test.yml")),
			mcplib.WithString("yaml", mcplib.Required(), mcplib.Description("Workflow content, starting with name:")),
			mcplib.WithString("branch", mcplib.Description("Target branch; the default branch when empty")),
			mcplib.WithString("token", mcplib.Description("GitHub token; the configured token is used when empty")),
		),
		handleCommitWorkflow(svc),
	)

	s.AddTool(
		mcplib.NewTool("repograde_history",
			mcplib.WithDescription("List stored analysis and dynamic test records, newest first"),
			mcplib.WithString("repository", mcplib.Description("Repository as owner/name; all repositories when empty")),
			mcplib.WithNumber("limit", mcplib.Description("Maximum number of records (default 20)")),
		),
		handleHistory(svc),
	)
}

func handleAnalyze(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		repo, err := requireRepo(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		args := request.GetArguments()
		list, _ := args["tools"].(string)
		tools, err := parseTools(list)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		token, _ := args["token"].(string)

		results := svc.Analyze.RunAdapters(ctx, tools, repo.Owner, repo.Name, token)
		return jsonResult(results)
	}
}

func handleDynamicTest(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if svc.Dynamic == nil {
			return errorResult(dynamicUnavailable(svc)), nil
		}
		repo, err := requireRepo(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		raw, err := request.RequireString("test_type")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		testType, err := domain.ParseTestType(raw)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		token, _ := request.GetArguments()["token"].(string)

		res := svc.Dynamic.RunDynamicTest(ctx, testType, repo.Owner, repo.Name, token)
		if !res.Success {
			return jsonErrorResult(res)
		}
		return jsonResult(res)
	}
}

func handleCommitWorkflow(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if svc.Dynamic == nil {
			return errorResult(dynamicUnavailable(svc)), nil
		}
		repo, err := requireRepo(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		name, err := request.RequireString("workflow_name")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		yamlText, err := request.RequireString("yaml")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		args := request.GetArguments()
		branch, _ := args["branch"].(string)
		token, _ := args["token"].(string)

		res := svc.Dynamic.CommitGeneratedWorkflow(ctx, repo.Owner, repo.Name, name, yamlText, branch, token)
		if !res.Success {
			return jsonErrorResult(res)
		}
		return jsonResult(res)
	}
}

func handleHistory(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		repository, _ := args["repository"].(string)
		if repository != "" {
			if _, err := domain.ParseRepoRef(repository); err != nil {
				return errorResult(err.Error()), nil
			}
		}
		limit := defaultHistoryLimit
		if n, ok := args["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}

		records, err := svc.Analyze.History(ctx, repository, limit)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if records == nil {
			records = []domain.Record{}
		}
		return jsonResult(records)
	}
}

func requireRepo(request mcplib.CallToolRequest) (domain.RepoRef, error) {
	raw, err := request.RequireString("repository")
	if err != nil {
		return domain.RepoRef{}, err
	}
	return domain.ParseRepoRef(raw)
}

// parseTools splits a comma-separated list. An empty list means every tool.
func parseTools(list string) ([]domain.Tool, error) {
	if strings.TrimSpace(list) == "" {
		return domain.AllTools, nil
	}
	var tools []domain.Tool
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := domain.ParseTool(name)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	if len(tools) == 0 {
		return nil, errors.New("no tools given")
	}
	return tools, nil
}

func dynamicUnavailable(svc Services) string {
	if svc.DynamicErr != nil {
		return "dynamic testing is not configured: " + svc.DynamicErr.Error()
	}
	return "dynamic testing is not configured"
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// jsonErrorResult is jsonResult flagged as a tool error, so clients still get
// the failure envelope.
func jsonErrorResult(v any) (*mcplib.CallToolResult, error) {
	res, err := jsonResult(v)
	if err != nil {
		return nil, err
	}
	res.IsError = true
	return res, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
