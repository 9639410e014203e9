package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"codescout/internal/assistant"
	"codescout/internal/embedder"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing repository analysis tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s := mcpserver.NewMCPServer("codescout", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(analyzeRepositoryTool(), makeAnalyzeHandler(a))
	s.AddTool(askCodebaseTool(), makeAskHandler(a))
	s.AddTool(searchCodeTool(), makeSearchHandler(a))
	s.AddTool(cacheStatsTool(), makeCacheStatsHandler(a))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func analyzeRepositoryTool() mcp.Tool {
	return mcp.NewTool("analyze_repository",
		mcp.WithDescription("Clone a public GitHub repository, extract its functions and methods, and build a searchable index. Must run before the other tools."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(true),
		}),
		mcp.WithString("repo_url",
			mcp.Required(),
			mcp.Description("Repository URL of the form https://github.com/user/repo"),
		),
	)
}

func askCodebaseTool() mcp.Tool {
	return mcp.NewTool("ask_codebase",
		mcp.WithDescription("Answer a natural-language question about the analyzed repository, grounded in retrieved code, with source attributions."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question about the repository's code"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of units to retrieve (default 20)"),
		),
	)
}

func searchCodeTool() mcp.Tool {
	return mcp.NewTool("search_code",
		mcp.WithDescription("Semantically search the analyzed repository and return matching functions and methods with file paths and line numbers. No answer generation."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of units to return (default 10)"),
		),
	)
}

func cacheStatsTool() mcp.Tool {
	return mcp.NewTool("cache_stats",
		mcp.WithDescription("Report how many repository analyses are cached and the current index size."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeAnalyzeHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoURL := req.GetString("repo_url", "")
		if repoURL == "" {
			return mcp.NewToolResultError("repo_url is required"), nil
		}
		n, err := a.asst.Analyze(ctx, repoURL)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Analyzed %s: %d code units indexed.", repoURL, n)), nil
	}
}

func makeAskHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		k := req.GetInt("k", assistant.DefaultTopK)
		if k <= 0 {
			k = assistant.DefaultTopK
		}

		res, err := a.asst.Query(ctx, question, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(res.Answer)
		if len(res.Sources) > 0 {
			sb.WriteString("\n\n**Sources:**\n")
			for _, src := range res.Sources {
				fmt.Fprintf(&sb, "- `%s` %s (lines %s, similarity %.3f)\n",
					src.File, src.Name, src.Lines, src.Similarity)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeSearchHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 10)
		if k <= 0 {
			k = 10
		}

		vec, err := embedder.EmbedSingle(ctx, a.emb, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("embed query failed: %v", err)), nil
		}
		results := a.index.Search(vec, k)
		if len(results) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No results found for query: %q", query)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Search results for %q (%d units)\n\n", query, len(results))
		for i, r := range results {
			fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, r.Unit.FilePath)
			fmt.Fprintf(&sb, "**Name:** %s  \n**Lines:** %d-%d  \n**Similarity:** %.3f\n\n",
				r.Unit.QualifiedName(), r.Unit.StartLine, r.Unit.EndLine, r.Similarity)
			fmt.Fprintf(&sb, "```\n%s\n```\n\n", r.Unit.SourceCode)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeCacheStatsHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cs, err := a.cache.Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cache stats failed: %v", err)), nil
		}
		is := a.index.Stats()
		return mcp.NewToolResultText(fmt.Sprintf(
			"Cache: %d repositories, %d bytes at %s\nIndex: %d units, %d bytes at %s",
			cs.Count, cs.TotalSize, cs.Location, is.TotalEntries, is.StorageSize, is.Location)), nil
	}
}
