package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
)

// Server exposes the vector sink to MCP clients over stdio: semantic search
// plus collection stats, backed by the same search service as the HTTP API.
type Server struct {
	mcpServer *server.MCPServer
	search    ports.SearchService
	log       *slog.Logger
}

func NewServer(search ports.SearchService, version string, log *slog.Logger) *Server {
	s := &Server{
		search: search,
		log:    log,
	}

	s.mcpServer = server.NewMCPServer(
		"docpipe",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcpServer.AddTool(
		mcp.NewTool("semantic_search",
			mcp.WithDescription("Search indexed construction document chunks by meaning and return the closest matches with scores."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Natural-language search query."),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 5)."),
			),
			mcp.WithString("document_name",
				mcp.Description("Restrict results to one source document, e.g. 'URA-Circular on GFA area definition.pdf'."),
			),
		),
		s.handleSemanticSearch,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("collection_stats",
			mcp.WithDescription("Report the vector collection name and how many chunks it currently holds."),
		),
		s.handleCollectionStats,
	)

	return s
}

// ServeStdio blocks, serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleSemanticSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 5)
	documentName := req.GetString("document_name", "")

	results, err := s.search.Search(ctx, query, limit, domain.ChunkFilter{DocumentName: documentName})
	if err != nil {
		s.log.Error("mcp semantic search failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	payload, err := json.MarshalIndent(map[string]any{"results": results}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleCollectionStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.search.Stats(ctx)
	if err != nil {
		s.log.Error("mcp stats failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode stats: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
