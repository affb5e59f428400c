package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/graphscope/internal/subgraph"
)

func NewMCPServer(engine *subgraph.Engine, key subgraph.EntityKey, version string) *mcp.Server {
	service := NewService(engine, key)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "graphscope",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "select_subgraph",
		Description: "Return the subgraph induced by the given node and relationship ids. Unknown ids are ignored.",
	}, service.SelectSubgraph)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "delete_node",
		Description: "Remove one node and its incident relationships from a view. The graph store is never modified.",
	}, service.DeleteNode)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "expand_node",
		Description: "Add up to limit_number new relationships around a node of the view, with their neighbor nodes.",
	}, service.ExpandNode)

	return s
}

// RunStdio serves s on stdin/stdout until ctx is cancelled or the client disconnects
func RunStdio(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
