package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// Service adapts the projection engine to MCP tool handlers.
// Like the HTTP routes, each call carries the caller's current view.
type Service struct {
	engine *subgraph.Engine
	key    subgraph.EntityKey
	logger *slog.Logger
}

func NewService(engine *subgraph.Engine, key subgraph.EntityKey) *Service {
	return &Service{
		engine: engine,
		key:    key,
		logger: slog.Default().With("component", "mcp"),
	}
}

// --- Tool Handlers ---

func (s *Service) SelectSubgraph(ctx context.Context, req *mcp.CallToolRequest, args SelectSubgraphArgs) (*mcp.CallToolResult, subgraph.Payload, error) {
	sg, err := s.engine.Select(ctx, args.Nodes, args.Relations)
	if err != nil {
		s.logger.Warn("select_subgraph failed", "error", err)
		return nil, subgraph.Payload{}, err
	}
	return nil, subgraph.Serialize(sg, s.key), nil
}

func (s *Service) DeleteNode(ctx context.Context, req *mcp.CallToolRequest, args DeleteNodeArgs) (*mcp.CallToolResult, subgraph.Payload, error) {
	current, err := s.engine.Select(ctx, args.Nodes, args.Relations)
	if err != nil {
		s.logger.Warn("delete_node failed", "error", err)
		return nil, subgraph.Payload{}, err
	}
	return nil, subgraph.Serialize(subgraph.DeleteNode(current, args.DeleteNode), s.key), nil
}

func (s *Service) ExpandNode(ctx context.Context, req *mcp.CallToolRequest, args ExpandNodeArgs) (*mcp.CallToolResult, subgraph.Payload, error) {
	limit, err := s.engine.ExpandLimit(args.LimitNumber)
	if err != nil {
		return nil, subgraph.Payload{}, err
	}

	current, err := s.engine.Select(ctx, args.Nodes, args.Relations)
	if err != nil {
		s.logger.Warn("expand_node failed", "error", err)
		return nil, subgraph.Payload{}, err
	}
	expanded, err := s.engine.ExpandNode(ctx, current, args.ExpandNode, limit)
	if err != nil {
		s.logger.Warn("expand_node failed", "error", err)
		return nil, subgraph.Payload{}, err
	}
	return nil, subgraph.Serialize(expanded, s.key), nil
}
