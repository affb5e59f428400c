package mcp

import "github.com/rohankatakam/graphscope/internal/subgraph"

// --- Tool Arguments ---

type SelectSubgraphArgs struct {
	Nodes     []subgraph.ID `json:"nodes,omitempty" jsonschema:"Node ids to select"`
	Relations []subgraph.ID `json:"relations,omitempty" jsonschema:"Relationship ids to select; their endpoints are included automatically"`
}

type DeleteNodeArgs struct {
	Nodes      []subgraph.ID `json:"nodes,omitempty" jsonschema:"Node ids of the current view"`
	Relations  []subgraph.ID `json:"relations,omitempty" jsonschema:"Relationship ids of the current view"`
	DeleteNode subgraph.ID   `json:"delete_node" jsonschema:"Node to remove from the view together with its relationships"`
}

type ExpandNodeArgs struct {
	Nodes       []subgraph.ID `json:"nodes,omitempty" jsonschema:"Node ids of the current view"`
	Relations   []subgraph.ID `json:"relations,omitempty" jsonschema:"Relationship ids of the current view"`
	ExpandNode  subgraph.ID   `json:"expand_node" jsonschema:"Node whose neighborhood is merged into the view"`
	LimitNumber *int          `json:"limit_number,omitempty" jsonschema:"Max number of new relationships to add (default 5)"`
}
