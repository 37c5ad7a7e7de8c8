package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/callscope/internal/graph"
)

// loadGraphTool defines the load_graph MCP tool.
var loadGraphTool = mcp.NewTool("load_graph",
	mcp.WithDescription("Load a call graph JSON document ({nodes, links}) from disk and make it the current graph."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the graph JSON file"),
	),
)

// analyzePathTool defines the analyze_path MCP tool.
var analyzePathTool = mcp.NewTool("analyze_path",
	mcp.WithDescription("Analyze a Java or Go source tree and make its call graph the current graph."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Directory of the project to analyze"),
	),
)

// topFunctionsTool defines the top_functions MCP tool.
var topFunctionsTool = mcp.NewTool("top_functions",
	mcp.WithDescription("List the most connected functions of the current graph with incoming and outgoing call counts."),
	mcp.WithNumber("k",
		mcp.Description("Number of functions to return (default 20)"),
	),
	mcp.WithString("filter",
		mcp.Description("Only rank functions whose id or label contains this text"),
	),
)

// nodeDetailsTool defines the node_details MCP tool.
var nodeDetailsTool = mcp.NewTool("node_details",
	mcp.WithDescription("Select a function and show its call counts, callers and call tree."),
	mcp.WithString("node",
		mcp.Required(),
		mcp.Description("Function id"),
	),
	mcp.WithNumber("depth",
		mcp.Description("Call tree depth (default 3, at most 6)"),
		mcp.Max(graph.MaxCallTreeDepth),
	),
)

// namespaceTreeTool defines the namespace_tree MCP tool.
var namespaceTreeTool = mcp.NewTool("namespace_tree",
	mcp.WithDescription("Show the package hierarchy of the current graph with call counts per function."),
	mcp.WithString("delimiter",
		mcp.Description("Namespace separator in function ids (default: the analyzer's, or /)"),
	),
)

// callTreeDiagramTool defines the call_tree_diagram MCP tool.
var callTreeDiagramTool = mcp.NewTool("call_tree_diagram",
	mcp.WithDescription("Get a Mermaid diagram of a function's call tree, or of the most connected functions when no node is given."),
	mcp.WithString("node",
		mcp.Description("Function id; defaults to the selected function"),
	),
	mcp.WithNumber("depth",
		mcp.Description("Call tree depth (default 3, at most 6)"),
		mcp.Max(graph.MaxCallTreeDepth),
	),
)
