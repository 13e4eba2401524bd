// ABOUTME: MCP tool definitions and registration for the decide server
// ABOUTME: Defines JSON schemas for all 7 decision chain tools

package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, registry *Registry, maxScriptSteps int) *Handlers {
	handlers := &Handlers{
		registry:       registry,
		maxScriptSteps: maxScriptSteps,
	}

	// 1. create_chain - Create a new decision chain
	server.AddTool(mcp.Tool{
		Name:        "create_chain",
		Description: "Create a new decision chain. Returns the chain ID used by every other tool. Chains accumulate conditional branches and resolve with first-match-wins semantics.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CreateChain)

	// 2. apply_operation - Apply one builder operation to a chain
	server.AddTool(mcp.Tool{
		Name:        "apply_operation",
		Description: "Apply one builder operation to a decision chain: when, then, match, case, render, fallback, reset, or debug. Misuse such as a payload with no branch is reported as a diagnostic, never an error.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chain_id": map[string]interface{}{
					"type":        "string",
					"description": "Chain to operate on",
				},
				"op": map[string]interface{}{
					"type":        "string",
					"description": "Operation name: when, then, match, case, render, fallback, reset, or debug",
				},
				"value": map[string]interface{}{
					"description": "Condition for when, subject for match, candidate for case. Any JSON value; null is legitimate.",
				},
				"payload": map[string]interface{}{
					"description": "Payload for then, render, or fallback. Any JSON value; null is legitimate.",
				},
				"comparator": map[string]interface{}{
					"type":        "string",
					"description": "Named comparator for match: default (structural equality, NaN equals NaN) or fold (case-insensitive strings)",
				},
			},
			Required: []string{"chain_id", "op"},
		},
	}, handlers.ApplyOperation)

	// 3. resolve_chain - Resolve a chain with first-match-wins semantics
	server.AddTool(mcp.Tool{
		Name:        "resolve_chain",
		Description: "Resolve a decision chain: returns the payload of the first satisfied completed branch, else the fallback, else the supplied default, else no payload. The chain survives resolution and can keep accumulating branches.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chain_id": map[string]interface{}{
					"type":        "string",
					"description": "Chain to resolve",
				},
				"default": map[string]interface{}{
					"description": "Optional default payload if no branch or fallback applies. Any JSON value.",
				},
			},
			Required: []string{"chain_id"},
		},
	}, handlers.ResolveChain)

	// 4. inspect_chain - Dump a chain's branches and last resolution
	server.AddTool(mcp.Tool{
		Name:        "inspect_chain",
		Description: "Inspect a decision chain: every branch with its kind, outcome, and payload, the matched index, the last resolution, and all recorded diagnostics.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chain_id": map[string]interface{}{
					"type":        "string",
					"description": "Chain to inspect",
				},
			},
			Required: []string{"chain_id"},
		},
	}, handlers.InspectChain)

	// 5. reset_chain - Clear a chain back to its empty state
	server.AddTool(mcp.Tool{
		Name:        "reset_chain",
		Description: "Reset a decision chain: discards every branch, the fallback, and recorded diagnostics while keeping the chain ID alive.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chain_id": map[string]interface{}{
					"type":        "string",
					"description": "Chain to reset",
				},
			},
			Required: []string{"chain_id"},
		},
	}, handlers.ResetChain)

	// 6. delete_chain - Remove a chain from the session
	server.AddTool(mcp.Tool{
		Name:        "delete_chain",
		Description: "Delete a decision chain and free its registry slot.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chain_id": map[string]interface{}{
					"type":        "string",
					"description": "Chain to delete",
				},
			},
			Required: []string{"chain_id"},
		},
	}, handlers.DeleteChain)

	// 7. evaluate_script - Run a whole decision script in one call
	server.AddTool(mcp.Tool{
		Name:        "evaluate_script",
		Description: "Evaluate a complete decision script against a fresh chain in one call: an ordered list of builder steps, an optional default payload, and the resolution in the response.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"steps": map[string]interface{}{
					"type":        "array",
					"description": "Ordered builder steps. Each step is an object with op plus value, payload, or comparator as the op requires.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"op": map[string]interface{}{
								"type":        "string",
								"description": "when, then, match, case, render, fallback, reset, or debug",
							},
							"value":      map[string]interface{}{"description": "Condition, subject, or candidate"},
							"payload":    map[string]interface{}{"description": "Payload for then, render, or fallback"},
							"comparator": map[string]interface{}{"type": "string", "description": "Named comparator for match"},
						},
						"required": []string{"op"},
					},
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Optional script name echoed in the response",
				},
				"default": map[string]interface{}{
					"description": "Optional default payload for the final resolution. Any JSON value.",
				},
			},
			Required: []string{"steps"},
		},
	}, handlers.EvaluateScript)

	return handlers
}
