// ABOUTME: MCP tool handler implementations for the decide server
// ABOUTME: Contains handler implementations with proper error handling for all 7 tools

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	decide "github.com/harper/decide-standalone"
	"github.com/harper/decide-standalone/internal/script"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	registry       *Registry
	maxScriptSteps int
}

// CreateChain handles the create_chain tool
func (h *Handlers) CreateChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, created, err := h.registry.Create()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create chain: %v", err)), nil
	}

	response := map[string]interface{}{
		"chain_id":   id,
		"created_at": created.Format(time.RFC3339),
	}
	return marshalResult(response)
}

// ApplyOperation handles the apply_operation tool
func (h *Handlers) ApplyOperation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chainID, err := request.RequireString("chain_id")
	if err != nil {
		return mcp.NewToolResultError("chain_id argument is required and must be a string"), nil
	}
	opName, err := request.RequireString("op")
	if err != nil {
		return mcp.NewToolResultError("op argument is required and must be a string"), nil
	}

	op := script.Operation{
		Op:         opName,
		Comparator: request.GetString("comparator", ""),
	}
	// Presence matters: an explicit null value or payload is legitimate, so
	// the raw argument map is consulted rather than typed getters.
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		if v, exists := args["value"]; exists {
			op.Value, op.HasValue = v, true
		}
		if p, exists := args["payload"]; exists {
			op.Payload, op.HasPayload = p, true
		}
	}

	var response map[string]interface{}
	err = h.registry.With(chainID, func(c *decide.Chain[any], rec *decide.Recorder) error {
		before := rec.Len()
		if err := script.Apply(c, op); err != nil {
			return err
		}
		response = map[string]interface{}{
			"chain_id":    chainID,
			"op":          opName,
			"branches":    len(c.Conditions()),
			"diagnostics": rec.Entries()[before:],
		}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to apply %s: %v", opName, err)), nil
	}
	return marshalResult(response)
}

// ResolveChain handles the resolve_chain tool
func (h *Handlers) ResolveChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chainID, err := request.RequireString("chain_id")
	if err != nil {
		return mcp.NewToolResultError("chain_id argument is required and must be a string"), nil
	}

	var def any
	hasDefault := false
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		def, hasDefault = args["default"]
	}

	var response map[string]interface{}
	err = h.registry.With(chainID, func(c *decide.Chain[any], rec *decide.Recorder) error {
		before := rec.Len()
		var payload any
		var ok bool
		if hasDefault {
			payload, ok = c.Otherwise(def)
		} else {
			payload, ok = c.Otherwise()
		}

		res := c.LastResolution()
		response = map[string]interface{}{
			"chain_id":      chainID,
			"payload":       payload,
			"has_payload":   ok,
			"source":        string(res.Source),
			"matched_index": res.Index,
			"branches":      res.Branches,
			"incomplete":    res.Incomplete,
			"diagnostics":   rec.Entries()[before:],
		}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve chain: %v", err)), nil
	}
	return marshalResult(response)
}

// InspectChain handles the inspect_chain tool
func (h *Handlers) InspectChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chainID, err := request.RequireString("chain_id")
	if err != nil {
		return mcp.NewToolResultError("chain_id argument is required and must be a string"), nil
	}

	var response map[string]interface{}
	err = h.registry.With(chainID, func(c *decide.Chain[any], rec *decide.Recorder) error {
		conditions := c.Conditions()
		branches := make([]map[string]interface{}, 0, len(conditions))
		for i, b := range conditions {
			branch := map[string]interface{}{
				"index":       i,
				"kind":        string(b.Kind),
				"satisfied":   b.Satisfied,
				"has_payload": b.HasPayload,
				"sequence":    b.Sequence,
			}
			if b.Kind == decide.KindMatch {
				branch["case_value"] = b.CaseValue
			}
			if b.HasPayload {
				branch["payload"] = b.Payload
			}
			branches = append(branches, branch)
		}

		res := c.LastResolution()
		response = map[string]interface{}{
			"chain_id":      chainID,
			"branches":      branches,
			"matched_index": c.MatchedIndex(),
			"has_matched":   c.HasMatched(),
			"last_resolution": map[string]interface{}{
				"source":      string(res.Source),
				"index":       res.Index,
				"payload":     res.Payload,
				"has_payload": res.HasPayload,
				"branches":    res.Branches,
				"incomplete":  res.Incomplete,
			},
			"diagnostics": rec.Entries(),
		}
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to inspect chain: %v", err)), nil
	}
	return marshalResult(response)
}

// ResetChain handles the reset_chain tool
func (h *Handlers) ResetChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chainID, err := request.RequireString("chain_id")
	if err != nil {
		return mcp.NewToolResultError("chain_id argument is required and must be a string"), nil
	}

	err = h.registry.With(chainID, func(c *decide.Chain[any], rec *decide.Recorder) error {
		c.Reset()
		rec.Reset()
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reset chain: %v", err)), nil
	}

	response := map[string]interface{}{
		"chain_id": chainID,
		"reset":    true,
	}
	return marshalResult(response)
}

// DeleteChain handles the delete_chain tool
func (h *Handlers) DeleteChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chainID, err := request.RequireString("chain_id")
	if err != nil {
		return mcp.NewToolResultError("chain_id argument is required and must be a string"), nil
	}

	if !h.registry.Delete(chainID) {
		return mcp.NewToolResultError(fmt.Sprintf("chain not found: %s", chainID)), nil
	}

	response := map[string]interface{}{
		"chain_id": chainID,
		"deleted":  true,
	}
	return marshalResult(response)
}

// EvaluateScript handles the evaluate_script tool
func (h *Handlers) EvaluateScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("arguments must be an object"), nil
	}
	stepsRaw, exists := args["steps"]
	if !exists {
		return mcp.NewToolResultError("steps argument is required"), nil
	}

	wire := map[string]interface{}{"steps": stepsRaw}
	if name := request.GetString("name", ""); name != "" {
		wire["name"] = name
	}
	if def, exists := args["default"]; exists {
		wire["default"] = def
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode script: %v", err)), nil
	}
	s, err := script.Parse(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid script: %v", err)), nil
	}
	if len(s.Steps) > h.maxScriptSteps {
		return mcp.NewToolResultError(fmt.Sprintf("script has %d steps, limit is %d",
			len(s.Steps), h.maxScriptSteps)), nil
	}

	rec := decide.NewRecorder()
	c := decide.New[any]().WithDiagnostics(rec)
	res, err := s.Run(c)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("script failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"chain_id":      res.ChainID,
		"payload":       res.Payload,
		"has_payload":   res.HasPayload,
		"source":        string(res.Source),
		"matched_index": res.Index,
		"branches":      res.Branches,
		"incomplete":    res.Incomplete,
		"diagnostics":   rec.Entries(),
	}
	if s.Name != "" {
		response["name"] = s.Name
	}
	return marshalResult(response)
}

func marshalResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
