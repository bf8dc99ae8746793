package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wanyview/capsuled/internal/errors"
	"github.com/wanyview/capsuled/internal/service"
)

// DefaultCollisionThreshold applies when a collisions call omits threshold.
const DefaultCollisionThreshold = 0.5

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Request types for each tool

// CreateRequest represents the arguments for capsule_create.
type CreateRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Source   *string        `json:"source,omitempty"`
	Domain   *string        `json:"domain,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Author   *string        `json:"author,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GetRequest represents the arguments for capsule_get.
type GetRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for capsule_list.
type ListRequest struct {
	Domain   *string  `json:"domain,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// UpdateRequest represents the arguments for capsule_update.
type UpdateRequest struct {
	ID      string    `json:"id"`
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Source  *string   `json:"source,omitempty"`
	Domain  *string   `json:"domain,omitempty"`
}

// DeleteRequest represents the arguments for capsule_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// CollisionsRequest represents the arguments for capsule_collisions.
type CollisionsRequest struct {
	ID        string   `json:"id"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// Handler implementations

// HandleCreate handles the capsule_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Create(ctx, service.CreateInput{
		Title:    input.Title,
		Content:  input.Content,
		Source:   input.Source,
		Domain:   input.Domain,
		Tags:     input.Tags,
		Author:   input.Author,
		Metadata: input.Metadata,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the capsule_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Get(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the capsule_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.List(ctx, service.ListInput{
		Domain:   input.Domain,
		MinScore: input.MinScore,
		Limit:    input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"capsules": result, "count": len(result)})
}

// HandleUpdate handles the capsule_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Update(ctx, service.UpdateInput{
		ID:      input.ID,
		Title:   input.Title,
		Content: input.Content,
		Tags:    input.Tags,
		Source:  input.Source,
		Domain:  input.Domain,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the capsule_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.svc.Delete(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"status": "deleted", "id": input.ID})
}

// HandleCollisions handles the capsule_collisions tool call.
func (h *Handlers) HandleCollisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CollisionsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	threshold := DefaultCollisionThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	result, err := h.svc.Detect(ctx, service.DetectInput{
		ID:        input.ID,
		Threshold: threshold,
		Limit:     input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"collisions": result, "count": len(result)})
}

// HandleStats handles the capsule_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.svc.Stats(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult converts an error into an MCP error result with a
// structured JSON payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if cErr, ok := err.(*errors.CapsuleError); ok {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if cErr.Code != errors.ErrInternal && cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult wraps data as a JSON tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
