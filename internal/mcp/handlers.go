package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/ops"
	"github.com/hpungsan/pastedock/internal/paste"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	deps *ops.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d *ops.Deps) *Handlers {
	return &Handlers{deps: d}
}

// Request types for each tool

// ListRequest represents the arguments for clip_list.
type ListRequest struct {
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// FetchRequest represents the arguments for clip_fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeContent *bool  `json:"include_content,omitempty"`
}

// CaptureRequest represents the arguments for clip_capture.
type CaptureRequest struct {
	Kind           string   `json:"kind"`
	Text           *string  `json:"text,omitempty"`
	Files          []string `json:"files,omitempty"`
	SourceBundleID string   `json:"source_bundle_id,omitempty"`
}

// PinRequest represents the arguments for clip_pin.
type PinRequest struct {
	ID     string `json:"id"`
	Pinned *bool  `json:"pinned,omitempty"`
}

// IDRequest represents the arguments for clip_delete and clip_restore.
type IDRequest struct {
	ID string `json:"id"`
}

// ClearRequest represents the arguments for clip_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// PasteRequest represents the arguments for clip_paste.
type PasteRequest struct {
	ID             string `json:"id"`
	TargetBundleID string `json:"target_bundle_id,omitempty"`
}

// Handler implementations

// HandleList handles the clip_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.deps, ops.ListInput{Query: input.Query, Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the clip_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.deps, ops.FetchInput{ID: input.ID, IncludeContent: input.IncludeContent})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCapture handles the clip_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.EqualFold(strings.TrimSpace(input.Kind), "image") {
		return errorResult(errors.NewInvalidRequest("image capture is not supported over MCP")), nil
	}

	result, err := ops.Capture(ctx, h.deps, ops.CaptureInput{
		Kind:           input.Kind,
		Text:           input.Text,
		Files:          input.Files,
		SourceBundleID: input.SourceBundleID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePin handles the clip_pin tool call.
func (h *Handlers) HandlePin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PinRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	pinned := true
	if input.Pinned != nil {
		pinned = *input.Pinned
	}

	result, err := ops.Pin(ctx, h.deps, ops.PinInput{ID: input.ID, Pinned: pinned})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the clip_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.deps, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleClear handles the clip_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Clear(ctx, h.deps, ops.ClearInput{Confirm: input.Confirm})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRestore handles the clip_restore tool call.
func (h *Handlers) HandleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Restore(ctx, h.deps, ops.RestoreInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePaste handles the clip_paste tool call.
func (h *Handlers) HandlePaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PasteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	in := ops.RestoreInput{ID: input.ID}
	if bid := strings.TrimSpace(input.TargetBundleID); bid != "" {
		in.Target = &paste.TargetApp{BundleID: bid}
	}
	result, err := ops.Paste(ctx, h.deps, in)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTrim handles the clip_trim tool call.
func (h *Handlers) HandleTrim(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Trim(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStatus handles the clip_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Status(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// INTERNAL and STORE_FAILED details are withheld since they carry paths and SQL.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if cErr, ok := errors.As(err); ok {
		msg := cErr.Message
		if err != error(cErr) {
			// keep wrapper context such as "items[2]: ..."
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": msg,
			"status":  cErr.Status,
		}
		if cErr.Code != errors.ErrInternal && cErr.Code != errors.ErrStoreFailed && cErr.Details != nil {
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

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
