package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/pastedock/internal/capture"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/db"
	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/history"
	"github.com/hpungsan/pastedock/internal/ops"
	"github.com/hpungsan/pastedock/internal/paste"
	"github.com/hpungsan/pastedock/internal/payload"
	"github.com/hpungsan/pastedock/internal/privacy"
	"github.com/hpungsan/pastedock/internal/toast"
)

type nopBoard struct{ text string }

func (b *nopBoard) WriteText(_ context.Context, text string) error { b.text = text; return nil }
func (b *nopBoard) WriteImage(context.Context, []byte, bool) error { return nil }
func (b *nopBoard) WriteFiles(context.Context, []string) error     { return nil }

type denyPaster struct{}

func (denyPaster) CanAutoPaste(context.Context) bool                          { return false }
func (denyPaster) PerformAutoPaste(context.Context, *paste.TargetApp) error { return nil }

// testSetup creates a temporary database, payload area and config for testing.
func testSetup(t *testing.T) (*ops.Deps, *config.Config, *nopBoard) {
	t.Helper()

	base := t.TempDir()
	database, err := db.Init(base)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	area, err := payload.Open(base)
	if err != nil {
		t.Fatalf("failed to open payload area: %v", err)
	}

	cfg := config.DefaultConfig()
	store := history.NewSQLStore(database)
	toasts := toast.NewQueue(0)
	board := &nopBoard{}

	d := &ops.Deps{
		Store:    store,
		Pipeline: capture.New(store, privacy.NewDefaultPolicy(nil), capture.WithToasts(toasts)),
		Engine:   paste.NewEngine(store, paste.NewPayloadRestorer(board), denyPaster{}, toasts),
		Payloads: area,
		Toasts:   toasts,
		Settings: cfg.Settings,
	}
	return d, cfg, board
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func captureText(t *testing.T, h *Handlers, text string) string {
	t.Helper()
	result, err := h.HandleCapture(context.Background(), makeRequest(map[string]any{
		"kind": "text",
		"text": text,
	}))
	if err != nil {
		t.Fatalf("HandleCapture error: %v", err)
	}
	out := parseOutput(t, result)
	if out["outcome"] != "saved" {
		t.Fatalf("outcome = %v, want saved", out["outcome"])
	}
	return out["item"].(map[string]any)["id"].(string)
}

func TestHandleCapture(t *testing.T) {
	d, _, _ := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()

	tests := []struct {
		name        string
		args        map[string]any
		wantOutcome string
		wantReason  string
		errorCode   string
	}{
		{
			name:        "text saved",
			args:        map[string]any{"kind": "text", "text": "hello"},
			wantOutcome: "saved",
		},
		{
			name:        "duplicate skipped",
			args:        map[string]any{"kind": "text", "text": "hello"},
			wantOutcome: "skipped",
			wantReason:  "duplicate",
		},
		{
			name:        "sensitive skipped",
			args:        map[string]any{"kind": "text", "text": "password: hunter2"},
			wantOutcome: "skipped",
			wantReason:  "sensitive_content",
		},
		{
			name:      "unknown kind",
			args:      map[string]any{"kind": "rtf"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "image rejected",
			args:      map[string]any{"kind": "image"},
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "unknown argument",
			args:      map[string]any{"kind": "text", "txt": "typo"},
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCapture(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.errorCode != "" {
				if !result.IsError {
					t.Fatal("expected error result")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			if out["outcome"] != tt.wantOutcome {
				t.Errorf("outcome = %v, want %s", out["outcome"], tt.wantOutcome)
			}
			if tt.wantReason != "" && out["reason"] != tt.wantReason {
				t.Errorf("reason = %v, want %s", out["reason"], tt.wantReason)
			}
		})
	}
}

func TestHandleFetch(t *testing.T) {
	d, _, _ := testSetup(t)
	h := NewHandlers(d)
	id := captureText(t, h, "fetch me")

	tests := []struct {
		name      string
		args      map[string]any
		wantText  bool
		errorCode string
	}{
		{name: "with content", args: map[string]any{"id": id}, wantText: true},
		{name: "without content", args: map[string]any{"id": id, "include_content": false}},
		{name: "not found", args: map[string]any{"id": "01NOPE"}, errorCode: "NOT_FOUND"},
		{name: "missing id", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleFetch(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.errorCode != "" {
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			_, hasText := out["text"]
			if hasText != tt.wantText {
				t.Errorf("has text = %v, want %v", hasText, tt.wantText)
			}
			if out["id"] != id {
				t.Errorf("id = %v, want %s", out["id"], id)
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	d, _, _ := testSetup(t)
	h := NewHandlers(d)
	captureText(t, h, "apple pie")
	captureText(t, h, "banana split")
	captureText(t, h, "Apple crumble")

	result, err := h.HandleList(context.Background(), makeRequest(map[string]any{"query": "apple"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := parseOutput(t, result)
	items := out["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].(map[string]any)["preview_text"] != "Apple crumble" {
		t.Errorf("first item = %v, want newest match", items[0])
	}

	result, err = h.HandleList(context.Background(), makeRequest(map[string]any{"limit": 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items := parseOutput(t, result)["items"].([]any); len(items) != 1 {
		t.Errorf("got %d items, want 1", len(items))
	}
}

func TestHandlePinDeleteClear(t *testing.T) {
	d, _, _ := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()
	id := captureText(t, h, "pin me")
	captureText(t, h, "other")

	result, err := h.HandlePin(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parseOutput(t, result)["pinned"] != true {
		t.Error("pin without pinned argument should default to true")
	}

	result, _ = h.HandlePin(ctx, makeRequest(map[string]any{"id": id, "pinned": false}))
	if parseOutput(t, result)["pinned"] != false {
		t.Error("pinned=false should unpin")
	}

	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if parseOutput(t, result)["deleted"] != true {
		t.Error("delete should report deleted=true")
	}
	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleClear(ctx, makeRequest(map[string]any{"confirm": false}))
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, _ = h.HandleClear(ctx, makeRequest(map[string]any{"confirm": true}))
	out := parseOutput(t, result)
	if removed, _ := out["removed"].(float64); removed != 1 {
		t.Errorf("removed = %v, want 1", out["removed"])
	}
}

func TestHandleRestoreAndPaste(t *testing.T) {
	d, _, board := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()
	id := captureText(t, h, "restore me")

	result, err := h.HandleRestore(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := parseOutput(t, result)
	if out["summary"] != "restored_only(auto_paste_disabled)" {
		t.Errorf("summary = %v", out["summary"])
	}
	if board.text != "restore me" {
		t.Errorf("pasteboard = %q", board.text)
	}

	// Accessibility is denied: paste falls back to restore only
	result, _ = h.HandlePaste(ctx, makeRequest(map[string]any{"id": id, "target_bundle_id": "com.apple.Notes"}))
	out = parseOutput(t, result)
	if out["summary"] != "restored_only(permission_needed)" {
		t.Errorf("summary = %v", out["summary"])
	}
	reminder := out["reminder"].(map[string]any)
	if reminder["consecutive_count"].(float64) != 1 {
		t.Errorf("reminder = %v", reminder)
	}
}

func TestHandleTrimAndStatus(t *testing.T) {
	d, _, _ := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()
	captureText(t, h, "one")

	result, err := h.HandleTrim(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := parseOutput(t, result)
	if out["deleted_count"].(float64) != 0 {
		t.Errorf("deleted_count = %v, want 0", out["deleted_count"])
	}

	result, _ = h.HandleStatus(ctx, makeRequest(map[string]any{}))
	out = parseOutput(t, result)
	stats := out["stats"].(map[string]any)
	if stats["count"].(float64) != 1 {
		t.Errorf("stats = %v", stats)
	}
	settings := out["settings"].(map[string]any)
	if settings["max_items"].(float64) != float64(config.DefaultMaxItems) {
		t.Errorf("settings.max_items = %v", settings["max_items"])
	}
}

func TestServerRegistration(t *testing.T) {
	d, cfg, _ := testSetup(t)

	s := NewServer(d, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"clip_list",
		"clip_fetch",
		"clip_capture",
		"clip_pin",
		"clip_delete",
		"clip_clear",
		"clip_restore",
		"clip_paste",
		"clip_trim",
		"clip_status",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	d, cfg, _ := testSetup(t)

	cfg.DisabledTools = []string{"clip_clear", "clip_delete", "clip_clear"}
	s := NewServer(d, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 8 {
		t.Errorf("registered tool count = %d, want 8", len(tools))
	}
	for _, name := range []string{"clip_clear", "clip_delete"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	d, cfg, _ := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	if n := len(NewServer(d, cfg, "test").ListTools()); n != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", n)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{name: "all valid", input: []string{"clip_clear", "clip_paste"}, wantLen: 0},
		{name: "one unknown", input: []string{"clip_clear", "clip_export"}, wantLen: 1},
		{name: "empty list", input: []string{}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if unknown := ValidateDisabledTools(tt.input); len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 10 {
		t.Errorf("AllToolNames() returned %d names, want 10", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
	if !strings.HasPrefix(names[0], "clip_") {
		t.Errorf("unexpected tool name %q", names[0])
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewStoreFailed("save", fmt.Errorf("open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != string(errors.ErrStoreFailed) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrStoreFailed)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected STORE_FAILED errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("files[1]: %w", errors.NewFileMissing("/tmp/gone"))

	r := errorResult(wrapped)
	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != string(errors.ErrFileMissing) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrFileMissing)
	}
	if msg := errObj["message"].(string); !strings.Contains(msg, "files[1]") {
		t.Errorf("message should keep wrapper context, got: %s", msg)
	}
}

func TestErrorResult_PlainErrorIsInternal(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))
	assertErrorCode(t, r, "INTERNAL")
	if strings.Contains(extractErrorMessage(r), "boom") {
		t.Error("plain errors should not leak their message")
	}
}

func TestDecode_NilArguments(t *testing.T) {
	got, err := decode[ListRequest](makeRequest(nil))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != (ListRequest{}) {
		t.Errorf("got %+v, want zero value", got)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
