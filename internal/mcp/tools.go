package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("clip_list",
	mcp.WithDescription("List clipboard history newest first. With query, only items whose preview contains it (case-insensitive)."),
	mcp.WithString("query", mcp.Description("Substring to match against previews")),
	mcp.WithNumber("limit", mcp.Description("Maximum items (default: quick_picker_result_limit, max 2000)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var fetchToolDef = mcp.NewTool("clip_fetch",
	mcp.WithDescription("Fetch one history item. Text items include their full text; file items list their paths and which are missing."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithBoolean("include_content", mcp.Description("Include text or file paths (default true)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var captureToolDef = mcp.NewTool("clip_capture",
	mcp.WithDescription("Add content to history as if it had been copied. Exclusion, privacy, duplicate and retention rules apply."),
	mcp.WithString("kind", mcp.Required(), mcp.Enum("text", "file"), mcp.Description("Content kind")),
	mcp.WithString("text", mcp.Description("Text content (kind=text)")),
	mcp.WithArray("files", mcp.WithStringItems(), mcp.Description("Absolute file paths (kind=file)")),
	mcp.WithString("source_bundle_id", mcp.Description("Bundle id of the originating app")),
)

var pinToolDef = mcp.NewTool("clip_pin",
	mcp.WithDescription("Pin or unpin an item. Pinned items are never evicted by retention."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithBoolean("pinned", mcp.Description("true to pin, false to unpin (default true)")),
	mcp.WithIdempotentHintAnnotation(true),
)

var deleteToolDef = mcp.NewTool("clip_delete",
	mcp.WithDescription("Delete an item and its stored payload."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithDestructiveHintAnnotation(true),
)

var clearToolDef = mcp.NewTool("clip_clear",
	mcp.WithDescription("Delete every item, pinned ones included."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
	mcp.WithDestructiveHintAnnotation(true),
)

var restoreToolDef = mcp.NewTool("clip_restore",
	mcp.WithDescription("Put an item back on the system pasteboard without pasting."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
)

var pasteToolDef = mcp.NewTool("clip_paste",
	mcp.WithDescription("Restore an item and paste it into the target app (Command-V). Falls back to restore only when auto-paste is disabled or not permitted."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id")),
	mcp.WithString("target_bundle_id", mcp.Description("App to activate before pasting (default: frontmost app)")),
)

var trimToolDef = mcp.NewTool("clip_trim",
	mcp.WithDescription("Enforce max_items and max_bytes now, evicting the oldest unpinned items."),
)

var statusToolDef = mcp.NewTool("clip_status",
	mcp.WithDescription("History size, effective settings, paste permission reminder and pending notifications."),
	mcp.WithReadOnlyHintAnnotation(true),
)
