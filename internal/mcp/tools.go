package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var createToolDef = mcp.NewTool("capsule_create",
	mcp.WithDescription("Create a knowledge capsule. Tags are derived from the content when not supplied, and a quality score is assigned on creation."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Capsule title")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Capsule body text (markdown)")),
	mcp.WithString("source", mcp.Description("Where the knowledge came from (URL, book, conversation)")),
	mcp.WithString("domain", mcp.Description("Knowledge domain, e.g. 'science' or 'policy' (default: general)")),
	mcp.WithArray("tags", mcp.Description("Explicit tags; omit to derive from content"),
		mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("author", mcp.Description("Capsule author (default: configured author)")),
	mcp.WithObject("metadata", mcp.Description("Arbitrary key/value metadata")),
)

var getToolDef = mcp.NewTool("capsule_get",
	mcp.WithDescription("Fetch a single capsule by its ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID, e.g. capsule_01J...")),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List capsules newest first, optionally filtered by domain and minimum quality score."),
	mcp.WithString("domain", mcp.Description("Only capsules in this domain")),
	mcp.WithNumber("min_score", mcp.Description("Only capsules with quality score at or above this value")),
	mcp.WithNumber("limit", mcp.Description("Max results (default 20, cap 100)")),
)

var updateToolDef = mcp.NewTool("capsule_update",
	mcp.WithDescription("Update fields of an existing capsule. At least one field is required. Tags are never re-derived; pass tags explicitly to change them."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("New body text")),
	mcp.WithArray("tags", mcp.Description("Replacement tag list"),
		mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("source", mcp.Description("New source")),
	mcp.WithString("domain", mcp.Description("New domain")),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Permanently delete a capsule by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
)

var collisionsToolDef = mcp.NewTool("capsule_collisions",
	mcp.WithDescription("Find capsules whose tag sets collide with the target capsule's, scored by overlap with a same-domain bonus."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Target capsule ID")),
	mcp.WithNumber("threshold", mcp.Description("Minimum collision score to report (default 0.5)")),
	mcp.WithNumber("limit", mcp.Description("Max collisions to return (default 20)")),
)

var statsToolDef = mcp.NewTool("capsule_stats",
	mcp.WithDescription("Aggregate store statistics: total count, average quality score, and per-domain counts."),
)
