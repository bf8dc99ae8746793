package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wanyview/capsuled/internal/config"
	"github.com/wanyview/capsuled/internal/db"
	"github.com/wanyview/capsuled/internal/quality"
	"github.com/wanyview/capsuled/internal/service"
)

// testSetup creates a service over a temporary database.
func testSetup(t *testing.T) *Handlers {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{DefaultAuthor: "Kai"}
	svc := service.New(db.New(database), quality.NewDATMScorer(), cfg)
	return NewHandlers(svc)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// createCapsule creates a capsule through the create handler and
// returns its ID.
func createCapsule(t *testing.T, h *Handlers, args map[string]any) string {
	t.Helper()

	result, err := h.HandleCreate(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("create handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("create failed: %v", extractErrorMessage(result))
	}

	payload := extractJSON(t, result)
	id, ok := payload["id"].(string)
	if !ok || id == "" {
		t.Fatalf("create result missing id: %v", payload)
	}
	return id
}

func TestHandleCreate(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "create valid capsule",
			args: map[string]any{
				"title":   "Ocean Currents",
				"content": "Warm surface water moves poleward.",
				"tags":    []string{"ocean", "climate"},
			},
			wantError: false,
		},
		{
			name: "create without title",
			args: map[string]any{
				"content": "body only",
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "create without content",
			args: map[string]any{
				"title": "no body",
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "create with blank title",
			args: map[string]any{
				"title":   "   ",
				"content": "body",
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleCreate_DerivesTags(t *testing.T) {
	h := testSetup(t)

	id := createCapsule(t, h, map[string]any{
		"title":   "Ocean Report",
		"content": "Ocean currents transport warmth across hemispheres",
	})

	result, err := h.HandleGet(context.Background(), makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("get handler returned error: %v", err)
	}
	payload := extractJSON(t, result)
	tags, ok := payload["tags"].([]any)
	if !ok || len(tags) == 0 {
		t.Fatalf("expected derived tags, got %v", payload["tags"])
	}
	if tags[0] != "ocean" {
		t.Errorf("first tag = %v, want ocean", tags[0])
	}
}

func TestHandleGet(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	id := createCapsule(t, h, map[string]any{
		"title":   "alpha",
		"content": "alpha content",
	})

	result, err := h.HandleGet(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %v", extractErrorMessage(result))
	}
	payload := extractJSON(t, result)
	if payload["title"] != "alpha" {
		t.Errorf("title = %v, want alpha", payload["title"])
	}

	// Unknown ID
	result, err = h.HandleGet(ctx, makeRequest(map[string]any{"id": "capsule_missing"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for unknown id")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleList(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	createCapsule(t, h, map[string]any{"title": "a", "content": "c", "domain": "science"})
	createCapsule(t, h, map[string]any{"title": "b", "content": "c", "domain": "policy"})

	result, err := h.HandleList(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	payload := extractJSON(t, result)
	if count := payload["count"].(float64); count != 2 {
		t.Errorf("count = %v, want 2", count)
	}

	result, err = h.HandleList(ctx, makeRequest(map[string]any{"domain": "science"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	payload = extractJSON(t, result)
	if count := payload["count"].(float64); count != 1 {
		t.Errorf("filtered count = %v, want 1", count)
	}
}

func TestHandleUpdate(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	id := createCapsule(t, h, map[string]any{
		"title":   "before",
		"content": "original content",
	})

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "update title",
			args:      map[string]any{"id": id, "title": "after"},
			wantError: false,
		},
		{
			name:      "update with no fields",
			args:      map[string]any{"id": id},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "update blank content",
			args:      map[string]any{"id": id, "content": "  "},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "update unknown capsule",
			args:      map[string]any{"id": "capsule_missing", "title": "x"},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleUpdate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else if result.IsError {
				t.Errorf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	id := createCapsule(t, h, map[string]any{"title": "gone", "content": "soon"})

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %v", extractErrorMessage(result))
	}

	// Second delete reports not found
	result, err = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error on second delete")
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleCollisions(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	targetID := createCapsule(t, h, map[string]any{
		"title":   "target",
		"content": "c",
		"domain":  "science",
		"tags":    []string{"ocean", "climate"},
	})
	createCapsule(t, h, map[string]any{
		"title":   "match",
		"content": "c",
		"domain":  "science",
		"tags":    []string{"ocean", "policy"},
	})
	createCapsule(t, h, map[string]any{
		"title":   "unrelated",
		"content": "c",
		"domain":  "science",
		"tags":    []string{"pasta", "sauce"},
	})

	result, err := h.HandleCollisions(ctx, makeRequest(map[string]any{"id": targetID}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %v", extractErrorMessage(result))
	}
	payload := extractJSON(t, result)
	if count := payload["count"].(float64); count != 1 {
		t.Fatalf("count = %v, want 1: %v", count, payload)
	}
	collisions := payload["collisions"].([]any)
	first := collisions[0].(map[string]any)
	if first["title"] != "match" {
		t.Errorf("collision title = %v, want match", first["title"])
	}
	if first["score"].(float64) != 0.6 {
		t.Errorf("score = %v, want 0.6", first["score"])
	}
}

func TestHandleCollisions_NegativeThreshold(t *testing.T) {
	h := testSetup(t)

	id := createCapsule(t, h, map[string]any{"title": "t", "content": "c"})

	result, err := h.HandleCollisions(context.Background(),
		makeRequest(map[string]any{"id": id, "threshold": -0.1}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error for negative threshold")
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleStats(t *testing.T) {
	h := testSetup(t)
	ctx := context.Background()

	createCapsule(t, h, map[string]any{"title": "a", "content": "c", "domain": "science"})
	createCapsule(t, h, map[string]any{"title": "b", "content": "c", "domain": "science"})

	result, err := h.HandleStats(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	payload := extractJSON(t, result)
	if total := payload["total_count"].(float64); total != 2 {
		t.Errorf("total_count = %v, want 2", total)
	}
	domains := payload["per_domain_counts"].(map[string]any)
	if domains["science"].(float64) != 2 {
		t.Errorf("science count = %v, want 2", domains["science"])
	}
}

func TestToolRegistryComplete(t *testing.T) {
	want := []string{
		"capsule_create", "capsule_get", "capsule_list", "capsule_update",
		"capsule_delete", "capsule_collisions", "capsule_stats",
	}
	names := AllToolNames()
	if len(names) != len(want) {
		t.Fatalf("registry has %d tools, want %d", len(names), len(want))
	}
	for _, name := range want {
		if _, ok := toolRegistry[name]; !ok {
			t.Errorf("tool %q missing from registry", name)
		}
	}
}

// --- helpers ---

// extractJSON parses the first text content in a result as JSON.
func extractJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	return payload
}

// assertErrorCode checks that an error result carries the expected code.
func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	payload := extractJSON(t, result)
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}
	if code := errorObj["code"]; code != expectedCode {
		t.Errorf("error code = %v, want %v", code, expectedCode)
	}
}

// extractErrorMessage returns the raw text of an error result for logging.
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
