package markup

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"markpin/markup/internal/store"
)

var testMCPImpl = &mcp.Implementation{Name: "markpin-test", Version: "0.1.0"}

// mcpSession registers the markup tools and returns a connected client
// session for end-to-end tool calls.
func mcpSession(t *testing.T) (*Service, *mcp.ClientSession) {
	t.Helper()
	svc := newTestService(t)

	srv := mcp.NewServer(testMCPImpl, nil)
	svc.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return svc, session
}

// callTool invokes a tool and returns the JSON text from the first TextContent.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %s", name, resultText(result))
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

// resultText returns the first TextContent of a tool result, or "".
// Error results carry their message this way: only IsError and the
// content survive the wire, not the server-side error value.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

var mcpIngestArgs = map[string]any{
	"scrapedDataId": "s1",
	"projectName":   "Proj",
	"threads": []map[string]any{{
		"threadName":    "T1",
		"imageIndex":    "",
		"imagePath":     "/img/a.png",
		"imageFilename": "a.png",
		"comments": []map[string]any{
			{"index": 1, "content": "looks good", "user": "bob"},
		},
	}},
}

func TestMCP_Ingest(t *testing.T) {
	svc, session := mcpSession(t)

	text := callTool(t, session, "markpin_ingest", mcpIngestArgs)

	var resp map[string]string
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["projectId"] == "" {
		t.Error("expected non-empty projectId")
	}

	tree, err := svc.GetProject(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if tree.ID != resp["projectId"] {
		t.Errorf("stored id %q != returned id %q", tree.ID, resp["projectId"])
	}
}

func TestMCP_Ingest_InvalidPayload(t *testing.T) {
	_, session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "markpin_ingest",
		Arguments: map[string]any{"projectName": "P", "threads": []any{}},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing scrapedDataId")
	}
	if txt := resultText(result); !strings.Contains(txt, "scrapedDataId") {
		t.Errorf("error text = %q, want mention of scrapedDataId", txt)
	}
}

func TestMCP_GetProject(t *testing.T) {
	_, session := mcpSession(t)

	callTool(t, session, "markpin_ingest", mcpIngestArgs)
	text := callTool(t, session, "markpin_get_project", map[string]any{"scrapedDataId": "s1"})

	var tree store.ProjectTree
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tree.Name != "Proj" {
		t.Errorf("Name = %q, want Proj", tree.Name)
	}
	if len(tree.Threads) != 1 || len(tree.Threads[0].Comments) != 1 {
		t.Fatalf("tree shape = %+v", tree.Threads)
	}
	c := tree.Threads[0].Comments[0]
	if c.PinNumber != 1 {
		t.Errorf("PinNumber = %d, want fallback to index 1", c.PinNumber)
	}
	if c.Attachments == nil {
		t.Error("Attachments = nil, want empty list")
	}
}

func TestMCP_GetProject_NotFound(t *testing.T) {
	_, session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "markpin_get_project",
		Arguments: map[string]any{"scrapedDataId": "nope"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown reference")
	}
	if txt := resultText(result); !strings.Contains(txt, "not found") {
		t.Errorf("error text = %q, want mention of not found", txt)
	}
}

func TestMCP_ListProjects(t *testing.T) {
	_, session := mcpSession(t)

	callTool(t, session, "markpin_ingest", mcpIngestArgs)
	text := callTool(t, session, "markpin_list_projects", map[string]any{})

	var projects []*store.Project
	if err := json.Unmarshal([]byte(text), &projects); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(projects) != 1 || projects[0].ScrapedDataID != "s1" {
		t.Errorf("projects = %+v", projects)
	}
}
