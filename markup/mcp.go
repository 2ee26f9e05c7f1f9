package markup

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"markpin/kit"
)

// RegisterMCP registers the markup tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerIngestTool(srv)
	svc.registerGetProjectTool(srv)
	svc.registerListProjectsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- ingest ---

func (svc *Service) registerIngestTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "markpin_ingest",
		Description: "Persist one scraped markup project (threads, comments, attachments) and return its project id.",
		InputSchema: inputSchema(map[string]any{
			"scrapedDataId": map[string]any{"type": "string", "description": "Stable reference of the scrape run"},
			"projectName":   map[string]any{"type": "string", "description": "Display name of the project"},
			"threads":       map[string]any{"type": "array", "description": "Thread payloads with nested comments"},
		}, []string{"scrapedDataId", "projectName", "threads"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*IngestRequest)
		projectID, err := svc.Ingest(ctx, r.ScrapedDataID, r.ProjectName, r.Threads)
		if err != nil {
			return nil, err
		}
		return map[string]string{"projectId": projectID}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r IngestRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- get project ---

type getProjectReq struct {
	ScrapedDataID string `json:"scrapedDataId"`
}

func (svc *Service) registerGetProjectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "markpin_get_project",
		Description: "Fetch the stored project tree (threads and comments in order) for a scraped-data reference.",
		InputSchema: inputSchema(map[string]any{
			"scrapedDataId": map[string]any{"type": "string", "description": "Stable reference of the scrape run"},
		}, []string{"scrapedDataId"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*getProjectReq)
		return svc.GetProject(ctx, r.ScrapedDataID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r getProjectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- list projects ---

func (svc *Service) registerListProjectsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "markpin_list_projects",
		Description: "List all stored projects, most recently updated first.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return svc.ListProjects(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
