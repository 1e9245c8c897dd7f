package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/pagecore"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/query"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/render"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/session"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
	"github.com/lespaceman/athena-browser-mcp-sub002/kit"
)

// pageHandleDTO is the wire projection of session.PageHandle: the live
// *rod.Page under PageHandle.Tab has no business reaching the transport
// layer.
type pageHandleDTO struct {
	PageID    string `json:"page_id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

func toPageHandleDTO(ph *session.PageHandle) pageHandleDTO {
	return pageHandleDTO{PageID: ph.PageID, URL: ph.URL, Title: ph.Title, CreatedAt: ph.CreatedAt}
}

// Register wires every tool in the agent-facing surface (spec.md §6) onto
// srv, plus the supplementary open_page/close_page page-lifecycle tools
// (see server.go's openPage doc comment).
func (s *Server) Register(srv *mcp.Server) {
	s.registerOpenPage(srv)
	s.registerClosePage(srv)
	s.registerListPages(srv)
	s.registerPerceiveCurrentState(srv)
	s.registerFindElements(srv)
	s.registerActClick(srv)
	s.registerActType(srv)
	s.registerActPress(srv)
	s.registerActScroll(srv)
}

// inputSchema builds a JSON Schema object with type "object", matching the
// teacher's domkeeper/mcp.go helper of the same name.
func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// optionsSchemaProperty documents the dynamically typed per-call
// configuration (§9 DESIGN NOTES) every perceive/act tool accepts. The
// decoder behind it rejects any key not listed here.
var optionsSchemaProperty = map[string]any{
	"type": "object",
	"description": "Optional per-call overrides. Unknown keys are rejected.",
	"properties": map[string]any{
		"include_disabled_fields": map[string]any{"type": "boolean", "description": "Include disabled interactive elements in actionables"},
		"budget":                  map[string]any{"type": "string", "enum": []any{"compact", "standard"}, "description": "Token budget profile"},
		"min_action_score":        map[string]any{"type": "number", "description": "Score threshold (0..1); validated, but ranked actions carry no score and are not filtered by it"},
		"max_actions":             map[string]any{"type": "integer", "description": "Max ranked actions to include"},
		"include_state":           map[string]any{"type": "boolean", "description": "Include per-element state attributes (visible/enabled/...)"},
	},
}

// decodeToolOptions strictly decodes the caller-supplied options map,
// surfacing an invalid/unknown key as the same wire error shape every
// other endpoint failure uses.
func decodeToolOptions(raw map[string]any) (pagecore.PerceiveOptions, error) {
	opts, err := pagecore.DecodeOptions(raw)
	if err != nil {
		return opts, toolError(err)
	}
	return opts, nil
}

// --- open_page / close_page (supplementary lifecycle, see server.go) ---

type openPageRequest struct {
	URL string `json:"url"`
}

func (s *Server) registerOpenPage(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "open_page",
		Description: "Open a new browser tab at the given URL and return its page_id.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "URL to navigate to"},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*openPageRequest)
		ph, err := s.openPage(ctx, r.URL)
		if err != nil {
			return nil, toolError(err)
		}
		return toPageHandleDTO(ph), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r openPageRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

type closePageRequest struct {
	PageID string `json:"page_id"`
}

func (s *Server) registerClosePage(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "close_page",
		Description: "Close a previously opened page.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID to close"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*closePageRequest)
		if err := s.closePage(r.PageID); err != nil {
			return nil, toolError(err)
		}
		return map[string]string{"status": "closed", "page_id": r.PageID}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r closePageRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- list_pages (§6: "returns the set of page handles") ---

func (s *Server) registerListPages(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "list_pages",
		Description: "List every currently open page handle.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		handles := s.cfg.Session.Pages()
		dtos := make([]pageHandleDTO, 0, len(handles))
		for _, ph := range handles {
			dtos = append(dtos, toPageHandleDTO(ph))
		}
		return dtos, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- perceive_current_state (§6: "perceive-current-state") ---

type perceiveRequest struct {
	PageID  string         `json:"page_id"`
	Options map[string]any `json:"options,omitempty"`
}

func (s *Server) registerPerceiveCurrentState(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "perceive_current_state",
		Description: "Capture and render the current state of a page, including the diff against the last perceived snapshot.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID to perceive"},
			"options": optionsSchemaProperty,
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (string, error) {
		r := req.(*perceiveRequest)
		pc, err := s.coreFor(r.PageID)
		if err != nil {
			return "", toolError(err)
		}
		opts, err := decodeToolOptions(r.Options)
		if err != nil {
			return "", err
		}
		out, err := pc.Perceive(ctx, opts)
		if err != nil {
			return "", toolError(err)
		}
		return out.XML, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r perceiveRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTextTool(srv, tool, endpoint, decode)
}

// --- find_elements (§6: "find-elements: delegates to the Query Engine") ---

type findElementsRequest struct {
	PageID    string   `json:"page_id"`
	Kinds     []string `json:"kinds,omitempty"`
	Label     string   `json:"label,omitempty"`
	LabelMode string   `json:"label_mode,omitempty"`
	Regions   []string `json:"regions,omitempty"`
	GroupID   string   `json:"group_id,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	MinScore  float64  `json:"min_score,omitempty"`
}

func (s *Server) registerFindElements(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "find_elements",
		Description: "Find elements in the latest snapshot of a page by kind, label, region, or group.",
		InputSchema: inputSchema(map[string]any{
			"page_id":    map[string]any{"type": "string", "description": "Page ID to query"},
			"kinds":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Element kinds to match"},
			"label":      map[string]any{"type": "string", "description": "Label text to match"},
			"label_mode": map[string]any{"type": "string", "enum": []any{"exact", "contains", "fuzzy"}, "description": "Label match mode (default: fuzzy)"},
			"regions":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Semantic regions to restrict to"},
			"group_id":   map[string]any{"type": "string", "description": "Group ID to restrict to"},
			"limit":      map[string]any{"type": "integer", "description": "Max matches to return"},
			"min_score":  map[string]any{"type": "number", "description": "Minimum relevance score"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (string, error) {
		r := req.(*findElementsRequest)
		pc, err := s.coreFor(r.PageID)
		if err != nil {
			return "", toolError(err)
		}
		res, err := pc.Find(buildFindRequest(r))
		if err != nil {
			return "", toolError(err)
		}
		matches := make([]render.MatchedNode, 0, len(res.Matches))
		for _, m := range res.Matches {
			matches = append(matches, render.MatchedNode{Node: m.Node, Score: m.Score})
		}
		suggestions := make([]*snapshot.ReadableNode, 0, len(res.Suggestions))
		for _, m := range res.Suggestions {
			suggestions = append(suggestions, m.Node)
		}
		return render.RenderMatches(matches, suggestions), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r findElementsRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTextTool(srv, tool, endpoint, decode)
}

func buildFindRequest(r *findElementsRequest) query.Request {
	req := query.Request{
		Label:           r.Label,
		GroupID:         r.GroupID,
		Limit:           r.Limit,
		MinScore:        r.MinScore,
		SortByRelevance: true,
	}
	for _, k := range r.Kinds {
		req.Kinds = append(req.Kinds, snapshot.NodeKind(k))
	}
	for _, reg := range r.Regions {
		req.Regions = append(req.Regions, snapshot.SemanticRegion(reg))
	}
	switch r.LabelMode {
	case "exact":
		req.LabelMode = query.MatchExact
	case "contains":
		req.LabelMode = query.MatchContains
	default:
		req.LabelMode = query.MatchFuzzy
	}
	return req
}

// --- act_click / act_type / act_press / act_scroll (§6) ---

// actionResult resolves an action's (output, error) pair into the text the
// agent sees. An action-failure still carries a valid perception response
// (§7: "the core still returns a perception response — the agent can see
// the (un)changed state"), so it is not surfaced as a tool-call error;
// resolution/transport failures are.
func actionResult(out render.Output, err error) (string, error) {
	if err == nil {
		return out.XML, nil
	}
	if perr, ok := err.(*pagecore.Error); ok && perr.Kind == pagecore.KindActionFailure {
		return out.XML, nil
	}
	return "", toolError(err)
}

type targetedActionRequest struct {
	PageID  string         `json:"page_id"`
	EID     string         `json:"eid,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type actClickRequest struct {
	targetedActionRequest
}

func (s *Server) registerActClick(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "act_click",
		Description: "Click the element named by eid and return the resulting perception delta.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID"},
			"eid":     map[string]any{"type": "string", "description": "Element id to click"},
			"options": optionsSchemaProperty,
		}, []string{"page_id", "eid"}),
	}

	endpoint := func(ctx context.Context, req any) (string, error) {
		r := req.(*actClickRequest)
		pc, err := s.coreFor(r.PageID)
		if err != nil {
			return "", toolError(err)
		}
		opts, err := decodeToolOptions(r.Options)
		if err != nil {
			return "", err
		}
		out, err := pc.ActClick(ctx, s.cfg.Executor, pagecore.TargetDescriptor{EID: r.EID}, pagecore.ClickParams{}, opts)
		return actionResult(out, err)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r actClickRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTextTool(srv, tool, endpoint, decode)
}

type actTypeRequest struct {
	targetedActionRequest
	Text string `json:"text"`
}

func (s *Server) registerActType(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "act_type",
		Description: "Type text into the element named by eid and return the resulting perception delta.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID"},
			"eid":     map[string]any{"type": "string", "description": "Element id to type into"},
			"text":    map[string]any{"type": "string", "description": "Text to type"},
			"options": optionsSchemaProperty,
		}, []string{"page_id", "eid", "text"}),
	}

	endpoint := func(ctx context.Context, req any) (string, error) {
		r := req.(*actTypeRequest)
		pc, err := s.coreFor(r.PageID)
		if err != nil {
			return "", toolError(err)
		}
		opts, err := decodeToolOptions(r.Options)
		if err != nil {
			return "", err
		}
		out, err := pc.ActType(ctx, s.cfg.Executor, pagecore.TargetDescriptor{EID: r.EID}, pagecore.TypeParams{Text: r.Text}, opts)
		return actionResult(out, err)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r actTypeRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTextTool(srv, tool, endpoint, decode)
}

type actPressRequest struct {
	PageID  string         `json:"page_id"`
	Key     string         `json:"key"`
	Options map[string]any `json:"options,omitempty"`
}

func (s *Server) registerActPress(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "act_press",
		Description: "Press a keyboard key (e.g. Enter, Tab, Escape) and return the resulting perception delta.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID"},
			"key":     map[string]any{"type": "string", "description": "Key name, e.g. Enter, Tab, Escape"},
			"options": optionsSchemaProperty,
		}, []string{"page_id", "key"}),
	}

	endpoint := func(ctx context.Context, req any) (string, error) {
		r := req.(*actPressRequest)
		pc, err := s.coreFor(r.PageID)
		if err != nil {
			return "", toolError(err)
		}
		opts, err := decodeToolOptions(r.Options)
		if err != nil {
			return "", err
		}
		out, err := pc.ActPress(ctx, s.cfg.Executor, pagecore.PressParams{Key: r.Key}, opts)
		return actionResult(out, err)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r actPressRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTextTool(srv, tool, endpoint, decode)
}

type actScrollRequest struct {
	PageID  string         `json:"page_id"`
	EID     string         `json:"eid,omitempty"`
	DeltaX  float64        `json:"delta_x,omitempty"`
	DeltaY  float64        `json:"delta_y,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

func (s *Server) registerActScroll(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "act_scroll",
		Description: "Scroll the viewport, or an element into view and scroll by (delta_x, delta_y), and return the resulting perception delta.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page ID"},
			"eid":     map[string]any{"type": "string", "description": "Optional element id to scroll into view first"},
			"delta_x": map[string]any{"type": "number", "description": "Horizontal scroll delta in pixels"},
			"delta_y": map[string]any{"type": "number", "description": "Vertical scroll delta in pixels"},
			"options": optionsSchemaProperty,
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (string, error) {
		r := req.(*actScrollRequest)
		pc, err := s.coreFor(r.PageID)
		if err != nil {
			return "", toolError(err)
		}
		opts, err := decodeToolOptions(r.Options)
		if err != nil {
			return "", err
		}
		out, err := pc.ActScroll(ctx, s.cfg.Executor, pagecore.TargetDescriptor{EID: r.EID}, pagecore.ScrollParams{DeltaX: r.DeltaX, DeltaY: r.DeltaY}, opts)
		return actionResult(out, err)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r actScrollRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTextTool(srv, tool, endpoint, decode)
}
