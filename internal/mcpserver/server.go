// Package mcpserver adapts the Page Perception and Delta Engine's tool
// surface (§6) onto the Model Context Protocol, generalizing the teacher's
// kit.RegisterMCPTool decode→endpoint→encode pattern so the core's XML
// payload reaches the agent as TextContent verbatim instead of a
// JSON-marshaled struct (SPEC_FULL.md §9).
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/pagecore"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/session"
)

// Config configures a Server.
type Config struct {
	Session      *session.Manager
	PageCore     pagecore.Config
	Executor     pagecore.Executor
	StealthLevel session.StealthLevel
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Executor == nil {
		c.Executor = pagecore.NewRodExecutor()
	}
}

// Server owns the live PageCore registry, one per open page, bridging
// internal/session's page lifecycle with internal/pagecore's perception
// pipeline.
type Server struct {
	cfg Config

	coresMu sync.Mutex
	cores   map[string]*pagecore.PageCore
}

// New creates a Server.
func New(cfg Config) *Server {
	cfg.defaults()
	return &Server{
		cfg:   cfg,
		cores: make(map[string]*pagecore.PageCore),
	}
}

// coreFor returns the PageCore for pageID, lazily wiring one from the
// session manager's page handle on first use.
func (s *Server) coreFor(pageID string) (*pagecore.PageCore, error) {
	s.coresMu.Lock()
	if pc, ok := s.cores[pageID]; ok {
		s.coresMu.Unlock()
		return pc, nil
	}
	s.coresMu.Unlock()

	ph, ok := s.cfg.Session.Page(pageID)
	if !ok {
		return nil, &pagecore.Error{Kind: pagecore.KindTransport, Reason: fmt.Sprintf("page %q unknown", pageID), Err: pagecore.ErrPageUnknown}
	}

	s.coresMu.Lock()
	defer s.coresMu.Unlock()
	if pc, ok := s.cores[pageID]; ok {
		return pc, nil
	}
	pc := pagecore.New(pageID, ph.Tab.Page, s.cfg.PageCore)
	pc.Start()
	s.cores[pageID] = pc
	return pc, nil
}

// forgetCore tears down and unregisters pageID's PageCore, called when a
// page closes.
func (s *Server) forgetCore(pageID string) {
	s.coresMu.Lock()
	pc, ok := s.cores[pageID]
	delete(s.cores, pageID)
	s.coresMu.Unlock()
	if ok {
		pc.Close()
	}
}

// openPage is the supplementary page-creation collaborator: spec.md §6
// names perceive/act/find/list-pages as the core's tool surface but is
// silent on how a page comes to exist in the first place (page lifecycle
// is explicitly out of the core's scope, §1). Without it the MCP surface
// has no way to produce a page_id, so the reference server exposes it
// here, backed by internal/session.
func (s *Server) openPage(ctx context.Context, url string) (*session.PageHandle, error) {
	return s.cfg.Session.OpenPage(ctx, url, s.cfg.StealthLevel)
}

func (s *Server) closePage(pageID string) error {
	s.forgetCore(pageID)
	return s.cfg.Session.ClosePage(pageID)
}
