// Command athenabrowserd runs the Page Perception and Delta Engine as a
// standalone MCP server: one Chrome instance (internal/session), one
// PageCore per open page (internal/mcpserver), exposed over stdio so any
// MCP-speaking agent host can launch it as a subprocess.
//
// A small chi router also serves /healthz and /debug/pages for operators,
// grounded on cmd/chrc's health-endpoint idiom — without replicating its
// optional QUIC transport, since running the MCP tool surface over two
// competing transports in one binary is not something this repo does.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/config"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/mcpserver"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/pagecore"
	"github.com/lespaceman/athena-browser-mcp-sub002/internal/session"
	"github.com/lespaceman/athena-browser-mcp-sub002/shield"
)

func main() {
	cfg := config.New()
	if f := os.Getenv("CONFIG_FILE"); f != "" {
		loaded, err := config.LoadFile(f)
		if err != nil {
			slog.Error("config file", "path", f, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logLevel := env("LOG_LEVEL", cfg.LogLevel)

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stealth := session.LevelHeadless
	if env("STEALTH_LEVEL", cfg.Browser.Stealth) == "headful" {
		stealth = session.LevelHeadful
	}

	sessionMgr := session.NewManager(session.Config{
		RemoteURL:        env("CHROME_REMOTE_URL", cfg.Browser.RemoteURL),
		Stealth:          stealth,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           logger,
	})
	if _, err := sessionMgr.Start(ctx); err != nil {
		slog.Error("chrome start", "error", err)
		os.Exit(1)
	}
	defer sessionMgr.Close()

	mcpSrv := mcp.NewServer(&mcp.Implementation{
		Name:    "athena-browser-mcp",
		Version: "0.1.0",
	}, nil)

	srv := mcpserver.New(mcpserver.Config{
		Session:      sessionMgr,
		StealthLevel: stealth,
		Logger:       logger,
		PageCore: pagecore.Config{
			Logger: logger,
		},
	})
	srv.Register(mcpSrv)

	// Debug/health HTTP surface — not the MCP transport itself.
	port := env("HEALTH_PORT", cfg.HealthPort)
	r := chi.NewRouter()
	for _, mw := range shield.DefaultBOStack() {
		r.Use(mw)
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/debug/pages", func(w http.ResponseWriter, _ *http.Request) {
		pages := sessionMgr.Pages()
		ids := make([]string, 0, len(pages))
		for _, p := range pages {
			ids = append(ids, p.PageID)
		}
		writeJSON(w, 200, map[string]any{"pages": ids})
	})
	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("debug server starting", "port", port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("debug server", "error", err)
		}
	}()

	transport := &mcp.StdioTransport{}
	go func() {
		slog.Info("mcp server starting", "transport", "stdio")
		if err := mcpSrv.Run(ctx, transport); err != nil {
			slog.Error("mcp server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("debug server shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
