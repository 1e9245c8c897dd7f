// Package session manages the Chrome lifecycle and the per-page registry
// agent tools operate against. It is the reference collaborator named by
// spec.md §6 (out of core scope, but required to drive the core end to
// end) and is grounded on domwatch/internal/browser/manager.go (Chrome
// launch/recycle) fused with a per-page registry keyed like
// domwatch.Watcher.observers map[string]*observer.Observer.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// StealthLevel controls the browser automation mode.
type StealthLevel int

const (
	LevelHeadless StealthLevel = 0 // Rod headless + stealth
	LevelHeadful  StealthLevel = 1 // Rod headful + Xvfb
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// MemoryLimit in bytes. Recycle Chrome when exceeded. Default: 1GB.
	MemoryLimit int64

	// RecycleInterval is the maximum lifetime of a Chrome process. Default: 4h.
	RecycleInterval time.Duration

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	// Stealth sets the default stealth level. Default: LevelHeadless.
	Stealth StealthLevel

	// XvfbDisplay for headful mode. Default: ":99".
	XvfbDisplay string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MemoryLimit <= 0 {
		c.MemoryLimit = 1 << 30 // 1GB
	}
	if c.RecycleInterval <= 0 {
		c.RecycleInterval = 4 * time.Hour
	}
	if c.XvfbDisplay == "" {
		c.XvfbDisplay = ":99"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// RecycleCallback is called before and after Chrome recycling so every
// registered PageCore can flush buffers and reconnect.
type RecycleCallback struct {
	// BeforeRecycle is called before Chrome is killed. Pages should flush.
	BeforeRecycle func()
	// AfterRecycle is called after Chrome is restarted. Pages should reconnect.
	AfterRecycle func(browser *rod.Browser)
}

// Manager owns the Chrome process and the registry of open pages.
type Manager struct {
	cfg     Config
	mu      sync.RWMutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	xvfb    *exec.Cmd
	startAt time.Time
	closed  bool
	cb      *RecycleCallback

	pagesMu sync.Mutex
	pages   map[string]*PageHandle
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg, pages: make(map[string]*PageHandle)}
}

// SetRecycleCallback sets the callback for recycle events.
func (m *Manager) SetRecycleCallback(cb *RecycleCallback) {
	m.mu.Lock()
	m.cb = cb
	m.mu.Unlock()
}

// Start launches Chrome (or connects to a remote instance) and returns
// the Rod browser handle. It also starts the memory monitor goroutine.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("session: manager is closed")
	}

	b, err := m.launch(ctx)
	if err != nil {
		return nil, err
	}
	m.browser = b
	m.startAt = time.Now()

	go m.monitorLoop(ctx)

	return b, nil
}

// Browser returns the current Rod browser handle. Thread-safe.
func (m *Manager) Browser() *rod.Browser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser
}

// Recycle kills Chrome, restarts it, and calls the AfterRecycle callback.
func (m *Manager) Recycle(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("session: manager is closed")
	}

	return m.recycleLocked(ctx)
}

// Close shuts down Chrome, Xvfb, and every registered page.
func (m *Manager) Close() error {
	m.pagesMu.Lock()
	for id, ph := range m.pages {
		ph.Tab.Close()
		delete(m.pages, id)
	}
	m.pagesMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.cleanup()
}

func (m *Manager) launch(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger

	// Start Xvfb for headful mode.
	if m.cfg.Stealth == LevelHeadful {
		if err := m.startXvfb(); err != nil {
			return nil, fmt.Errorf("session: xvfb: %w", err)
		}
	}

	var wsURL string

	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("session: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New()

		if m.cfg.Stealth == LevelHeadful {
			l = l.Headless(false).Env("DISPLAY", m.cfg.XvfbDisplay)
		} else {
			l = l.Headless(true)
		}

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("session: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("session: launched local chrome", "url", wsURL, "stealth", m.cfg.Stealth)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("session: connect: %w", err)
	}

	// Ignore certificate errors for dev/testing.
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("session: ignore cert errors failed", "error", err)
	}

	return b, nil
}

func (m *Manager) recycleLocked(ctx context.Context) error {
	log := m.cfg.Logger
	log.Info("session: recycling", "uptime", time.Since(m.startAt))

	if m.cb != nil && m.cb.BeforeRecycle != nil {
		m.cb.BeforeRecycle()
	}

	m.pagesMu.Lock()
	for id, ph := range m.pages {
		ph.Tab.Close()
		delete(m.pages, id)
	}
	m.pagesMu.Unlock()

	if err := m.cleanup(); err != nil {
		log.Warn("session: cleanup during recycle", "error", err)
	}

	b, err := m.launch(ctx)
	if err != nil {
		return fmt.Errorf("session: relaunch: %w", err)
	}
	m.browser = b
	m.startAt = time.Now()

	if m.cb != nil && m.cb.AfterRecycle != nil {
		m.cb.AfterRecycle(b)
	}

	log.Info("session: recycled successfully")
	return nil
}

func (m *Manager) cleanup() error {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.stopXvfb()
	return nil
}

func (m *Manager) monitorLoop(ctx context.Context) {
	log := m.cfg.Logger
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			if m.closed || m.browser == nil {
				m.mu.RUnlock()
				return
			}
			startAt := m.startAt
			m.mu.RUnlock()

			if time.Since(startAt) > m.cfg.RecycleInterval {
				log.Info("session: recycle interval reached")
				if err := m.Recycle(ctx); err != nil {
					log.Error("session: recycle failed", "error", err)
				}
				continue
			}

			m.mu.RLock()
			b := m.browser
			m.mu.RUnlock()
			if b == nil {
				continue
			}

			used, err := jsHeapUsage(b)
			if err != nil {
				log.Debug("session: heap check failed", "error", err)
				continue
			}

			if used > m.cfg.MemoryLimit {
				log.Info("session: memory limit exceeded", "used", used, "limit", m.cfg.MemoryLimit)
				if err := m.Recycle(ctx); err != nil {
					log.Error("session: recycle failed", "error", err)
				}
			}
		}
	}
}

// jsHeapUsage queries Chrome's JS heap via the first open page, as a proxy
// for overall process memory pressure.
func jsHeapUsage(b *rod.Browser) (int64, error) {
	pages, err := b.Pages()
	if err != nil || len(pages) == 0 {
		return 0, fmt.Errorf("session: no pages for heap check")
	}

	res, err := pages[0].Eval(`() => {
		if (performance.memory) {
			return performance.memory.usedJSHeapSize;
		}
		return 0;
	}`)
	if err != nil {
		return 0, err
	}

	return int64(res.Value.Int()), nil
}
