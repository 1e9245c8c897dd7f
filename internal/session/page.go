package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/lespaceman/athena-browser-mcp-sub002/horosafe"
	"github.com/lespaceman/athena-browser-mcp-sub002/idgen"
)

// Tab wraps a Rod page with the lifecycle setup every page needs: stealth
// creation, resource blocking, and navigation. Grounded on
// domwatch/internal/browser/tab.go's OpenTab.
type Tab struct {
	Page    *rod.Page
	Stealth StealthLevel
}

// PageHandle is the registry entry for one open page — the supplementary
// type backing *list_pages* (§4 DATA MODEL), generalized from the
// teacher's domwatch.Tab{PageURL, PageID}.
type PageHandle struct {
	PageID    string
	URL       string
	Title     string
	CreatedAt int64 // epoch milliseconds

	Tab *Tab
}

// OpenPage creates a new tab, navigates to pageURL with stealth applied,
// registers it under a fresh page id, and returns its handle.
func (m *Manager) OpenPage(ctx context.Context, pageURL string, level StealthLevel) (*PageHandle, error) {
	if err := horosafe.ValidateURL(pageURL); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("session: no active browser")
	}

	var page *rod.Page
	var err error

	if level == LevelHeadful {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	} else {
		page, err = stealth.Page(b)
	}
	if err != nil {
		return nil, fmt.Errorf("session: create page: %w", err)
	}

	m.mu.RLock()
	blocking := m.cfg.ResourceBlocking
	logger := m.cfg.Logger
	m.mu.RUnlock()

	if len(blocking) > 0 {
		if err := applyResourceBlocking(page, blocking); err != nil {
			logger.Warn("session: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("session: navigate %s: %w", pageURL, err)
	}

	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logger.Warn("session: wait load timeout", "url", pageURL, "error", err)
	}

	title := pageURL
	if info, err := page.Info(); err == nil && info.Title != "" {
		title = info.Title
	}

	ph := &PageHandle{
		PageID:    idgen.New(),
		URL:       pageURL,
		Title:     title,
		CreatedAt: time.Now().UnixMilli(),
		Tab:       &Tab{Page: page, Stealth: level},
	}

	m.pagesMu.Lock()
	m.pages[ph.PageID] = ph
	m.pagesMu.Unlock()

	return ph, nil
}

// Page returns the registered page handle for pageID, or false if none.
func (m *Manager) Page(pageID string) (*PageHandle, bool) {
	m.pagesMu.Lock()
	defer m.pagesMu.Unlock()
	ph, ok := m.pages[pageID]
	return ph, ok
}

// Pages returns every registered page handle, in no particular order —
// the backing collaborator for the *list_pages* tool.
func (m *Manager) Pages() []*PageHandle {
	m.pagesMu.Lock()
	defer m.pagesMu.Unlock()
	out := make([]*PageHandle, 0, len(m.pages))
	for _, ph := range m.pages {
		out = append(out, ph)
	}
	return out
}

// ClosePage closes and unregisters pageID's tab.
func (m *Manager) ClosePage(pageID string) error {
	m.pagesMu.Lock()
	ph, ok := m.pages[pageID]
	delete(m.pages, pageID)
	m.pagesMu.Unlock()

	if !ok {
		return fmt.Errorf("session: unknown page %q", pageID)
	}
	return ph.Tab.Close()
}

// Close closes the underlying Rod page.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
