package factpack

import (
	"testing"

	"github.com/lespaceman/athena-browser-mcp-sub002/internal/snapshot"
)

func loginSnapshot() *snapshot.BaseSnapshot {
	return &snapshot.BaseSnapshot{
		URL:   "https://shop.example.com/login",
		Title: "Sign in — Example Shop",
		Nodes: []snapshot.ReadableNode{
			{
				NodeID: "form-aaa", Kind: snapshot.KindForm,
				Where: snapshot.Where{Region: snapshot.RegionForm, GroupID: "form-login"},
			},
			{
				NodeID: "textbox-bbb", Kind: snapshot.KindTextbox, Label: "Email",
				Where:      snapshot.Where{Region: snapshot.RegionForm, GroupID: "form-login"},
				State:      snapshot.State{Required: true},
				Attributes: snapshot.Attributes{InputType: "email", Value: "a@b.com"},
			},
			{
				NodeID: "textbox-ccc", Kind: snapshot.KindTextbox, Label: "Password",
				Where:      snapshot.Where{Region: snapshot.RegionForm, GroupID: "form-login"},
				State:      snapshot.State{Required: true},
				Attributes: snapshot.Attributes{InputType: "password", Value: "********"},
			},
			{
				NodeID: "button-ddd", Kind: snapshot.KindButton, Label: "Sign in",
				Where: snapshot.Where{Region: snapshot.RegionForm, GroupID: "form-login"},
				State: snapshot.State{Visible: true, Enabled: true},
			},
		},
	}
}

func TestDetectDialogs_CookieConsent(t *testing.T) {
	snap := &snapshot.BaseSnapshot{
		Nodes: []snapshot.ReadableNode{
			{NodeID: "dialog-aaa", Kind: snapshot.KindDialog, Label: "We use cookies", Where: snapshot.Where{Region: snapshot.RegionDialog, GroupID: "dialog-consent"}},
			{NodeID: "button-bbb", Kind: snapshot.KindButton, Label: "Accept all", Where: snapshot.Where{Region: snapshot.RegionDialog, GroupID: "dialog-consent"}},
		},
	}
	dialogs := detectDialogs(snap)
	if len(dialogs) != 1 {
		t.Fatalf("got %d dialogs, want 1", len(dialogs))
	}
	if dialogs[0].Category != DialogCookieConsent {
		t.Errorf("got category %s, want %s", dialogs[0].Category, DialogCookieConsent)
	}
}

func TestDetectForms_LoginFormCompletion(t *testing.T) {
	cfg := Config{}
	cfg.defaults()
	forms := detectForms(loginSnapshot(), cfg)
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	f := forms[0]
	if f.RequiredCount != 2 || f.FilledRequiredCount != 2 {
		t.Errorf("got required=%d filled=%d, want 2/2", f.RequiredCount, f.FilledRequiredCount)
	}
	if f.CompletionPct != 1.0 {
		t.Errorf("got completion %.2f, want 1.0", f.CompletionPct)
	}
	if !f.CanSubmit {
		t.Error("expected CanSubmit true for fully filled form with a submit button")
	}
}

func TestDetectForms_SemanticTypePriority(t *testing.T) {
	cfg := Config{}
	cfg.defaults()
	forms := detectForms(loginSnapshot(), cfg)
	f := forms[0]
	var email, password SemanticType
	for _, field := range f.Fields {
		switch field.NodeID {
		case "textbox-bbb":
			email = field.SemanticType
		case "textbox-ccc":
			password = field.SemanticType
		}
	}
	if email != SemEmail {
		t.Errorf("email field semantic type: got %s, want %s", email, SemEmail)
	}
	if password != SemPassword {
		t.Errorf("password field semantic type: got %s, want %s", password, SemPassword)
	}
}

func TestClassifyPageType_Login(t *testing.T) {
	cfg := Config{}
	cfg.defaults()
	pt := classifyPageType(loginSnapshot(), cfg)
	if pt.Label != PageLogin {
		t.Errorf("got %s, want %s", pt.Label, PageLogin)
	}
}

func TestClassifyPageType_UnknownBelowThreshold(t *testing.T) {
	cfg := Config{}
	cfg.defaults()
	snap := &snapshot.BaseSnapshot{URL: "https://example.com/", Title: "Example"}
	pt := classifyPageType(snap, cfg)
	if pt.Label != PageUnknown {
		t.Errorf("got %s, want %s", pt.Label, PageUnknown)
	}
}

func TestSelectActions_PrimaryCTA(t *testing.T) {
	cfg := Config{}
	cfg.defaults()
	snap := &snapshot.BaseSnapshot{
		Nodes: []snapshot.ReadableNode{
			{NodeID: "button-aaa", Kind: snapshot.KindButton, Label: "Learn more", State: snapshot.State{Visible: true, Enabled: true}},
			{NodeID: "button-bbb", Kind: snapshot.KindButton, Label: "Add to cart", State: snapshot.State{Visible: true, Enabled: true}},
		},
	}
	actions := selectActions(snap, cfg)
	if actions.PrimaryCTA == nil {
		t.Fatal("expected a primary CTA")
	}
	if actions.PrimaryCTA.NodeID != "button-bbb" {
		t.Errorf("got primary CTA %s, want button-bbb", actions.PrimaryCTA.NodeID)
	}
}

func TestSelectActions_BoundedTopN(t *testing.T) {
	cfg := Config{MaxActions: 2}
	cfg.defaults()
	snap := &snapshot.BaseSnapshot{
		Nodes: []snapshot.ReadableNode{
			{NodeID: "a", Kind: snapshot.KindButton, Label: "One", State: snapshot.State{Visible: true, Enabled: true}},
			{NodeID: "b", Kind: snapshot.KindButton, Label: "Two", State: snapshot.State{Visible: true, Enabled: true}},
			{NodeID: "c", Kind: snapshot.KindButton, Label: "Three", State: snapshot.State{Visible: true, Enabled: true}},
		},
	}
	actions := selectActions(snap, cfg)
	if len(actions.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(actions.Candidates))
	}
}
