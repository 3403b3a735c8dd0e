package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"tulisan/config"
	"tulisan/internal/display"
	"tulisan/internal/editor"
	"tulisan/middleware"
	"tulisan/pkg/logger"

	"github.com/microcosm-cc/bluemonday"
)

type EditPageData struct {
	Title     string
	ScriptSrc string
	Token     string
	ShareURL  string
	Draft     string
	// Preview is the draft rendered as markup, trusted the same way the
	// display page trusts saved content.
	Preview template.HTML
	Init    template.JS
}

type DisplayPageData struct {
	Title   string
	State   display.State
	Content template.HTML
}

type Pages struct {
	templates  *TemplateEngine
	drafts     *editor.Store
	fetcher    display.Fetcher
	secret     []byte
	sessionTTL time.Duration
	widget     config.EditorConfig
	widgetInit template.JS
	sanitizer  *bluemonday.Policy
}

type PagesConfig struct {
	Drafts        *editor.Store
	Fetcher       display.Fetcher
	SessionSecret []byte
	SessionTTL    time.Duration
	Widget        config.EditorConfig
	// Sanitize strips unsafe markup from displayed content. Off by default:
	// saved content is rendered exactly as the editor produced it.
	Sanitize bool
}

func NewPages(cfg PagesConfig) (*Pages, error) {
	tmpl, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}
	initJSON, err := json.Marshal(cfg.Widget)
	if err != nil {
		return nil, fmt.Errorf("encoding editor config: %w", err)
	}

	p := &Pages{
		templates:  tmpl,
		drafts:     cfg.Drafts,
		fetcher:    cfg.Fetcher,
		secret:     cfg.SessionSecret,
		sessionTTL: cfg.SessionTTL,
		widget:     cfg.Widget,
		widgetInit: template.JS(initJSON),
	}
	if cfg.Sanitize {
		p.sanitizer = bluemonday.UGCPolicy()
	}
	return p, nil
}

// HandleEdit renders the editor around a draft. A valid ?token= link reopens
// that session so several tabs can share one draft; otherwise a new session is
// opened.
func (p *Pages) HandleEdit(w http.ResponseWriter, r *http.Request) {
	draft, token, err := p.openDraft(r.URL.Query().Get("token"))
	if err != nil {
		logger.Sugar.Errorf("Failed to issue session token: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	content := draft.Content()
	data := EditPageData{
		Title:     "Edit Content",
		ScriptSrc: p.widget.ScriptSrc,
		Token:     token,
		ShareURL:  "/edit?token=" + url.QueryEscape(token),
		Draft:     content,
		Preview:   template.HTML(content),
		Init:      p.widgetInit,
	}
	if err := p.templates.Render(w, "edit.html", data); err != nil {
		logger.Sugar.Errorf("Error rendering edit page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (p *Pages) openDraft(token string) (*editor.Draft, string, error) {
	if token != "" {
		if id, err := middleware.ParseSessionToken(p.secret, token); err == nil {
			if draft, ok := p.drafts.Get(id); ok {
				return draft, token, nil
			}
		}
		logger.Sugar.Info("Editor link no longer valid, opening a new session")
	}

	draft := p.drafts.Create()
	token, err := middleware.IssueSessionToken(p.secret, draft.ID, p.sessionTTL)
	return draft, token, err
}

// HandleDisplay mounts a display surface for this page load and renders the
// latest saved content.
func (p *Pages) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	surface := display.NewSurface(p.fetcher)
	surface.Mount(r.Context())

	content := surface.Content()
	if p.sanitizer != nil {
		content = p.sanitizer.Sanitize(content)
	}
	data := DisplayPageData{
		Title:   "Display Content",
		State:   surface.State(),
		Content: template.HTML(content),
	}
	if err := p.templates.Render(w, "display.html", data); err != nil {
		logger.Sugar.Errorf("Error rendering display page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
