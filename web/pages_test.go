package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"tulisan/config"
	"tulisan/internal/content/model"
	"tulisan/internal/content/repository"
	"tulisan/internal/content/service"
	"tulisan/internal/display"
	"tulisan/internal/editor"
	"tulisan/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("pages-secret")

type downFetcher struct{}

func (downFetcher) FetchLatest(context.Context) (model.ContentRecord, error) {
	return model.ContentRecord{}, errors.New("unreachable")
}

func newPages(t *testing.T, fetcher display.Fetcher, sanitize bool) (*Pages, *editor.Store) {
	t.Helper()
	drafts := editor.NewStore(10, time.Hour)
	p, err := NewPages(PagesConfig{
		Drafts:        drafts,
		Fetcher:       fetcher,
		SessionSecret: secret,
		SessionTTL:    time.Hour,
		Widget:        config.DefaultEditorConfig(),
		Sanitize:      sanitize,
	})
	require.NoError(t, err)
	return p, drafts
}

func TestTemplatesParse(t *testing.T) {
	_, err := NewTemplateEngine()
	require.NoError(t, err)
}

func TestEditPageCreatesSession(t *testing.T) {
	p, drafts := newPages(t, downFetcher{}, false)

	rr := httptest.NewRecorder()
	p.HandleEdit(rr, httptest.NewRequest(http.MethodGet, "/edit", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()

	assert.Equal(t, 1, drafts.Len())
	assert.Contains(t, body, `/assets/libs/tinymce/tinymce.min.js`)
	assert.Contains(t, body, `&lt;p&gt;This is the initial content of the editor.&lt;/p&gt;`, "draft is escaped inside the textarea")
	assert.Contains(t, body, `<div id="preview"><p>This is the initial content of the editor.</p></div>`)
	assert.Contains(t, body, `"height":500`)

	m := regexp.MustCompile(`token: "([^"]+)"`).FindStringSubmatch(body)
	require.Len(t, m, 2)
	sessionID, err := middleware.ParseSessionToken(secret, m[1])
	require.NoError(t, err)
	_, ok := drafts.Get(sessionID)
	assert.True(t, ok)
}

func TestDisplayPageShowsLatestRaw(t *testing.T) {
	svc := service.NewContentService(repository.NewMemoryRepository())
	_, err := svc.Append(context.Background(), "<p>Hello</p>")
	require.NoError(t, err)
	p, _ := newPages(t, svc, false)

	rr := httptest.NewRecorder()
	p.HandleDisplay(rr, httptest.NewRequest(http.MethodGet, "/display", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-state="loaded"><p>Hello</p></div>`)
}

func TestDisplayPageShowsNewestOfTwo(t *testing.T) {
	svc := service.NewContentService(repository.NewMemoryRepository())
	_, err := svc.Append(context.Background(), "<p>A</p>")
	require.NoError(t, err)
	_, err = svc.Append(context.Background(), "<p>B</p>")
	require.NoError(t, err)
	p, _ := newPages(t, svc, false)

	rr := httptest.NewRecorder()
	p.HandleDisplay(rr, httptest.NewRequest(http.MethodGet, "/display", nil))
	assert.Contains(t, rr.Body.String(), `<p>B</p>`)
	assert.NotContains(t, rr.Body.String(), `<p>A</p>`)
}

func TestDisplayPageEmptyAndError(t *testing.T) {
	empty, _ := newPages(t, service.NewContentService(repository.NewMemoryRepository()), false)
	rr := httptest.NewRecorder()
	empty.HandleDisplay(rr, httptest.NewRequest(http.MethodGet, "/display", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-state="empty"></div>`)

	down, _ := newPages(t, downFetcher{}, false)
	rr = httptest.NewRecorder()
	down.HandleDisplay(rr, httptest.NewRequest(http.MethodGet, "/display", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-state="error"></div>`)
}

func TestDisplayRawByDefaultSanitizedOnRequest(t *testing.T) {
	svc := service.NewContentService(repository.NewMemoryRepository())
	_, err := svc.Append(context.Background(), `<p>Hi</p><script>alert(1)</script>`)
	require.NoError(t, err)

	raw, _ := newPages(t, svc, false)
	rr := httptest.NewRecorder()
	raw.HandleDisplay(rr, httptest.NewRequest(http.MethodGet, "/display", nil))
	assert.Contains(t, rr.Body.String(), `<script>alert(1)</script>`)

	clean, _ := newPages(t, svc, true)
	rr = httptest.NewRecorder()
	clean.HandleDisplay(rr, httptest.NewRequest(http.MethodGet, "/display", nil))
	assert.Contains(t, rr.Body.String(), `<p>Hi</p>`)
	assert.NotContains(t, rr.Body.String(), `alert(1)`)
}

func TestEditLinkReopensSession(t *testing.T) {
	p, drafts := newPages(t, downFetcher{}, false)
	tokenRe := regexp.MustCompile(`token: "([^"]+)"`)

	rr := httptest.NewRecorder()
	p.HandleEdit(rr, httptest.NewRequest(http.MethodGet, "/edit", nil))
	m := tokenRe.FindStringSubmatch(rr.Body.String())
	require.Len(t, m, 2)
	assert.Contains(t, rr.Body.String(), `href="/edit?token=`)

	sessionID, err := middleware.ParseSessionToken(secret, m[1])
	require.NoError(t, err)
	draft, ok := drafts.Get(sessionID)
	require.True(t, ok)
	draft.Replace("<p>shared</p>")

	rr = httptest.NewRecorder()
	p.HandleEdit(rr, httptest.NewRequest(http.MethodGet, "/edit?token="+m[1], nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, drafts.Len(), "second tab joins the existing session")
	assert.Contains(t, rr.Body.String(), `<div id="preview"><p>shared</p></div>`)
	again := tokenRe.FindStringSubmatch(rr.Body.String())
	require.Len(t, again, 2)
	assert.Equal(t, m[1], again[1])

	rr = httptest.NewRecorder()
	p.HandleEdit(rr, httptest.NewRequest(http.MethodGet, "/edit?token=forged", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, drafts.Len(), "an invalid link opens a new session")
	assert.Contains(t, rr.Body.String(), `&lt;p&gt;This is the initial content of the editor.&lt;/p&gt;`)
}
