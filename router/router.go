package router

import (
	"io/fs"
	"net/http"

	"tulisan/config"
	contentHandler "tulisan/internal/content"
	"tulisan/internal/content/service"
	"tulisan/internal/editor"
	"tulisan/middleware"
	"tulisan/pkg/logger"
	"tulisan/socket"
	"tulisan/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Config  *config.Config
	Widget  config.EditorConfig
	Service *service.ContentService
	Drafts  *editor.Store
	Hub     *socket.Hub
}

func Setup(d Deps) (http.Handler, error) {
	pages, err := web.NewPages(web.PagesConfig{
		Drafts:        d.Drafts,
		Fetcher:       d.Service,
		SessionSecret: d.Config.SessionSecret,
		SessionTTL:    d.Config.SessionTTL,
		Widget:        d.Widget,
		Sanitize:      d.Config.SanitizeDisplay,
	})
	if err != nil {
		return nil, err
	}
	contents := contentHandler.NewContentHandler(d.Service, d.Drafts)
	session := middleware.SessionMiddleware(d.Config.SessionSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigin))

	// Pages
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/edit", http.StatusFound)
	})
	r.Get("/edit", pages.HandleEdit)
	r.Get("/display", pages.HandleDisplay)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Assets
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/assets/libs/tinymce/*", http.StripPrefix("/assets/libs/tinymce/", http.FileServer(http.Dir(d.Config.TinyMCEDir))))

	// WebSocket
	r.With(session).Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := middleware.SessionID(r.Context())
		socket.ServeWs(d.Hub, w, r, sessionID)
	})

	// REST API
	r.Route("/api", func(r chi.Router) {
		r.Post("/contents", contents.SaveContent)
		r.Get("/contents/latest", contents.GetLatest)

		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Get("/draft", contents.GetDraft)
			r.Put("/draft", contents.UpdateDraft)
			r.Post("/draft/save", contents.SaveDraft)
		})
	})

	logger.Sugar.Debugf("Serving widget assets from %s", d.Config.TinyMCEDir)
	return r, nil
}
