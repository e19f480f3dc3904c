/*
Package web serves the diet planner form, renders generated or fallback
plans, and hands out their downloads.
*/
package web

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"autism-diet-planner/internal/app"
	"autism-diet-planner/internal/config"
	"autism-diet-planner/internal/metrics"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// Server wires the HTTP routes to the application.
type Server struct {
	app        *app.App
	collectors *metrics.Collectors
	cookies    *sessions.CookieStore
	tokens     *TokenSigner
	dataDir    string

	background   template.CSS
	assetWarning string

	echo *echo.Echo
}

// NewServer builds the router. collectors may be nil, in which case /metrics
// is not served.
func NewServer(cfg *config.Config, application *app.App, collectors *metrics.Collectors) *Server {
	s := &Server{
		app:        application,
		collectors: collectors,
		cookies:    newCookieStore(cfg),
		tokens:     NewTokenSigner(cfg.DownloadSecret, downloadTokenTTL),
	}
	if cfg.DatabasePath != "" {
		s.dataDir = filepath.Dir(cfg.DatabasePath)
	}

	bg, err := LoadBackground(cfg.AssetDir)
	switch {
	case errors.Is(err, ErrAssetMissing):
		log.Warn().Str("asset_dir", cfg.AssetDir).Msg("background image not found, using plain background")
		s.assetWarning = "Background image not found. Using plain background."
	case err != nil:
		log.Warn().Err(err).Msg("failed to load background image, using plain background")
		s.assetWarning = "Background image could not be loaded. Using plain background."
	default:
		s.background = bg
	}

	s.echo = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Mount attaches an extra handler, e.g. the Telegram webhook.
func (s *Server) Mount(method, path string, h http.Handler) {
	s.echo.Add(method, path, echo.WrapHandler(h))
}

// HTTPServer returns an http.Server listening on addr with production timeouts.
func (s *Server) HTTPServer(addr string, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
	}
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(LoggerMiddleware)
	e.Use(requestLogger())

	e.Renderer = &TemplateRenderer{
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}

	e.GET("/", s.indexHandler)
	e.POST("/plan", s.planHandler)
	e.GET("/download/:token", s.downloadHandler)
	e.POST("/session/reset", s.resetHandler)
	e.GET("/health", s.healthHandler)
	if s.collectors != nil {
		e.GET("/metrics", echo.WrapHandler(s.collectors.Handler()))
	}

	return e
}

func newCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(int(cfg.SessionTTL / time.Second))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.IsProduction()
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}
