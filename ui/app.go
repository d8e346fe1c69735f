// Package ui serves the workbench and chart pages over HTTP.
package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"rolstat/adapters/excel"
	"rolstat/app"
	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal"
	"rolstat/internal/errors"
	"rolstat/internal/events"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Deps are the services the UI drives
type Deps struct {
	Workbench *app.Workbench
	Charts    *app.ChartSurface
	Importer  *excel.DataReader
	Hub       *events.Hub
	Logger    *internal.Logger
}

// App represents the UI application
type App struct {
	router    *chi.Mux
	workbench *app.Workbench
	charts    *app.ChartSurface
	importer  *excel.DataReader
	hub       *events.Hub
	templates *template.Template
	help      template.HTML
	log       *internal.Logger

	writeWorkbook func(w io.Writer, name string, cells []rol.RowCells, sorted []string) error
}

// NewApp creates the UI application
func NewApp(deps Deps) (*App, error) {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	help, err := renderHelp()
	if err != nil {
		return nil, fmt.Errorf("failed to render help: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		workbench: deps.Workbench,
		charts:    deps.Charts,
		importer:  deps.Importer,
		hub:       deps.Hub,
		templates: templates,
		help:      help,
		log:       deps.Logger.Named("ui"),

		writeWorkbook: excel.WriteTable,
	}
	if err := a.setupMiddleware(); err != nil {
		return nil, err
	}
	a.setupRoutes()
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(a.requestOrigin)

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Pages
	a.router.Get("/", a.handleIndex)
	a.router.Get("/charts", a.handleChartsPage)
	a.router.Get("/help", a.handleHelp)

	// Raw data
	a.router.Put("/api/raw", a.handlePutRaw)
	a.router.Put("/api/raw/{row}/{col}", a.handlePutRawCell)
	a.router.Post("/api/raw/import", a.handleImportRaw)

	// ROL
	a.router.Get("/api/state", a.handleState)
	a.router.Post("/api/rol/apply", a.handleApply)
	a.router.Get("/api/rol", a.handleGetROL)
	a.router.Delete("/api/rol", a.handleClear)
	a.router.Get("/api/rol/frequencies", a.handleFrequencies)
	a.router.Get("/api/rol/export.xlsx", a.handleExport)

	// Manual frequency table
	a.router.Get("/api/freq-table", a.handleGetFreqTable)
	a.router.Put("/api/freq-table", a.handlePutFreqTable)

	// Charts
	a.router.Post("/api/charts/load", a.handleLoadCharts)
	a.router.Get("/api/charts", a.handleGetCharts)
	a.router.Get("/api/charts/{kind}.png", a.handleChartImage)

	// Change stream
	a.router.Handle("/events", a.hub.Handler("/events"))
}

// requestOrigin attributes store writes made while serving r to the page that
// sent the events.OriginHeader.
func (a *App) requestOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(events.OriginHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		origin, err := core.ParseOrigin(raw)
		if err != nil {
			a.writeError(w, errors.ValidationError(events.OriginHeader+": "+err.Error()))
			return
		}
		next.ServeHTTP(w, r.WithContext(core.WithOrigin(r.Context(), origin)))
	})
}

// ServeHTTP makes App an http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// renderTemplate renders into a buffer first so a failing template never
// sends a partial page.
func (a *App) renderTemplate(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.log.Error("template %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		a.log.Warn("writing %s: %v", name, err)
	}
}
