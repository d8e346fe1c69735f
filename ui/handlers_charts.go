package ui

import (
	"bytes"
	stderrors "errors"
	"net/http"

	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal/errors"

	"github.com/go-chi/chi/v5"
)

func (a *App) handleChartsPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "charts.html", map[string]any{
		"View":  a.charts.View(),
		"Specs": rol.ChartSpecs,
	})
}

func (a *App) handleLoadCharts(w http.ResponseWriter, r *http.Request) {
	if err := a.charts.Load(r.Context()); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.charts.View())
}

// handleGetCharts answers 204 while there is nothing to render
func (a *App) handleGetCharts(w http.ResponseWriter, r *http.Request) {
	view := a.charts.View()
	if view.Data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.writeJSON(w, http.StatusOK, view)
}

func (a *App) handleChartImage(w http.ResponseWriter, r *http.Request) {
	kind, ok := rol.ParseChartKind(chi.URLParam(r, "kind"))
	if !ok {
		a.writeError(w, errors.NotFound("chart "+chi.URLParam(r, "kind")))
		return
	}
	var buf bytes.Buffer
	if err := a.charts.WriteChart(kind, &buf); err != nil {
		if stderrors.Is(err, core.ErrChartNotFound) {
			a.writeError(w, errors.WithCode(errors.CodeNotFound, err))
			return
		}
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		a.log.Warn("writing chart: %v", err)
	}
}
