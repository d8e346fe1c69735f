package ui

import (
	"bytes"
	"net/http"
	"strconv"

	"rolstat/adapters/excel"
	"rolstat/domain/rol"
	"rolstat/internal/errors"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20

type rawRequest struct {
	Values []string `json:"values"`
}

type rawResponse struct {
	Overflow int        `json:"overflow"`
	Raw      [][]string `json:"raw"`
}

type cellRequest struct {
	Value string `json:"value"`
}

type applyRequest struct {
	Mode            string `json:"mode"`
	ConfirmFallback bool   `json:"confirm_fallback"`
}

type rolResponse struct {
	Generated bool     `json:"generated"`
	Values    []string `json:"values"`
}

type frequenciesResponse struct {
	Total int            `json:"total"`
	Rows  []rol.RowCells `json:"rows"`
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	rows, cols := a.workbench.Dimensions()
	a.renderTemplate(w, "index.html", map[string]any{
		"State":     a.workbench.State(),
		"Rows":      rows,
		"Cols":      cols,
		"SortModes": []rol.SortMode{rol.ModeNumeric, rol.ModeAlpha, rol.ModeAuto},
	})
}

func (a *App) handleState(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.workbench.State())
}

func (a *App) handlePutRaw(w http.ResponseWriter, r *http.Request) {
	var req rawRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	overflow := a.workbench.SetRaw(req.Values)
	a.writeJSON(w, http.StatusOK, rawResponse{Overflow: overflow, Raw: a.workbench.State().Raw})
}

func (a *App) handlePutRawCell(w http.ResponseWriter, r *http.Request) {
	row, err1 := strconv.Atoi(chi.URLParam(r, "row"))
	col, err2 := strconv.Atoi(chi.URLParam(r, "col"))
	if err1 != nil || err2 != nil {
		a.writeError(w, errors.InvalidInput("row and col must be integers"))
		return
	}
	var req cellRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.workbench.SetRawCell(row, col, req.Value); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rawResponse{Raw: a.workbench.State().Raw})
}

func (a *App) handleImportRaw(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.writeError(w, errors.ValidationError("expected a multipart upload: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, errors.ValidationError("missing file field"))
		return
	}
	defer file.Close()

	cells, err := a.importer.ReadCellsFrom(file, excel.KindFromName(header.Filename))
	if err != nil {
		a.writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	overflow := a.workbench.SetRaw(cells)
	a.log.Info("imported %d value(s) from %s", len(cells), header.Filename)
	a.writeJSON(w, http.StatusOK, rawResponse{Overflow: overflow, Raw: a.workbench.State().Raw})
}

func (a *App) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	mode, err := rol.ParseSortMode(req.Mode)
	if err != nil {
		a.writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	res, err := a.workbench.Apply(r.Context(), mode, req.ConfirmFallback)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}

func (a *App) handleGetROL(w http.ResponseWriter, r *http.Request) {
	values := a.workbench.Persisted(r.Context())
	a.writeJSON(w, http.StatusOK, rolResponse{Generated: len(values) > 0, Values: values})
}

func (a *App) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := a.workbench.Clear(r.Context()); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleFrequencies(w http.ResponseWriter, r *http.Request) {
	table := rol.Build(a.workbench.Persisted(r.Context()))
	a.writeJSON(w, http.StatusOK, frequenciesResponse{Total: table.Total, Rows: table.Cells()})
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	values := a.workbench.Persisted(r.Context())
	if len(values) == 0 {
		a.writeError(w, errors.NotFound("generated ROL"))
		return
	}
	var buf bytes.Buffer
	name := a.workbench.FreqTable().Name
	if err := a.writeWorkbook(&buf, name, rol.Build(values).Cells(), values); err != nil {
		a.writeError(w, errors.Wrap(err, "export failed"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="rol.xlsx"`)
	if _, err := buf.WriteTo(w); err != nil {
		a.log.Warn("writing export: %v", err)
	}
}
