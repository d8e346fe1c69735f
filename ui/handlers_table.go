package ui

import (
	"net/http"
)

type countInput struct {
	Row int    `json:"row"`
	FA  string `json:"fa"`
}

type freqTableRequest struct {
	Reload bool         `json:"reload"`
	Name   *string      `json:"name"`
	Counts []countInput `json:"counts"`
}

func (a *App) handleGetFreqTable(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.workbench.FreqTable())
}

// handlePutFreqTable applies a reload, a rename and typed counts, in that
// order. Every count is applied; the first invalid one is reported.
func (a *App) handlePutFreqTable(w http.ResponseWriter, r *http.Request) {
	var req freqTableRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	view := a.workbench.FreqTable()
	if req.Reload {
		view = a.workbench.ReloadTable(r.Context())
	}
	if req.Name != nil {
		view = a.workbench.SetTableName(*req.Name)
	}
	var firstErr error
	for _, c := range req.Counts {
		var err error
		view, err = a.workbench.SetTableCount(c.Row, c.FA)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		a.writeError(w, firstErr)
		return
	}
	a.writeJSON(w, http.StatusOK, view)
}
