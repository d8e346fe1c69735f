package ui

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rolstat/adapters/excel"
	"rolstat/adapters/gochart"
	"rolstat/adapters/memory"
	"rolstat/app"
	"rolstat/domain/core"
	"rolstat/domain/rol"
	"rolstat/internal/errors"
	"rolstat/internal/events"
	"rolstat/internal/storage"
	"rolstat/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	hub := events.NewHub(nil)
	store := memory.NewStore(hub)
	charts := app.NewChartSurface(storage.NewBridge(store, core.NewOrigin(), nil), gochart.NewRenderer(200, 150, nil), nil)
	sub := charts.Subscribe(hub)
	t.Cleanup(sub.Close)

	a, err := NewApp(Deps{
		Workbench: app.NewWorkbench(3, 2, storage.NewBridge(store, core.NewOrigin(), nil), nil),
		Charts:    charts,
		Importer:  excel.NewDataReader(nil),
		Hub:       hub,
	})
	require.NoError(t, err)
	return a
}

func do(t *testing.T, a *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestApplyFlow(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodPut, "/api/raw", rawRequest{Values: []string{"3", "1,5", "2"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{Mode: "numeric"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[app.ApplyResult](t, rec)
	assert.Equal(t, []string{"1,5", "2", "3"}, res.Sorted)
	assert.True(t, res.Persisted)

	rec = do(t, a, http.MethodGet, "/api/rol", nil)
	assert.Equal(t, rolResponse{Generated: true, Values: res.Sorted}, decode[rolResponse](t, rec))

	rec = do(t, a, http.MethodGet, "/api/rol/frequencies", nil)
	freq := decode[frequenciesResponse](t, rec)
	assert.Equal(t, 3, freq.Total)
	assert.Equal(t, "33.33%", freq.Rows[0].FR)
	assert.Equal(t, "100.00%", freq.Rows[2].FRA)
}

func TestApplyErrors(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{Mode: "numeric"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.CodeEmptyInput, decode[errorResponse](t, rec).Code)

	do(t, a, http.MethodPut, "/api/raw", rawRequest{Values: []string{"b", "1"}})
	rec = do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{Mode: "numeric"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, errors.CodeNonNumeric, body.Code)
	assert.Equal(t, []string{"b"}, body.Values)

	rec = do(t, a, http.MethodGet, "/api/rol", nil)
	assert.False(t, decode[rolResponse](t, rec).Generated, "declined fallback persists nothing")

	rec = do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{Mode: "numeric", ConfirmFallback: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1", "b"}, decode[app.ApplyResult](t, rec).Sorted)

	rec = do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{Mode: "shuffle"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, a, http.MethodPost, "/api/rol/apply", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRawCell(t *testing.T) {
	a := newTestApp(t)
	rec := do(t, a, http.MethodPut, "/api/raw/2/1", cellRequest{Value: "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x", decode[rawResponse](t, rec).Raw[2][1])

	rec = do(t, a, http.MethodPut, "/api/raw/3/0", cellRequest{Value: "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestImportCSV(t *testing.T) {
	a := newTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "dados.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("a,b\nc,d\ne,f\ng\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/raw/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[rawResponse](t, rec)
	assert.Equal(t, 1, res.Overflow)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}, res.Raw)
}

func TestClearAndExport(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/api/rol/export.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(t, a, http.MethodPut, "/api/raw", rawRequest{Values: []string{"x", "y", "x"}})
	require.Equal(t, http.StatusOK, do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{}).Code)

	rec = do(t, a, http.MethodGet, "/api/rol/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(excel.SheetTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "2", "2", "66.67%", "66.67%"}, rows[2])

	rec = do(t, a, http.MethodDelete, "/api/rol", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, decode[rolResponse](t, do(t, a, http.MethodGet, "/api/rol", nil)).Generated)
}

func TestFreqTable(t *testing.T) {
	a := newTestApp(t)
	do(t, a, http.MethodPut, "/api/raw", rawRequest{Values: []string{"b", "a"}})

	name := "Notas"
	rec := do(t, a, http.MethodPut, "/api/freq-table", freqTableRequest{
		Reload: true,
		Name:   &name,
		Counts: []countInput{{Row: 0, FA: "1"}, {Row: 1, FA: "3"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[app.FreqTableView](t, rec)
	assert.Equal(t, "Notas", view.Name)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, rol.RowCells{Label: "a", FA: "3", FAA: "4", FR: "75.00%", FRA: "100.00%"}, view.Rows[1])

	rec = do(t, a, http.MethodPut, "/api/freq-table", freqTableRequest{Counts: []countInput{{Row: 0, FA: "x"}}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	view = decode[app.FreqTableView](t, do(t, a, http.MethodGet, "/api/freq-table", nil))
	assert.Empty(t, view.Rows[0].FA)
}

func TestChartsEndpoints(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusNoContent, do(t, a, http.MethodGet, "/api/charts", nil).Code)
	rec := do(t, a, http.MethodPost, "/api/charts/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[app.ChartView](t, rec).Loaded)
	assert.Equal(t, http.StatusNoContent, do(t, a, http.MethodGet, "/api/charts", nil).Code)

	do(t, a, http.MethodPut, "/api/raw", rawRequest{Values: []string{"2", "1", "2"}})
	require.Equal(t, http.StatusOK, do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{}).Code)

	rec = do(t, a, http.MethodGet, "/api/charts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[app.ChartView](t, rec)
	assert.Equal(t, []string{"1", "2"}, view.Data.Labels)
	assert.Len(t, view.Charts, 4)

	rec = do(t, a, http.MethodGet, "/api/charts/pie.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusNotFound, do(t, a, http.MethodGet, "/api/charts/radar.png", nil).Code)
}

func TestPages(t *testing.T) {
	a := newTestApp(t)
	for path, want := range map[string]string{
		"/":              "Dados Brutos",
		"/charts":        "Carregar gráficos",
		"/help":          "<table>",
		"/static/app.js": "X-Rol-Origin",
	} {
		rec := do(t, a, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}
}

func TestEventsStreamRejectsBadOrigin(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/events?origin=%20%20", nil).WithContext(context.Background())
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "origin cannot be empty"))
}

func TestRequestOriginAttributesWrites(t *testing.T) {
	a := newTestApp(t)
	tab := core.NewOrigin()
	var own, others []string
	a.hub.Subscribe(tab, func(ev ports.ChangeEvent) { own = append(own, ev.Key) })
	a.hub.Subscribe(core.NewOrigin(), func(ev ports.ChangeEvent) { others = append(others, ev.Key) })

	send := func(method, path string, body any) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(events.OriginHeader, tab.String())
		rec := httptest.NewRecorder()
		a.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send(http.MethodPut, "/api/raw", rawRequest{Values: []string{"2", "1"}}).Code)
	rec := send(http.MethodPost, "/api/rol/apply", applyRequest{Mode: "numeric"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Empty(t, own, "the page that wrote must not be notified of its own change")
	assert.Equal(t, []string{storage.KeyGenerated, storage.KeyValues}, others)
}

func TestRequestOriginRejectsBlankHeader(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/rol", nil)
	req.Header.Set(events.OriginHeader, "   ")
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeValidationError, decode[errorResponse](t, rec).Code)
}

func TestExportFailureSendsNoWorkbook(t *testing.T) {
	a := newTestApp(t)
	a.writeWorkbook = func(w io.Writer, _ string, _ []rol.RowCells, _ []string) error {
		_, _ = w.Write([]byte("PK\x03\x04partial"))
		return stderrors.New("disk full")
	}

	do(t, a, http.MethodPut, "/api/raw", rawRequest{Values: []string{"1"}})
	require.Equal(t, http.StatusOK, do(t, a, http.MethodPost, "/api/rol/apply", applyRequest{}).Code)

	rec := do(t, a, http.MethodGet, "/api/rol/export.xlsx", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.NotContains(t, rec.Body.String(), "partial")
	assert.Equal(t, errors.CodeInternalError, decode[errorResponse](t, rec).Code)
}
