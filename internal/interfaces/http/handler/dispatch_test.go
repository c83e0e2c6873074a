package handler

import (
	"mime"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	dispatchapp "github.com/papermill/portal/internal/application/dispatch"
	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/export"
)

func TestDispatchHandler_History(t *testing.T) {
	svc := &mockDispatchService{}
	h := NewDispatchHandler(svc)
	records := []dispatch.Record{{ID: "d1", DispatchNumber: "DSP-001", Status: dispatch.StatusDispatched}}
	svc.On("History", mock.Anything, mock.MatchedBy(func(r dispatchapp.HistoryRequest) bool {
		return r.Status == "dispatched" && r.Search == "TN01"
	})).Return(&dispatchapp.History{
		Page:    shared.Paginate(records, 1, 20),
		Summary: dispatch.Summarize(records),
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/dispatch/history?status=dispatched&search=TN01", "")
	h.History(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	data := resp.Data.(map[string]any)
	assert.Len(t, data["items"], 1)
	assert.Contains(t, data, "summary")
}

func TestDispatchHandler_History_Export(t *testing.T) {
	svc := &mockDispatchService{}
	h := NewDispatchHandler(svc)
	svc.On("ExportHistory", mock.Anything, mock.Anything).Return(export.Table{
		Sheet:   "Dispatches",
		Columns: []export.Column{{Header: "Dispatch No"}, {Header: "Client"}},
		Rows:    [][]any{{"DSP-001", "Shree Packaging"}},
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/dispatch/history?format=csv", "")
	h.History(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename=dispatch_history_`)
	assert.Contains(t, w.Body.String(), "DSP-001,Shree Packaging")
	svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
}

func TestDispatchHandler_History_BadFormat(t *testing.T) {
	h := NewDispatchHandler(&mockDispatchService{})

	c, w := newContext(http.MethodGet, "/api/v1/dispatch/history?format=pdf", "")
	h.History(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchHandler_UpdateStatus(t *testing.T) {
	svc := &mockDispatchService{}
	h := NewDispatchHandler(svc)
	svc.On("UpdateStatus", mock.Anything, "d1", dispatch.StatusDelivered).
		Return(&dispatchapp.Details{Record: dispatch.Record{ID: "d1", Status: dispatch.StatusDelivered}}, nil)
	svc.On("UpdateStatus", mock.Anything, "d2", dispatch.StatusDelivered).
		Return(nil, shared.NewDomainError("INVALID_STATE", "Cancelled dispatches cannot be delivered"))

	c, w := newContext(http.MethodPut, "/api/v1/dispatch/d1/status", `{"status":"delivered"}`)
	c.AddParam("id", "d1")
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodPut, "/api/v1/dispatch/d2/status", `{"status":"delivered"}`)
	c.AddParam("id", "d2")
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Cancelled dispatches cannot be delivered", decode(t, w).Error.Message)
}

func TestDispatchHandler_PDF(t *testing.T) {
	svc := &mockDispatchService{}
	h := NewDispatchHandler(svc)
	svc.On("BackendPDF", mock.Anything, "d1").Return([]byte("%PDF-1.4"), "application/pdf", nil)

	c, w := newContext(http.MethodGet, "/api/v1/dispatch/d1/pdf", "")
	c.AddParam("id", "d1")
	h.PDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=dispatch_d1.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestDispatchHandler_PDF_QuotesFilename(t *testing.T) {
	svc := &mockDispatchService{}
	h := NewDispatchHandler(svc)
	id := `d1"; filename=evil.exe`
	svc.On("BackendPDF", mock.Anything, id).Return([]byte("%PDF-1.4"), "application/pdf", nil)

	c, w := newContext(http.MethodGet, "/api/v1/dispatch/x/pdf", "")
	c.AddParam("id", id)
	h.PDF(c)

	require.Equal(t, http.StatusOK, w.Code)
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "inline", disposition)
	assert.Equal(t, map[string]string{"filename": "dispatch_" + id + ".pdf"}, params)
}
