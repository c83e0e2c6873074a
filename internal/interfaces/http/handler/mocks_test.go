package handler

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/stretchr/testify/mock"

	dispatchapp "github.com/papermill/portal/internal/application/dispatch"
	printingapp "github.com/papermill/portal/internal/application/printing"
	reportapp "github.com/papermill/portal/internal/application/report"
	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/infrastructure/auth"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/export"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, username, password string) (*backend.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if r := args.Get(0); r != nil {
		return r.(*backend.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Issue(user auth.SessionUser, backendToken string) (*auth.Session, error) {
	args := m.Called(user, backendToken)
	if s := args.Get(0); s != nil {
		return s.(*auth.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) Revoke(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *mockSessions) Expiration() time.Duration { return 8 * time.Hour }

type mockDispatchService struct {
	mock.Mock
}

func (m *mockDispatchService) History(ctx context.Context, req dispatchapp.HistoryRequest) (*dispatchapp.History, error) {
	args := m.Called(ctx, req)
	if h := args.Get(0); h != nil {
		return h.(*dispatchapp.History), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDispatchService) ExportHistory(ctx context.Context, req dispatchapp.HistoryRequest) (export.Table, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(export.Table), args.Error(1)
}

func (m *mockDispatchService) Details(ctx context.Context, id string) (*dispatchapp.Details, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*dispatchapp.Details), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDispatchService) UpdateStatus(ctx context.Context, id string, status dispatch.Status) (*dispatchapp.Details, error) {
	args := m.Called(ctx, id, status)
	if d := args.Get(0); d != nil {
		return d.(*dispatchapp.Details), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDispatchService) BackendPDF(ctx context.Context, id string) ([]byte, string, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *mockDispatchService) Candidates(ctx context.Context, clientID string) (*dispatchapp.Candidates, error) {
	args := m.Called(ctx, clientID)
	if c := args.Get(0); c != nil {
		return c.(*dispatchapp.Candidates), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDispatchService) Create(ctx context.Context, form dispatch.CreateForm, createdBy string) (*dispatch.Record, error) {
	args := m.Called(ctx, form, createdBy)
	if r := args.Get(0); r != nil {
		return r.(*dispatch.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) CutRolls(ctx context.Context, req reportapp.CutRollsRequest) (*reportapp.CutRollsReport, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*reportapp.CutRollsReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportService) PendingOrders(ctx context.Context, req reportapp.PendingOrdersRequest) (*reportapp.PendingOrdersReport, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*reportapp.PendingOrdersReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportService) ClientOrderSummary(ctx context.Context, from, to string) (*reportapp.ClientSummaryReport, error) {
	args := m.Called(ctx, from, to)
	if r := args.Get(0); r != nil {
		return r.(*reportapp.ClientSummaryReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportService) Export(ctx context.Context, name string, q url.Values) (export.Table, error) {
	args := m.Called(ctx, name, q)
	return args.Get(0).(export.Table), args.Error(1)
}

type mockDocumentService struct {
	mock.Mock
}

func (m *mockDocumentService) Preview(ctx context.Context, req printingapp.PreviewRequest) (*printingapp.PreviewResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*printingapp.PreviewResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) Generate(ctx context.Context, req printingapp.GenerateRequest, createdBy string) (*printingapp.GenerateResult, error) {
	args := m.Called(ctx, req, createdBy)
	if r := args.Get(0); r != nil {
		return r.(*printingapp.GenerateResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) GetJob(ctx context.Context, id string) (*printingapp.PrintJobResponse, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*printingapp.PrintJobResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) ListJobs(ctx context.Context, req printingapp.ListJobsRequest) (*printingapp.ListJobsResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*printingapp.ListJobsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentService) OpenPDF(ctx context.Context, id string) (io.ReadCloser, *printingapp.PrintJobResponse, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	job, _ := args.Get(1).(*printingapp.PrintJobResponse)
	return rc, job, args.Error(2)
}

func (m *mockDocumentService) DownloadURL(ctx context.Context, id string) (string, bool, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockDocumentService) ListTemplates(docType string) ([]printingapp.TemplateResponse, error) {
	args := m.Called(docType)
	list, _ := args.Get(0).([]printingapp.TemplateResponse)
	return list, args.Error(1)
}

func (m *mockDocumentService) GetDocumentTypes() []printingapp.DocumentTypeResponse {
	return []printingapp.DocumentTypeResponse{
		{Code: "PACKING_SLIP", DisplayName: "Packing Slip"},
		{Code: "MATERIAL_INWARD", DisplayName: "Material Inward Challan"},
	}
}
