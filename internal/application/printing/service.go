package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	infra "github.com/papermill/portal/internal/infrastructure/printing"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// DataLoader loads the data a document is rendered from
type DataLoader interface {
	LoadData(ctx context.Context, docType printing.DocType, referenceID string) (*infra.DocumentData, error)
}

// TemplateSource resolves print templates
type TemplateSource interface {
	Resolve(docType printing.DocType, id string) (*infra.StaticTemplate, error)
	GetAll() []infra.StaticTemplate
	GetByDocType(docType printing.DocType) []infra.StaticTemplate
}

// RenderRecorder receives one observation per PDF generation attempt
type RenderRecorder interface {
	RecordDocumentRendered(ctx context.Context, docType string, d time.Duration, err error)
}

// Config tunes the document service
type Config struct {
	RenderTimeout time.Duration
	Retention     time.Duration
	LinkTTL       time.Duration
}

// DocumentService renders documents to HTML and PDF and keeps the ledger
// of generated PDFs
type DocumentService struct {
	loader    DataLoader
	templates TemplateSource
	engine    *infra.TemplateEngine
	renderer  infra.PDFRenderer
	storage   infra.PDFStorage
	jobs      printing.PrintJobRepository
	recorder  RenderRecorder
	config    Config
	logger    *zap.Logger
}

// Option configures a DocumentService
type Option func(*DocumentService)

// WithRecorder reports render outcomes to r
func WithRecorder(r RenderRecorder) Option {
	return func(s *DocumentService) { s.recorder = r }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *DocumentService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	loader DataLoader,
	templates TemplateSource,
	engine *infra.TemplateEngine,
	renderer infra.PDFRenderer,
	storage infra.PDFStorage,
	jobs printing.PrintJobRepository,
	cfg Config,
	opts ...Option,
) *DocumentService {
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = 15 * time.Minute
	}
	s := &DocumentService{
		loader:    loader,
		templates: templates,
		engine:    engine,
		renderer:  renderer,
		storage:   storage,
		jobs:      jobs,
		config:    cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func parseDocType(raw string) (printing.DocType, error) {
	dt := printing.DocType(raw)
	if !dt.IsValid() {
		return "", shared.InvalidInput("Invalid document type: " + raw)
	}
	return dt, nil
}

// prepared is a document rendered to HTML
type prepared struct {
	docType  printing.DocType
	template *infra.StaticTemplate
	data     *infra.DocumentData
	html     string
}

func (s *DocumentService) prepare(ctx context.Context, rawType, referenceID, templateID string) (*prepared, error) {
	docType, err := parseDocType(rawType)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.templates.Resolve(docType, templateID)
	if err != nil {
		return nil, toDomainError(err)
	}
	data, err := s.loader.LoadData(ctx, docType, referenceID)
	if err != nil {
		return nil, toDomainError(err)
	}
	html, err := s.engine.Render(tmpl, data)
	if err != nil {
		return nil, toDomainError(err)
	}
	return &prepared{docType: docType, template: tmpl, data: data, html: html}, nil
}

// Preview renders the document to HTML without creating a ledger entry
func (s *DocumentService) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "preview",
		telemetry.AttrDocType, req.DocumentType, telemetry.AttrReferenceID, req.ReferenceID)
	defer span.End()

	p, err := s.prepare(ctx, req.DocumentType, req.ReferenceID, req.TemplateID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &PreviewResponse{
		HTML:           p.html,
		TemplateID:     p.template.ID,
		DocumentNumber: p.data.Meta.DocNo,
		PaperSize:      string(p.template.PaperSize),
		Orientation:    string(p.template.Orientation),
		Margins:        toMarginsDTO(p.template.Margins),
	}, nil
}

// Generate renders the document to PDF, stores it and records the job.
// A failed render leaves a FAILED ledger entry behind.
func (s *DocumentService) Generate(ctx context.Context, req GenerateRequest, createdBy string) (*GenerateResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "generate",
		telemetry.AttrDocType, req.DocumentType, telemetry.AttrReferenceID, req.ReferenceID)
	defer span.End()

	if req.Reuse {
		if res, err := s.reuse(ctx, req); err != nil || res != nil {
			return res, err
		}
	}

	p, err := s.prepare(ctx, req.DocumentType, req.ReferenceID, req.TemplateID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.AttrTemplateID, p.template.ID)

	job, err := printing.NewPrintJob(p.docType, req.ReferenceID, p.data.Meta.DocNo, p.template.ID, createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save print job: %w", err)
	}
	if err := job.StartRendering(); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	start := time.Now()
	pdf, pages, err := s.renderAndStore(ctx, p, job)
	if s.recorder != nil {
		s.recorder.RecordDocumentRendered(ctx, string(p.docType), time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("PDF generated",
		zap.String("job_id", job.ID.String()),
		zap.String("doc_type", string(p.docType)),
		zap.String("document_number", job.DocumentNumber),
		zap.Int("pages", pages),
	)
	return &GenerateResult{Job: toJobResponse(job), PDF: pdf}, nil
}

func (s *DocumentService) renderAndStore(ctx context.Context, p *prepared, job *printing.PrintJob) ([]byte, int, error) {
	fail := func(msg string, cause error) ([]byte, int, error) {
		s.logger.Error(msg, zap.Error(cause), zap.String("job_id", job.ID.String()))
		_ = job.Fail(msg)
		// the caller may have gone away; the ledger entry must still be written
		if err := s.jobs.Save(context.WithoutCancel(ctx), job); err != nil {
			s.logger.Error("failed to record job failure", zap.Error(err), zap.String("job_id", job.ID.String()))
		}
		return nil, 0, toDomainError(cause)
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        p.html,
		PaperSize:   p.template.PaperSize,
		Orientation: p.template.Orientation,
		Margins:     p.template.Margins,
		Title:       fmt.Sprintf("%s - %s", p.docType.DisplayName(), job.DocumentNumber),
		Timeout:     s.config.RenderTimeout,
	})
	if err != nil {
		return fail("PDF generation failed", err)
	}

	stored, err := s.storage.Store(ctx, &infra.StoreRequest{
		DocType: p.docType,
		JobID:   job.ID,
		PDFData: result.PDFData,
		At:      job.CreatedAt,
	})
	if err != nil {
		return fail("Failed to save PDF file", err)
	}

	if err := job.Complete(stored.Path, stored.Size, result.PageCount); err != nil {
		return nil, 0, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, 0, fmt.Errorf("failed to update job status: %w", err)
	}
	return result.PDFData, result.PageCount, nil
}

// reuse returns the latest completed PDF for the document, or nil when
// there is none or its file is gone
func (s *DocumentService) reuse(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	docType, err := parseDocType(req.DocumentType)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.FindLatestCompleted(ctx, docType, req.ReferenceID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up previous job: %w", err)
	}
	if req.TemplateID != "" && job.TemplateID != req.TemplateID {
		return nil, nil
	}
	pdf, err := s.readPDF(ctx, job)
	if errors.Is(err, infra.ErrPDFNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &GenerateResult{Job: toJobResponse(job), PDF: pdf, Reused: true}, nil
}

func (s *DocumentService) readPDF(ctx context.Context, job *printing.PrintJob) ([]byte, error) {
	rc, err := s.storage.Get(ctx, job.StoragePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("failed to read stored PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *DocumentService) findJob(ctx context.Context, rawID string) (*printing.PrintJob, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, shared.InvalidInput("Invalid print job id")
	}
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a ledger entry by ID
func (s *DocumentService) GetJob(ctx context.Context, id string) (*PrintJobResponse, error) {
	job, err := s.findJob(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toJobResponse(job)
	return &resp, nil
}

// ListJobs retrieves a page of the ledger
func (s *DocumentService) ListJobs(ctx context.Context, req ListJobsRequest) (*ListJobsResponse, error) {
	filter := printing.JobFilter{
		ReferenceID: req.ReferenceID,
		OrderBy:     req.OrderBy,
		OrderDir:    req.OrderDir,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.DocumentType != "" {
		dt, err := parseDocType(req.DocumentType)
		if err != nil {
			return nil, err
		}
		filter.DocumentType = dt
	}
	if req.Status != "" {
		st := printing.JobStatus(req.Status)
		if !st.IsValid() {
			return nil, shared.InvalidInput("Invalid job status: " + req.Status)
		}
		filter.Status = st
	}

	jobs, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, toDomainError(err)
	}

	norm := shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize()
	items := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		items[i] = toJobResponse(&jobs[i])
	}
	return &ListJobsResponse{Items: items, Total: total, Page: norm.Page, Size: norm.PageSize}, nil
}

// OpenPDF opens the stored PDF of a completed job
func (s *DocumentService) OpenPDF(ctx context.Context, id string) (io.ReadCloser, *PrintJobResponse, error) {
	job, err := s.findJob(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !job.HasPDF() {
		return nil, nil, shared.NewDomainError("INVALID_STATE", "Print job has no PDF: status "+string(job.Status))
	}
	rc, err := s.storage.Get(ctx, job.StoragePath)
	if err != nil {
		if errors.Is(err, infra.ErrPDFNotFound) {
			return nil, nil, shared.NewDomainError("NOT_FOUND", "The PDF for this job has expired")
		}
		return nil, nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	resp := toJobResponse(job)
	return rc, &resp, nil
}

// DownloadURL returns a direct link to the PDF when the storage can sign
// one. ok is false for storages that only stream through the portal.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (url string, ok bool, err error) {
	signer, canSign := s.storage.(infra.URLSigner)
	if !canSign {
		return "", false, nil
	}
	job, err := s.findJob(ctx, id)
	if err != nil {
		return "", false, err
	}
	if !job.HasPDF() {
		return "", false, shared.NewDomainError("INVALID_STATE", "Print job has no PDF: status "+string(job.Status))
	}
	url, err = signer.DownloadURL(ctx, job.StoragePath, s.config.LinkTTL)
	if err != nil {
		return "", false, fmt.Errorf("failed to sign download link: %w", err)
	}
	return url, true, nil
}

// ListTemplates returns the templates for docType, or all when empty
func (s *DocumentService) ListTemplates(docType string) ([]TemplateResponse, error) {
	var templates []infra.StaticTemplate
	if docType == "" {
		templates = s.templates.GetAll()
	} else {
		dt, err := parseDocType(docType)
		if err != nil {
			return nil, err
		}
		templates = s.templates.GetByDocType(dt)
	}

	out := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = TemplateResponse{
			ID:           t.ID,
			DocumentType: string(t.DocType),
			Name:         t.Name,
			Description:  t.Description,
			PaperSize:    string(t.PaperSize),
			Orientation:  string(t.Orientation),
			Margins:      toMarginsDTO(t.Margins),
			IsDefault:    t.IsDefault,
			Source:       t.Source,
		}
	}
	return out, nil
}

// GetDocumentTypes returns all available document types
func (s *DocumentService) GetDocumentTypes() []DocumentTypeResponse {
	docTypes := printing.AllDocTypes()
	result := make([]DocumentTypeResponse, len(docTypes))
	for i, dt := range docTypes {
		result[i] = DocumentTypeResponse{Code: string(dt), DisplayName: dt.DisplayName()}
	}
	return result
}

// Cleanup removes ledger entries and PDFs older than the retention period.
// A zero retention keeps everything.
func (s *DocumentService) Cleanup(ctx context.Context, now time.Time) (*CleanupResult, error) {
	res := &CleanupResult{}
	if s.config.Retention <= 0 {
		return res, nil
	}

	deleted, err := s.jobs.DeleteOlderThan(ctx, now.Add(-s.config.Retention))
	if err != nil {
		return nil, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	res.JobsDeleted = len(deleted)
	for _, job := range deleted {
		if job.StoragePath == "" {
			continue
		}
		if err := s.storage.Delete(ctx, job.StoragePath); err != nil {
			s.logger.Warn("failed to delete PDF", zap.String("path", job.StoragePath), zap.Error(err))
			continue
		}
		res.FilesDeleted++
	}

	// files whose ledger rows were lost
	orphans, err := s.storage.CleanupOlderThan(ctx, s.config.Retention)
	if err != nil {
		return nil, fmt.Errorf("failed to clean storage: %w", err)
	}
	res.FilesDeleted += orphans

	s.logger.Info("document retention cleanup",
		zap.Int("jobs_deleted", res.JobsDeleted),
		zap.Int("files_deleted", res.FilesDeleted),
	)
	return res, nil
}

// RunCleanup runs Cleanup every interval until ctx is done
func (s *DocumentService) RunCleanup(ctx context.Context, interval time.Duration) {
	if s.config.Retention <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.Cleanup(ctx, now); err != nil {
				s.logger.Error("document cleanup failed", zap.Error(err))
			}
		}
	}
}

// toDomainError converts render and backend errors for the HTTP layer
func toDomainError(err error) error {
	var renderErr *infra.RenderError
	if errors.As(err, &renderErr) {
		switch renderErr.Code {
		case infra.ErrCodeTemplateNotFound:
			return shared.WrapDomainError("NOT_FOUND", renderErr.Message, err)
		case infra.ErrCodeInvalidHTML, infra.ErrCodeInvalidPaperSize:
			return shared.WrapDomainError("INVALID_TEMPLATE", renderErr.Message, err)
		case infra.ErrCodeRenderTimeout:
			return shared.WrapDomainError("RENDER_TIMEOUT", "Rendering the PDF took too long, please try again", err)
		default:
			return shared.WrapDomainError("RENDER_FAILED", renderErr.Message, err)
		}
	}
	return backend.ToDomainError(err)
}
