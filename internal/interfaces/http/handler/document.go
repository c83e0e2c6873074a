package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	printingapp "github.com/papermill/portal/internal/application/printing"
)

// DocumentService is what the document endpoints need
type DocumentService interface {
	Preview(ctx context.Context, req printingapp.PreviewRequest) (*printingapp.PreviewResponse, error)
	Generate(ctx context.Context, req printingapp.GenerateRequest, createdBy string) (*printingapp.GenerateResult, error)
	GetJob(ctx context.Context, id string) (*printingapp.PrintJobResponse, error)
	ListJobs(ctx context.Context, req printingapp.ListJobsRequest) (*printingapp.ListJobsResponse, error)
	OpenPDF(ctx context.Context, id string) (io.ReadCloser, *printingapp.PrintJobResponse, error)
	DownloadURL(ctx context.Context, id string) (string, bool, error)
	ListTemplates(docType string) ([]printingapp.TemplateResponse, error)
	GetDocumentTypes() []printingapp.DocumentTypeResponse
}

// DocumentHandler handles challan, packing slip and summary documents
type DocumentHandler struct {
	BaseHandler
	documents DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Types handles GET /api/v1/documents/types
func (h *DocumentHandler) Types(c *gin.Context) {
	h.Success(c, h.documents.GetDocumentTypes())
}

// Templates handles GET /api/v1/documents/templates?document_type=
func (h *DocumentHandler) Templates(c *gin.Context) {
	templates, err := h.documents.ListTemplates(c.Query("document_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, templates)
}

// Preview handles POST /api/v1/documents/preview
func (h *DocumentHandler) Preview(c *gin.Context) {
	var req printingapp.PreviewRequest
	if !h.Bind(c, &req) {
		return
	}
	preview, err := h.documents.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// PreviewHTML handles GET /api/v1/documents/preview, answering with the
// rendered page itself so it can be framed
func (h *DocumentHandler) PreviewHTML(c *gin.Context) {
	var req printingapp.PreviewRequest
	if !h.BindQuery(c, &req) {
		return
	}
	preview, err := h.documents.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(preview.HTML))
}

// Generate handles POST /api/v1/documents/generate. The PDF is returned
// inline; the ledger entry is named in the response headers.
func (h *DocumentHandler) Generate(c *gin.Context) {
	var req printingapp.GenerateRequest
	if !h.Bind(c, &req) {
		return
	}
	res, err := h.documents.Generate(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("X-Print-Job-ID", res.Job.ID)
	c.Header("X-Document-Reused", strconv.FormatBool(res.Reused))
	c.Header("Content-Disposition", contentDisposition("inline", pdfName(res.Job)))
	c.Data(http.StatusCreated, "application/pdf", res.PDF)
}

// ListJobs handles GET /api/v1/documents/jobs
func (h *DocumentHandler) ListJobs(c *gin.Context) {
	var req printingapp.ListJobsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	res, err := h.documents.ListJobs(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, res.Items, res.Total, res.Page, res.Size)
}

// GetJob handles GET /api/v1/documents/jobs/:id
func (h *DocumentHandler) GetJob(c *gin.Context) {
	job, err := h.documents.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Download handles GET /api/v1/documents/jobs/:id/download. Storage that
// can sign links is redirected to; otherwise the PDF streams through.
func (h *DocumentHandler) Download(c *gin.Context) {
	id := c.Param("id")
	if link, ok, err := h.documents.DownloadURL(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	} else if ok {
		c.Redirect(http.StatusTemporaryRedirect, link)
		return
	}

	rc, job, err := h.documents.OpenPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer rc.Close()
	size := job.FileSize
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, "application/pdf", rc, map[string]string{
		"Content-Disposition": contentDisposition("attachment", pdfName(*job)),
	})
}

func pdfName(job printingapp.PrintJobResponse) string {
	name := job.DocumentNumber
	if name == "" {
		name = job.ReferenceID
	}
	return job.DocumentType + "_" + sanitizeFilename(name) + ".pdf"
}

// sanitizeFilename keeps header-safe characters only
func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
