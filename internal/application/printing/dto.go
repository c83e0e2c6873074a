package printing

import (
	"time"

	"github.com/papermill/portal/internal/domain/printing"
)

// PreviewRequest selects the document to preview
type PreviewRequest struct {
	DocumentType string `json:"document_type" form:"document_type" binding:"required"`
	ReferenceID  string `json:"reference_id" form:"reference_id" binding:"required"`
	TemplateID   string `json:"template_id" form:"template_id"`
}

// GenerateRequest selects the document to render to PDF
type GenerateRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
	ReferenceID  string `json:"reference_id" binding:"required"`
	TemplateID   string `json:"template_id"`
	// Reuse returns the latest completed PDF for the same document instead
	// of rendering again
	Reuse bool `json:"reuse"`
}

// MarginsDTO represents page margins in millimeters
type MarginsDTO struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// PreviewResponse is rendered HTML plus the page setup it will print with
type PreviewResponse struct {
	HTML           string     `json:"html"`
	TemplateID     string     `json:"template_id"`
	DocumentNumber string     `json:"document_number"`
	PaperSize      string     `json:"paper_size"`
	Orientation    string     `json:"orientation"`
	Margins        MarginsDTO `json:"margins"`
}

// PrintJobResponse represents a ledger entry in API responses
type PrintJobResponse struct {
	ID             string     `json:"id"`
	DocumentType   string     `json:"document_type"`
	DocumentName   string     `json:"document_name"`
	ReferenceID    string     `json:"reference_id"`
	DocumentNumber string     `json:"document_number"`
	TemplateID     string     `json:"template_id"`
	Status         string     `json:"status"`
	FileSize       int64      `json:"file_size"`
	PageCount      int        `json:"page_count"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Downloadable   bool       `json:"downloadable"`
}

// GenerateResult is a finished job and its PDF bytes
type GenerateResult struct {
	Job    PrintJobResponse
	PDF    []byte
	Reused bool
}

// ListJobsRequest holds ledger list parameters
type ListJobsRequest struct {
	DocumentType string `form:"document_type"`
	ReferenceID  string `form:"reference_id"`
	Status       string `form:"status"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir"`
}

// ListJobsResponse is one page of the ledger
type ListJobsResponse struct {
	Items []PrintJobResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"page_size"`
}

// TemplateResponse describes an available print template
type TemplateResponse struct {
	ID           string     `json:"id"`
	DocumentType string     `json:"document_type"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	PaperSize    string     `json:"paper_size"`
	Orientation  string     `json:"orientation"`
	Margins      MarginsDTO `json:"margins"`
	IsDefault    bool       `json:"is_default"`
	Source       string     `json:"source"`
}

// DocumentTypeResponse represents a document type option
type DocumentTypeResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

// CleanupResult reports what retention cleanup removed
type CleanupResult struct {
	JobsDeleted  int `json:"jobs_deleted"`
	FilesDeleted int `json:"files_deleted"`
}

func toJobResponse(j *printing.PrintJob) PrintJobResponse {
	return PrintJobResponse{
		ID:             j.ID.String(),
		DocumentType:   string(j.DocumentType),
		DocumentName:   j.DocumentType.DisplayName(),
		ReferenceID:    j.ReferenceID,
		DocumentNumber: j.DocumentNumber,
		TemplateID:     j.TemplateID,
		Status:         string(j.Status),
		FileSize:       j.FileSize,
		PageCount:      j.PageCount,
		ErrorMessage:   j.ErrorMessage,
		CreatedBy:      j.CreatedBy,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		CompletedAt:    j.CompletedAt,
		Downloadable:   j.HasPDF(),
	}
}

func toMarginsDTO(m printing.Margins) MarginsDTO {
	return MarginsDTO{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}
