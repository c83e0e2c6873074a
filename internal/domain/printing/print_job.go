package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/papermill/portal/internal/domain/shared"
)

// PrintJob is one entry in the document ledger: a PDF generated for a
// dispatch record or challan.
type PrintJob struct {
	ID             uuid.UUID  `json:"id"`
	DocumentType   DocType    `json:"document_type"`
	ReferenceID    string     `json:"reference_id"`
	DocumentNumber string     `json:"document_number"`
	TemplateID     string     `json:"template_id"`
	Status         JobStatus  `json:"status"`
	StoragePath    string     `json:"storage_path,omitempty"`
	FileSize       int64      `json:"file_size"`
	PageCount      int        `json:"page_count"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// NewPrintJob creates a pending job
func NewPrintJob(docType DocType, referenceID, documentNumber, templateID, createdBy string) (*PrintJob, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Unknown document type: "+string(docType))
	}
	if referenceID == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Reference ID cannot be empty")
	}
	if documentNumber == "" {
		documentNumber = referenceID
	}

	now := time.Now()
	return &PrintJob{
		ID:             uuid.New(),
		DocumentType:   docType,
		ReferenceID:    referenceID,
		DocumentNumber: documentNumber,
		TemplateID:     templateID,
		Status:         JobStatusPending,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// StartRendering marks the job as rendering
func (j *PrintJob) StartRendering() error {
	if !j.Status.CanTransitionTo(JobStatusRendering) {
		return shared.NewDomainError("INVALID_STATE", "Cannot start rendering from status: "+string(j.Status))
	}
	j.Status = JobStatusRendering
	j.UpdatedAt = time.Now()
	return nil
}

// Complete records where the PDF was stored
func (j *PrintJob) Complete(storagePath string, size int64, pages int) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", "Cannot complete from status: "+string(j.Status))
	}
	if storagePath == "" {
		return shared.NewDomainError("INVALID_STORAGE_PATH", "Storage path cannot be empty")
	}
	now := time.Now()
	j.Status = JobStatusCompleted
	j.StoragePath = storagePath
	j.FileSize = size
	j.PageCount = pages
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Fail marks the job as failed
func (j *PrintJob) Fail(message string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Job already finished with status: "+string(j.Status))
	}
	j.Status = JobStatusFailed
	j.ErrorMessage = message
	j.UpdatedAt = time.Now()
	return nil
}

// HasPDF returns true if a stored PDF is available
func (j *PrintJob) HasPDF() bool {
	return j.Status == JobStatusCompleted && j.StoragePath != ""
}
