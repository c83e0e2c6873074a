package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/papermill/portal/internal/domain/printing"
)

// PrintJobModel is the persistence model for one generated document
type PrintJobModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentType   string    `gorm:"type:varchar(40);not null;index:idx_print_jobs_ref,priority:1"`
	ReferenceID    string    `gorm:"type:varchar(100);not null;index:idx_print_jobs_ref,priority:2"`
	DocumentNumber string    `gorm:"type:varchar(100);not null"`
	TemplateID     string    `gorm:"type:varchar(100)"`
	Status         string    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	StoragePath    string    `gorm:"type:varchar(500)"`
	FileSize       int64     `gorm:"not null;default:0"`
	PageCount      int       `gorm:"not null;default:0"`
	ErrorMessage   string    `gorm:"type:text"`
	CreatedBy      string    `gorm:"type:varchar(100)"`
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
	CompletedAt    *time.Time
}

// TableName returns the table name for GORM
func (PrintJobModel) TableName() string {
	return "print_jobs"
}

// ToDomain converts the persistence model to a domain PrintJob
func (m *PrintJobModel) ToDomain() *printing.PrintJob {
	return &printing.PrintJob{
		ID:             m.ID,
		DocumentType:   printing.DocType(m.DocumentType),
		ReferenceID:    m.ReferenceID,
		DocumentNumber: m.DocumentNumber,
		TemplateID:     m.TemplateID,
		Status:         printing.JobStatus(m.Status),
		StoragePath:    m.StoragePath,
		FileSize:       m.FileSize,
		PageCount:      m.PageCount,
		ErrorMessage:   m.ErrorMessage,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		CompletedAt:    m.CompletedAt,
	}
}

// FromDomain populates the model from a domain PrintJob
func (m *PrintJobModel) FromDomain(j *printing.PrintJob) {
	m.ID = j.ID
	m.DocumentType = string(j.DocumentType)
	m.ReferenceID = j.ReferenceID
	m.DocumentNumber = j.DocumentNumber
	m.TemplateID = j.TemplateID
	m.Status = string(j.Status)
	m.StoragePath = j.StoragePath
	m.FileSize = j.FileSize
	m.PageCount = j.PageCount
	m.ErrorMessage = j.ErrorMessage
	m.CreatedBy = j.CreatedBy
	m.CreatedAt = j.CreatedAt
	m.UpdatedAt = j.UpdatedAt
	m.CompletedAt = j.CompletedAt
}

// PrintJobModelFromDomain creates a model from a domain PrintJob
func PrintJobModelFromDomain(j *printing.PrintJob) *PrintJobModel {
	m := &PrintJobModel{}
	m.FromDomain(j)
	return m
}

// AllModels lists every model managed by AutoMigrate
func AllModels() []any {
	return []any{&PrintJobModel{}}
}
