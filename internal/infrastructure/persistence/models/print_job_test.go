package models

import (
	"testing"
	"time"

	"github.com/papermill/portal/internal/domain/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJobModel_RoundTrip(t *testing.T) {
	job, err := printing.NewPrintJob(printing.DocTypeGSTChallan, "42", "DSP-0042", "tpl-1", "operator")
	require.NoError(t, err)
	require.NoError(t, job.StartRendering())
	require.NoError(t, job.Complete("gst_challan/2025/01/x.pdf", 2048, 2))

	m := PrintJobModelFromDomain(job)
	assert.Equal(t, "GST_CHALLAN", m.DocumentType)
	assert.Equal(t, "COMPLETED", m.Status)

	back := m.ToDomain()
	assert.Equal(t, job.ID, back.ID)
	assert.Equal(t, job.DocumentType, back.DocumentType)
	assert.Equal(t, job.StoragePath, back.StoragePath)
	assert.Equal(t, int64(2048), back.FileSize)
	require.NotNil(t, back.CompletedAt)
	assert.WithinDuration(t, time.Now(), *back.CompletedAt, time.Minute)
	assert.True(t, back.HasPDF())
}

func TestPrintJobModel_TableName(t *testing.T) {
	assert.Equal(t, "print_jobs", PrintJobModel{}.TableName())
	assert.Len(t, AllModels(), 1)
}
