package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrintJob(t *testing.T) {
	job, err := NewPrintJob(DocTypePackingSlip, "disp-1", "DSP-2025-004", "tpl", "ravi")
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, "DSP-2025-004", job.DocumentNumber)

	_, err = NewPrintJob("INVOICE", "x", "", "", "")
	assert.Error(t, err)

	_, err = NewPrintJob(DocTypeGSTChallan, "", "", "", "")
	assert.Error(t, err)

	job, err = NewPrintJob(DocTypeMaterialInward, "mi-9", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "mi-9", job.DocumentNumber, "falls back to reference id")
}

func TestPrintJob_Lifecycle(t *testing.T) {
	job, _ := NewPrintJob(DocTypeCashChallan, "d", "n", "t", "u")

	require.Error(t, job.Complete("p", 1, 1), "cannot complete before rendering")
	require.NoError(t, job.StartRendering())
	require.Error(t, job.Complete("", 1, 1))
	require.NoError(t, job.Complete("2025/01/cash_challan_n.pdf", 2048, 1))
	assert.True(t, job.HasPDF())
	assert.NotNil(t, job.CompletedAt)

	assert.Error(t, job.Fail("late"))
	assert.Error(t, job.StartRendering())
}

func TestPrintJob_FailFromPending(t *testing.T) {
	job, _ := NewPrintJob(DocTypeGSTChallan, "d", "n", "t", "u")
	require.NoError(t, job.Fail("backend down"))
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.False(t, job.HasPDF())
}

func TestDocType(t *testing.T) {
	for _, d := range AllDocTypes() {
		assert.True(t, d.IsValid())
		assert.NotEqual(t, "document", d.FilePrefix())
		assert.NotEqual(t, string(d), d.DisplayName())
	}
	assert.True(t, DocTypeGSTChallan.IsDispatchDocument())
	assert.False(t, DocTypeMaterialOutward.IsDispatchDocument())
}

func TestNewMargins(t *testing.T) {
	m, err := NewMargins(5, 5, 5, 5)
	require.NoError(t, err)
	assert.False(t, m.IsZero())

	_, err = NewMargins(-1, 0, 0, 0)
	assert.Error(t, err)
	_, err = NewMargins(0, 0, 60, 0)
	assert.Error(t, err)
	assert.True(t, Margins{}.IsZero())
}
