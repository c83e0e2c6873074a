package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/printing"
)

func TestGetDefaultTemplates_OneDefaultPerDocType(t *testing.T) {
	defaults := map[printing.DocType]int{}
	for _, tmpl := range GetDefaultTemplates() {
		assert.True(t, tmpl.DocType.IsValid(), tmpl.Name)
		assert.True(t, tmpl.PaperSize.IsValid(), tmpl.Name)
		assert.True(t, tmpl.Orientation.IsValid(), tmpl.Name)
		if tmpl.IsDefault {
			defaults[tmpl.DocType]++
		}
	}
	for _, dt := range printing.AllDocTypes() {
		assert.Equal(t, 1, defaults[dt], "default templates for %s", dt)
	}
}

func TestDefaultTemplates_ContentLoads(t *testing.T) {
	for _, tmpl := range GetDefaultTemplates() {
		content, err := LoadTemplateContent(tmpl.FilePath)
		require.NoError(t, err, tmpl.FilePath)
		assert.Contains(t, content, ".Document", tmpl.FilePath)
	}

	_, err := LoadTemplateContent("templates/missing.html")
	assert.Error(t, err)
}

func TestGetDefaultTemplateForDocType(t *testing.T) {
	tmpl := GetDefaultTemplateForDocType(printing.DocTypePackingSlip)
	require.NotNil(t, tmpl)
	assert.Equal(t, printing.PaperSizeA4, tmpl.PaperSize)

	assert.Nil(t, GetDefaultTemplateForDocType("UNKNOWN"))
}
