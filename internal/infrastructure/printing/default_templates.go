package printing

import (
	"embed"
	"fmt"

	"github.com/papermill/portal/internal/domain/printing"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate describes a template compiled into the binary
type DefaultTemplate struct {
	DocType     printing.DocType
	Name        string
	Description string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	Margins     printing.Margins
	FilePath    string // path within templateFS
	IsDefault   bool
}

// GetDefaultTemplates returns all embedded template configurations
func GetDefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		{
			DocType:     printing.DocTypePackingSlip,
			Name:        "Packing Slip - A4",
			Description: "Rolls grouped by order and paper with subtotals and vehicle details",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/packing_slip_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypePackingSlip,
			Name:        "Packing Slip - A5 landscape",
			Description: "Compact packing slip for small dispatches",
			PaperSize:   printing.PaperSizeA5,
			Orientation: printing.OrientationLandscape,
			Margins:     printing.Margins{Top: 6, Right: 6, Bottom: 6, Left: 6},
			FilePath:    "templates/packing_slip_a5.html",
		},
		{
			DocType:     printing.DocTypeCashChallan,
			Name:        "Cash Challan - A4",
			Description: "Priced delivery challan without tax",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/cash_challan_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypeGSTChallan,
			Name:        "GST Challan - A4",
			Description: "Tax invoice with CGST/SGST or IGST split and round-off",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/gst_challan_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypeMaterialInward,
			Name:        "Material Inward - A5",
			Description: "Goods received note for raw material",
			PaperSize:   printing.PaperSizeA5,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/material_challan_a5.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypeMaterialOutward,
			Name:        "Material Outward - A5",
			Description: "Gate pass for material leaving the mill",
			PaperSize:   printing.PaperSizeA5,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/material_challan_a5.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypeDispatchSummary,
			Name:        "Dispatch Register - A4 landscape",
			Description: "All dispatches of a day or date range with status totals",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationLandscape,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/dispatch_summary_a4.html",
			IsDefault:   true,
		},
	}
}

// LoadTemplateContent loads the HTML content for an embedded template
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

// GetDefaultTemplateForDocType finds the default template for a document type
func GetDefaultTemplateForDocType(docType printing.DocType) *DefaultTemplate {
	for _, t := range GetDefaultTemplates() {
		if t.DocType == docType && t.IsDefault {
			return &t
		}
	}
	return nil
}
