package printing

// DocType represents the type of document that can be printed
type DocType string

const (
	DocTypePackingSlip     DocType = "PACKING_SLIP"
	DocTypeCashChallan     DocType = "CASH_CHALLAN"
	DocTypeGSTChallan      DocType = "GST_CHALLAN"
	DocTypeMaterialInward  DocType = "MATERIAL_INWARD"
	DocTypeMaterialOutward DocType = "MATERIAL_OUTWARD"
	DocTypeDispatchSummary DocType = "DISPATCH_SUMMARY"
)

// IsValid checks if the DocType is a valid value
func (d DocType) IsValid() bool {
	switch d {
	case DocTypePackingSlip, DocTypeCashChallan, DocTypeGSTChallan,
		DocTypeMaterialInward, DocTypeMaterialOutward, DocTypeDispatchSummary:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (d DocType) String() string {
	return string(d)
}

// DisplayName returns the title printed on the document
func (d DocType) DisplayName() string {
	switch d {
	case DocTypePackingSlip:
		return "Packing Slip"
	case DocTypeCashChallan:
		return "Cash Challan"
	case DocTypeGSTChallan:
		return "Tax Invoice / GST Challan"
	case DocTypeMaterialInward:
		return "Material Inward Challan"
	case DocTypeMaterialOutward:
		return "Material Outward Challan"
	case DocTypeDispatchSummary:
		return "Dispatch Summary"
	default:
		return string(d)
	}
}

// IsDispatchDocument reports whether the document is built from a dispatch record
func (d DocType) IsDispatchDocument() bool {
	switch d {
	case DocTypePackingSlip, DocTypeCashChallan, DocTypeGSTChallan, DocTypeDispatchSummary:
		return true
	}
	return false
}

// FilePrefix is used when naming stored PDFs
func (d DocType) FilePrefix() string {
	switch d {
	case DocTypePackingSlip:
		return "packing_slip"
	case DocTypeCashChallan:
		return "cash_challan"
	case DocTypeGSTChallan:
		return "gst_challan"
	case DocTypeMaterialInward:
		return "material_in"
	case DocTypeMaterialOutward:
		return "material_out"
	case DocTypeDispatchSummary:
		return "dispatch_summary"
	default:
		return "document"
	}
}

// AllDocTypes returns all valid DocType values
func AllDocTypes() []DocType {
	return []DocType{
		DocTypePackingSlip, DocTypeCashChallan, DocTypeGSTChallan,
		DocTypeMaterialInward, DocTypeMaterialOutward, DocTypeDispatchSummary,
	}
}

// PaperSize represents the paper a document is printed on
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4" // 210mm x 297mm
	PaperSizeA5 PaperSize = "A5" // 148mm x 210mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4 || p == PaperSizeA5
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	if p == PaperSizeA5 {
		return 148, 210
	}
	return 210, 297
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

// JobStatus represents the status of a document generation job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRendering JobStatus = "RENDERING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRendering, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusRendering || target == JobStatusFailed
	case JobStatusRendering:
		return target == JobStatusCompleted || target == JobStatusFailed
	}
	return false
}
