package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	infra "github.com/papermill/portal/internal/infrastructure/printing"
)

// DispatchDocumentProvider serves the packing slip and both challans, all of
// which are built from one dispatch record
type DispatchDocumentProvider struct {
	docType  printing.DocType
	source   DispatchSource
	company  infra.CompanyInfo
	settings infra.ChallanSettings
}

// NewDispatchDocumentProvider creates a provider for one dispatch document type
func NewDispatchDocumentProvider(docType printing.DocType, source DispatchSource, company infra.CompanyInfo, settings infra.ChallanSettings) *DispatchDocumentProvider {
	return &DispatchDocumentProvider{docType: docType, source: source, company: company, settings: settings}
}

// GetDocType returns the document type this provider handles
func (p *DispatchDocumentProvider) GetDocType() printing.DocType {
	return p.docType
}

// GetData loads the dispatch with its items
func (p *DispatchDocumentProvider) GetData(ctx context.Context, referenceID string) (*infra.DocumentData, error) {
	id := strings.TrimSpace(referenceID)
	if id == "" {
		return nil, shared.InvalidInput("dispatch id is required")
	}

	rec, err := p.source.DispatchDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch %s: %w", id, err)
	}
	if len(rec.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Dispatch "+rec.Number()+" has no items to print")
	}

	data := infra.NewDocumentData(p.docType, rec.Number(), p.company, clock())
	data.Meta.Status = rec.Status.Label()
	data.Meta.Date = rec.DispatchDate.Time
	data.Meta.CreatedBy = rec.CreatedBy

	switch p.docType {
	case printing.DocTypePackingSlip:
		data.Document = infra.BuildPackingSlip(*rec)
	case printing.DocTypeCashChallan:
		data.Document = infra.BuildChallan(*rec, p.settings, false)
	case printing.DocTypeGSTChallan:
		data.Document = infra.BuildChallan(*rec, p.settings, true)
	default:
		return nil, fmt.Errorf("dispatch provider cannot build %s", p.docType)
	}
	return data, nil
}
