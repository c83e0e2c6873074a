package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	infra "github.com/papermill/portal/internal/infrastructure/printing"
)

// MaterialChallanProvider prints one inward or outward material challan.
// The backend has no single-challan endpoint, so the challan is found in
// the listing by id or frontend id.
type MaterialChallanProvider struct {
	direction inventory.Direction
	source    ChallanSource
	company   infra.CompanyInfo
}

// NewMaterialChallanProvider creates a provider for one challan direction
func NewMaterialChallanProvider(dir inventory.Direction, source ChallanSource, company infra.CompanyInfo) *MaterialChallanProvider {
	return &MaterialChallanProvider{direction: dir, source: source, company: company}
}

// GetDocType returns the document type this provider handles
func (p *MaterialChallanProvider) GetDocType() printing.DocType {
	if p.direction == inventory.DirectionInward {
		return printing.DocTypeMaterialInward
	}
	return printing.DocTypeMaterialOutward
}

// GetData finds the challan and shapes it
func (p *MaterialChallanProvider) GetData(ctx context.Context, referenceID string) (*infra.DocumentData, error) {
	id := strings.TrimSpace(referenceID)
	if id == "" {
		return nil, shared.InvalidInput("challan id is required")
	}

	challans, err := p.source.ListChallans(ctx, p.direction, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s challans: %w", p.direction, err)
	}

	for _, ch := range challans {
		if ch.ID != id && !strings.EqualFold(ch.FrontendID, id) {
			continue
		}
		doc := infra.BuildMaterialChallan(ch, p.direction)
		data := infra.NewDocumentData(p.GetDocType(), doc.Number, p.company, clock())
		data.Meta.Date = ch.Time.Time
		data.Meta.CreatedBy = ch.CreatedBy
		data.Meta.Remark = ch.Remarks
		data.Document = doc
		return data, nil
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Challan "+id+" not found")
}
