package providers

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	infra "github.com/papermill/portal/internal/infrastructure/printing"
)

// DispatchSummaryProvider prints the dispatch register for a day or range.
// The reference is "YYYY-MM-DD" or "YYYY-MM-DD..YYYY-MM-DD".
type DispatchSummaryProvider struct {
	source  DispatchSource
	company infra.CompanyInfo
}

// NewDispatchSummaryProvider creates the dispatch register provider
func NewDispatchSummaryProvider(source DispatchSource, company infra.CompanyInfo) *DispatchSummaryProvider {
	return &DispatchSummaryProvider{source: source, company: company}
}

// GetDocType returns the document type this provider handles
func (p *DispatchSummaryProvider) GetDocType() printing.DocType {
	return printing.DocTypeDispatchSummary
}

// ParseSummaryRange parses a register reference into a closed date range
func ParseSummaryRange(ref string) (shared.DateRange, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return shared.DateRange{}, shared.InvalidInput("date or date range is required")
	}
	from, to, isRange := strings.Cut(ref, "..")
	if !isRange {
		to = from
	}
	r, err := shared.ParseDateRange(from, to)
	if err != nil {
		return shared.DateRange{}, err
	}
	if r.From.IsZero() || r.To.IsZero() {
		return shared.DateRange{}, shared.InvalidInput("both ends of the date range are required")
	}
	return r, nil
}

// GetData loads the history for the range and filters it locally, since
// the backend may ignore the date parameters
func (p *DispatchSummaryProvider) GetData(ctx context.Context, referenceID string) (*infra.DocumentData, error) {
	r, err := ParseSummaryRange(referenceID)
	if err != nil {
		return nil, err
	}

	history, err := p.source.DispatchHistory(ctx, r.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch history: %w", err)
	}

	records := shared.FilterSlice(history, func(rec dispatch.Record) bool {
		return r.Contains(rec.DispatchDate.Time)
	})
	slices.SortStableFunc(records, func(a, b dispatch.Record) int {
		if c := a.DispatchDate.Time.Compare(b.DispatchDate.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Number(), b.Number())
	})

	data := infra.NewDocumentData(printing.DocTypeDispatchSummary, strings.TrimSpace(referenceID), p.company, clock())
	data.Meta.Date = r.From
	data.Document = infra.BuildDispatchSummary(records, r.From, r.To)
	return data, nil
}
