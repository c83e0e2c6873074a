// Package providers implements DataProvider for every printable document.
// Providers fetch the source record from the ERP backend and shape it with
// the builders in the printing package.
package providers

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/printing"
	infra "github.com/papermill/portal/internal/infrastructure/printing"
)

// DispatchSource reads dispatch records from the backend
type DispatchSource interface {
	DispatchDetails(ctx context.Context, id string) (*dispatch.Record, error)
	DispatchHistory(ctx context.Context, query map[string]string) ([]dispatch.Record, error)
}

// ChallanSource reads material challans from the backend
type ChallanSource interface {
	ListChallans(ctx context.Context, dir inventory.Direction, query map[string]string) ([]inventory.MaterialChallan, error)
}

// Backend is everything the providers read; *backend.Client satisfies it
type Backend interface {
	DispatchSource
	ChallanSource
}

// DataProviderRegistry looks up the provider for a document type
type DataProviderRegistry struct {
	mu        sync.RWMutex
	providers map[printing.DocType]infra.DataProvider
}

// NewDataProviderRegistry creates an empty registry
func NewDataProviderRegistry() *DataProviderRegistry {
	return &DataProviderRegistry{
		providers: make(map[printing.DocType]infra.DataProvider),
	}
}

// NewDefaultRegistry registers a provider for every document type
func NewDefaultRegistry(src Backend, company infra.CompanyInfo, settings infra.ChallanSettings) *DataProviderRegistry {
	r := NewDataProviderRegistry()
	for _, dt := range []printing.DocType{printing.DocTypePackingSlip, printing.DocTypeCashChallan, printing.DocTypeGSTChallan} {
		r.Register(NewDispatchDocumentProvider(dt, src, company, settings))
	}
	r.Register(NewMaterialChallanProvider(inventory.DirectionInward, src, company))
	r.Register(NewMaterialChallanProvider(inventory.DirectionOutward, src, company))
	r.Register(NewDispatchSummaryProvider(src, company))
	return r
}

// Register adds a provider, replacing any for the same document type
func (r *DataProviderRegistry) Register(provider infra.DataProvider) {
	if provider == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.GetDocType()] = provider
}

// GetProvider returns the provider for docType
func (r *DataProviderRegistry) GetProvider(docType printing.DocType) (infra.DataProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[docType]
	return provider, ok
}

// LoadData loads document data with the provider for docType
func (r *DataProviderRegistry) LoadData(ctx context.Context, docType printing.DocType, referenceID string) (*infra.DocumentData, error) {
	provider, ok := r.GetProvider(docType)
	if !ok {
		return nil, fmt.Errorf("no data provider registered for document type: %s", docType)
	}
	return provider.GetData(ctx, referenceID)
}

// HasProvider checks if a provider is registered for docType
func (r *DataProviderRegistry) HasProvider(docType printing.DocType) bool {
	_, ok := r.GetProvider(docType)
	return ok
}

// RegisteredTypes returns the registered document types in a stable order
func (r *DataProviderRegistry) RegisteredTypes() []printing.DocType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]printing.DocType, 0, len(r.providers))
	for docType := range r.providers {
		types = append(types, docType)
	}
	slices.Sort(types)
	return types
}

// clock is swapped in tests
var clock = time.Now
