// Package traceability answers "where did this roll come from": a barcode or
// QR lookup that places the roll in its jumbo -> set -> cut tree.
package traceability

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Backend fetches the flat roll family of a code
type Backend interface {
	BarcodeHierarchy(ctx context.Context, code string) ([]inventory.Roll, error)
}

// Crumb is one step of the root-to-match path
type Crumb struct {
	ID       string             `json:"id"`
	Code     string             `json:"code"`
	RollType inventory.RollType `json:"roll_type"`
	Label    string             `json:"label"`
}

// Line is one row of the tree flattened for display
type Line struct {
	Node  *inventory.RollNode
	Depth int
}

// Result is a looked-up roll in its family tree
type Result struct {
	*inventory.Hierarchy
	Breadcrumb []Crumb `json:"breadcrumb"`
	Lines      []Line  `json:"-"`
	RollCount  int     `json:"roll_count"`
}

// Service performs barcode lookups
type Service struct {
	backend Backend
	logger  *zap.Logger
}

// NewService creates the traceability service
func NewService(b Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: b, logger: logger}
}

// Lookup finds the roll with code and assembles its hierarchy
func (s *Service) Lookup(ctx context.Context, code string) (*Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.InvalidInput("Enter a barcode or QR code")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "barcode", "lookup", telemetry.AttrBarcode, code)
	defer span.End()

	rolls, err := s.backend.BarcodeHierarchy(ctx, code)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil, shared.WrapDomainError("NOT_FOUND", "No roll found for code "+code, err)
		}
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}

	h, err := inventory.BuildHierarchy(code, rolls)
	if err != nil {
		return nil, err
	}

	res := &Result{Hierarchy: h}
	for _, n := range h.Path {
		res.Breadcrumb = append(res.Breadcrumb, Crumb{
			ID:       n.ID,
			Code:     n.Code(),
			RollType: n.RollType,
			Label:    n.RollType.Label(),
		})
	}
	h.Walk(func(n *inventory.RollNode, depth int) {
		res.Lines = append(res.Lines, Line{Node: n, Depth: depth})
	})
	res.RollCount = len(res.Lines)

	s.logger.Debug("barcode lookup",
		zap.String("code", code),
		zap.String("matched", h.Matched.ID),
		zap.Int("rolls", res.RollCount),
	)
	return res, nil
}
