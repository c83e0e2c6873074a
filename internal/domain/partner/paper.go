package partner

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/shared"
)

// Paper is a paper grade the mill produces
type Paper struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	GSM       int              `json:"gsm"`
	BF        decimal.Decimal  `json:"bf"`
	Shade     string           `json:"shade"`
	Type      string           `json:"type"`
	Status    string           `json:"status"`
	CreatedAt shared.Timestamp `json:"created_at"`
}

// Spec renders the paper the way it is printed on slips: "120gsm, 18bf, Natural"
func (p Paper) Spec() string {
	return FormatSpec(p.GSM, p.BF, p.Shade)
}

// FormatSpec renders a gsm/bf/shade triple
func FormatSpec(gsm int, bf decimal.Decimal, shade string) string {
	return fmt.Sprintf("%dgsm, %sbf, %s", gsm, bf.String(), shade)
}

// PaperInput is the create form for a paper grade
type PaperInput struct {
	Name  string          `json:"name" form:"name" binding:"required,max=100"`
	GSM   int             `json:"gsm" form:"gsm" binding:"required,min=1,max=1000"`
	BF    decimal.Decimal `json:"bf" form:"bf"`
	Shade string          `json:"shade" form:"shade" binding:"required,max=50"`
	Type  string          `json:"type" form:"type" binding:"max=50"`
}

// Validate checks values the binding tags cannot
func (in PaperInput) Validate() error {
	if !in.BF.IsPositive() {
		return shared.InvalidInput("BF must be greater than zero")
	}
	if strings.TrimSpace(in.Shade) == "" {
		return shared.InvalidInput("Shade is required")
	}
	return nil
}
