package valueobject

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// NormalizeGSTIN upper-cases and trims a GST identification number
func NormalizeGSTIN(gstin string) string {
	return strings.ToUpper(strings.TrimSpace(gstin))
}

// ValidGSTIN reports whether s has the 15-character GSTIN shape
func ValidGSTIN(s string) bool {
	return gstinPattern.MatchString(NormalizeGSTIN(s))
}

// GSTINStateCode returns the two-digit state code of a well-formed GSTIN,
// or "" when the GSTIN is missing or malformed.
func GSTINStateCode(gstin string) string {
	g := NormalizeGSTIN(gstin)
	if !gstinPattern.MatchString(g) {
		return ""
	}
	return g[:2]
}

// GSTBreakdown is the tax split printed on a GST challan
type GSTBreakdown struct {
	Taxable     decimal.Decimal `json:"taxable"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	InterState  bool            `json:"inter_state"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	RoundOff    decimal.Decimal `json:"round_off"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// HalfRate is the CGST/SGST share of the rate
func (g GSTBreakdown) HalfRate() decimal.Decimal {
	return g.RatePercent.Div(decimal.NewFromInt(2))
}

// ComputeGST splits tax on a taxable value. Supply is intra-state (CGST +
// SGST at half rate each) only when both the company state code and the
// client's GSTIN state code are known and equal; otherwise IGST applies.
// The grand total is rounded to the nearest rupee with the difference
// reported as round-off.
func ComputeGST(taxable, ratePercent decimal.Decimal, companyStateCode, clientGSTIN string) GSTBreakdown {
	taxable = RoundMoney(taxable)
	clientState := GSTINStateCode(clientGSTIN)
	interState := companyStateCode == "" || clientState == "" || companyStateCode != clientState

	g := GSTBreakdown{
		Taxable:     taxable,
		RatePercent: ratePercent,
		InterState:  interState,
		CGST:        decimal.Zero,
		SGST:        decimal.Zero,
		IGST:        decimal.Zero,
	}

	hundred := decimal.NewFromInt(100)
	if interState {
		g.IGST = RoundMoney(taxable.Mul(ratePercent).Div(hundred))
		g.TotalTax = g.IGST
	} else {
		half := RoundMoney(taxable.Mul(ratePercent).Div(decimal.NewFromInt(200)))
		g.CGST = half
		g.SGST = half
		g.TotalTax = half.Add(half)
	}

	exact := taxable.Add(g.TotalTax)
	g.GrandTotal = exact.Round(0)
	g.RoundOff = g.GrandTotal.Sub(exact)
	return g
}
