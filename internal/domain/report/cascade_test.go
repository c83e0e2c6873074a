package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func rollRows() []CutRollRow {
	mk := func(client, order string, gsm int, width int64) CutRollRow {
		return CutRollRow{ClientName: client, OrderFrontendID: order, GSM: gsm, BF: decimal.NewFromInt(18), Shade: "Natural", WidthInches: decimal.NewFromInt(width)}
	}
	return []CutRollRow{
		mk("Acme", "ORD-1", 120, 36),
		mk("Acme", "ORD-1", 120, 40),
		mk("Acme", "ORD-2", 100, 36),
		mk("Birla", "ORD-3", 120, 36),
	}
}

func levels() []Level[CutRollRow] {
	return []Level[CutRollRow]{
		{Name: "client", Value: func(r CutRollRow) string { return r.ClientName }},
		{Name: "order", Value: func(r CutRollRow) string { return r.OrderFrontendID }},
		{Name: "paper", Value: func(r CutRollRow) string { return r.PaperSpec() }},
		{Name: "width", Value: func(r CutRollRow) string { return r.WidthInches.String() }},
	}
}

func TestCascade_NoSelection(t *testing.T) {
	res := Cascade(rollRows(), levels(), nil)
	assert.Len(t, res.Rows, 4)
	assert.Equal(t, []Option{{"Acme", 3}, {"Birla", 1}}, res.Options["client"])
	assert.Len(t, res.Options["order"], 3)
	assert.Equal(t, []Option{{"36", 3}, {"40", 1}}, res.Options["width"])
}

func TestCascade_NumericWidthOrder(t *testing.T) {
	mk := func(width string) CutRollRow {
		return CutRollRow{ClientName: "Acme", WidthInches: decimal.RequireFromString(width)}
	}
	rows := []CutRollRow{mk("12"), mk("9"), mk("100"), mk("9.5"), mk("12")}
	lvls := []Level[CutRollRow]{
		{Name: "width", Value: func(r CutRollRow) string { return r.WidthInches.String() }, Compare: CompareNumeric},
	}

	res := Cascade(rows, lvls, nil)
	assert.Equal(t, []Option{{"9", 1}, {"9.5", 1}, {"12", 2}, {"100", 1}}, res.Options["width"])
}

func TestCompareNumeric(t *testing.T) {
	assert.Negative(t, CompareNumeric("9", "12"))
	assert.Zero(t, CompareNumeric("36", "36.0"))
	assert.Negative(t, CompareNumeric("40", "n/a"))
	assert.Positive(t, CompareNumeric("n/a", "40"))
	assert.Negative(t, CompareNumeric("abc", "abd"))
}

func TestCascade_NarrowsDownstreamOptions(t *testing.T) {
	res := Cascade(rollRows(), levels(), map[string]string{"client": "Acme"})
	assert.Len(t, res.Rows, 3)
	assert.Equal(t, []Option{{"ORD-1", 2}, {"ORD-2", 1}}, res.Options["order"])
	assert.Equal(t, []Option{{"Acme", 3}, {"Birla", 1}}, res.Options["client"], "own level sees upstream rows only")

	res = Cascade(rollRows(), levels(), map[string]string{"client": "Acme", "order": "ORD-1", "width": "40"})
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, []Option{{"120gsm, 18bf, Natural", 2}}, res.Options["paper"])
	assert.Empty(t, res.Reset)
}

func TestCascade_ResetsStaleSelection(t *testing.T) {
	// ORD-3 belongs to Birla, so it is not offered once Acme is picked
	res := Cascade(rollRows(), levels(), map[string]string{"client": "Acme", "order": "ORD-3"})
	assert.Equal(t, []string{"order"}, res.Reset)
	assert.NotContains(t, res.Selection, "order")
	assert.Len(t, res.Rows, 3)
}
