package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/shared"
)

func newTestEngine() *TemplateEngine {
	return NewTemplateEngine(WithLocation(time.FixedZone("IST", 5*3600+1800)))
}

func TestTemplateEngine_MoneyFunctions(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name     string
		template string
		data     any
		want     string
	}{
		{"inr decimal", `{{inr .}}`, decimal.RequireFromString("1234567.5"), "₹12,34,567.50"},
		{"inr string", `{{inr .}}`, "999", "₹999.00"},
		{"indian grouping", `{{indian . 3}}`, decimal.RequireFromString("100000"), "1,00,000.000"},
		{"kg", `{{kg .}}`, 1520.456, "1,520.46 kg"},
		{"inches", `{{inches .}}`, decimal.RequireFromString("42.500"), `42.5"`},
		{"words", `{{amountInWords .}}`, decimal.RequireFromString("150000.25"), "Rupees One Lakh Fifty Thousand and Twenty Five Paise Only"},
		{"percent", `{{percent . 1}}`, 12.345, "12.3%"},
		{"decimal arithmetic", `{{formatDecimal (mul (add 1 "2.5") 2) 2}}`, nil, "7.00"},
		{"subtraction", `{{(sub 10 "0.75").String}}`, nil, "9.25"},
		{"zero check", `{{if isZero .}}zero{{end}}`, decimal.Zero, "zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.RenderString(tt.name, tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTemplateEngine_DateFunctions(t *testing.T) {
	e := newTestEngine()
	utc := time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC)

	out, err := e.RenderString("d", `{{formatDate .}}`, utc)
	require.NoError(t, err)
	assert.Equal(t, "01-02-2025", out, "printed in the configured zone")

	out, err = e.RenderString("dt", `{{formatDateTime .}}`, shared.Timestamp{Time: utc})
	require.NoError(t, err)
	assert.Equal(t, "01-02-2025 01:30 AM", out)

	out, err = e.RenderString("s", `{{formatDate .}}`, "2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, "01-04-2025", out)

	out, err = e.RenderString("zero", `[{{formatDate .}}]`, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestTemplateEngine_StringAndCollectionFunctions(t *testing.T) {
	e := newTestEngine()

	out, err := e.RenderString("t", `{{title "shree PACKAGING"}}|{{truncate "Natural Kraft" 8}}|{{default "n/a" ""}}|{{default "n/a" "x"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "Shree Packaging|Natural…|n/a|x", out)

	out, err = e.RenderString("seq", `{{range seq 3}}{{inc .}}{{end}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "123", out)

	out, err = e.RenderString("dict", `{{with dict "a" 1 "b" "two"}}{{.a}}-{{.b}}{{end}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "1-two", out)

	type line struct{ Amount decimal.Decimal }
	out, err = e.RenderString("sum", `{{inr (sumField . "Amount")}}`, []*line{{decimal.NewFromInt(100)}, {decimal.RequireFromString("0.5")}})
	require.NoError(t, err)
	assert.Equal(t, "₹100.50", out)
}

func TestTemplateEngine_Errors(t *testing.T) {
	e := newTestEngine()

	_, err := e.RenderString("empty", "  ", nil)
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	_, err = e.RenderString("bad", "{{if}}", nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	_, err = e.RenderString("exec", `{{dict "a"}}`, nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeRenderFailed, re.Code)

	_, err = e.Render(nil, nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeTemplateNotFound, re.Code)
}

func TestTemplateEngine_EscapesHTML(t *testing.T) {
	out, err := newTestEngine().RenderString("x", `<td>{{.}}</td>`, `<script>alert(1)</script>`)
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "<script>"))
}

func TestTemplateEngine_WithFuncs(t *testing.T) {
	e := NewTemplateEngine(WithFuncs(map[string]any{"shout": strings.ToUpper}))
	out, err := e.RenderString("f", `{{shout "ok"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "OK", out)

	fm := e.GetFuncMap()
	delete(fm, "inr")
	_, err = e.RenderString("still", `{{inr 1}}`, nil)
	assert.NoError(t, err, "GetFuncMap returns a copy")
}
