package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGSTIN(t *testing.T) {
	assert.True(t, ValidGSTIN("24AAACC1206D1ZM"))
	assert.True(t, ValidGSTIN(" 24aaacc1206d1zm "))
	assert.False(t, ValidGSTIN("24AAACC1206D1XM"))
	assert.False(t, ValidGSTIN("GSTIN"))

	assert.Equal(t, "24", GSTINStateCode("24AAACC1206D1ZM"))
	assert.Equal(t, "", GSTINStateCode("not-a-gstin"))
}

func TestComputeGST(t *testing.T) {
	rate := decimal.NewFromInt(18)

	t.Run("intra-state splits into CGST and SGST", func(t *testing.T) {
		g := ComputeGST(decimal.RequireFromString("10000"), rate, "24", "24AAACC1206D1ZM")
		assert.False(t, g.InterState)
		assert.Equal(t, "900", g.CGST.String())
		assert.Equal(t, "900", g.SGST.String())
		assert.True(t, g.IGST.IsZero())
		assert.Equal(t, "11800", g.GrandTotal.String())
		assert.True(t, g.RoundOff.IsZero())
		assert.Equal(t, "9", g.HalfRate().String())
	})

	t.Run("inter-state uses IGST", func(t *testing.T) {
		g := ComputeGST(decimal.RequireFromString("10000"), rate, "24", "27AAACC1206D1ZM")
		assert.True(t, g.InterState)
		assert.Equal(t, "1800", g.IGST.String())
		assert.True(t, g.CGST.IsZero())
	})

	t.Run("unknown client state is inter-state", func(t *testing.T) {
		g := ComputeGST(decimal.RequireFromString("100"), rate, "24", "")
		assert.True(t, g.InterState)
	})

	t.Run("grand total rounds to rupee with round-off", func(t *testing.T) {
		g := ComputeGST(decimal.RequireFromString("1234.56"), rate, "24", "24AAACC1206D1ZM")
		// 1234.56 * 9% = 111.1104 -> 111.11 each
		assert.Equal(t, "111.11", g.CGST.String())
		assert.Equal(t, "1457", g.GrandTotal.String())
		assert.Equal(t, "0.22", g.RoundOff.String())
	})
}
