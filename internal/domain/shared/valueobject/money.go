package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds to paise
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatINR renders an amount with Indian digit grouping, e.g. ₹12,34,567.50
func FormatINR(d decimal.Decimal) string {
	s := FormatIndian(d, 2)
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return "-₹" + rest
	}
	return "₹" + s
}

// FormatIndian groups the integer part in the Indian style (last three
// digits, then pairs) with a fixed number of decimal places.
func FormatIndian(d decimal.Decimal, places int32) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(places)

	intPart, frac, _ := strings.Cut(s, ".")
	grouped := groupIndian(intPart)
	if frac != "" {
		grouped += "." + frac
	}
	if neg && !d.Round(places).IsZero() {
		return "-" + grouped
	}
	return grouped
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

var (
	ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells an amount the way Indian challans print it:
// "Rupees One Lakh Twenty Thousand Five Hundred and Fifty Paise Only".
func AmountInWords(d decimal.Decimal) string {
	d = RoundMoney(d.Abs())
	rupees := d.IntPart()
	paise := d.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).IntPart()

	var b strings.Builder
	b.WriteString("Rupees ")
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(integerInWords(rupees))
	}
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(belowHundred(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

// integerInWords uses crore/lakh/thousand/hundred. Amounts of a hundred
// crore or more spell the crore count recursively ("One Hundred Crore").
func integerInWords(n int64) string {
	var parts []string
	if n >= 1_00_00_000 {
		parts = append(parts, integerInWords(n/1_00_00_000), "Crore")
		n %= 1_00_00_000
	}
	if n >= 1_00_000 {
		parts = append(parts, belowHundred(n/1_00_000), "Lakh")
		n %= 1_00_000
	}
	if n >= 1000 {
		parts = append(parts, belowHundred(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
