package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/domain/shared/valueobject"
)

// TemplateEngine renders document templates. The same function map is
// used by the portal's HTML pages so that money and dates look the same
// on screen and on paper.
type TemplateEngine struct {
	funcMap  template.FuncMap
	location *time.Location
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLocation sets the zone dates are printed in (default Asia/Kolkata,
// falling back to UTC when tzdata is unavailable)
func WithLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{location: defaultLocation()}

	e.funcMap = template.FuncMap{
		// Money and quantities
		"inr":           func(v any) string { return valueobject.FormatINR(toDecimal(v)) },
		"indian":        func(v any, places int) string { return valueobject.FormatIndian(toDecimal(v), int32(places)) },
		"amountInWords": func(v any) string { return valueobject.AmountInWords(toDecimal(v)) },
		"kg":            func(v any) string { return valueobject.FormatIndian(toDecimal(v), 2) + " kg" },
		"inches":        formatInches,
		"formatDecimal": func(v any, places int) string { return toDecimal(v).StringFixed(int32(places)) },
		"percent":       func(v any, places int) string { return toDecimal(v).StringFixed(int32(places)) + "%" },

		// Dates
		"formatDate":     func(v any) string { return e.format(v, "02-01-2006") },
		"formatDateTime": func(v any) string { return e.format(v, "02-01-2006 03:04 PM") },
		"formatTime":     func(v any) string { return e.format(v, "03:04 PM") },

		// Strings
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    titleCase,
		"trim":     strings.TrimSpace,
		"join":     strings.Join,
		"truncate": truncate,
		"default":  defaultFunc,

		// Arithmetic on decimals
		"add":      func(a, b any) decimal.Decimal { return toDecimal(a).Add(toDecimal(b)) },
		"sub":      func(a, b any) decimal.Decimal { return toDecimal(a).Sub(toDecimal(b)) },
		"mul":      func(a, b any) decimal.Decimal { return toDecimal(a).Mul(toDecimal(b)) },
		"inc":      func(i int) int { return i + 1 },
		"sumField": sumField,
		"isZero":   func(v any) bool { return toDecimal(v).IsZero() },

		// Collections
		"seq":  seq,
		"dict": dict,

		"now": func() time.Time { return time.Now().In(e.location) },
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

func defaultLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.UTC
}

// Location is the zone dates are printed in
func (e *TemplateEngine) Location() *time.Location {
	return e.location
}

// RenderString parses and executes a template with the engine's functions
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// Render renders a stored template with the provided data
func (e *TemplateEngine) Render(t *StaticTemplate, data any) (string, error) {
	if t == nil {
		return "", NewRenderError(ErrCodeTemplateNotFound, "template is nil", nil)
	}
	return e.RenderString(t.ID, t.Content, data)
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

func (e *TemplateEngine) format(v any, layout string) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format(layout)
}

// formatInches renders a width such as 42.5 as 42.5"
func formatInches(v any) string {
	d := toDecimal(v)
	return d.Round(2).String() + `"`
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// truncate shortens s to max runes, ending with an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

func defaultFunc(def, val any) any {
	if val == nil {
		return def
	}
	rv := reflect.ValueOf(val)
	if rv.IsZero() {
		return def
	}
	return val
}

// sumField sums a decimal-like field across a slice of structs or pointers
func sumField(slice any, field string) decimal.Decimal {
	total := decimal.Zero
	rv := reflect.ValueOf(slice)
	if rv.Kind() != reflect.Slice {
		return total
	}
	for i := 0; i < rv.Len(); i++ {
		item := reflect.Indirect(rv.Index(i))
		if item.Kind() != reflect.Struct {
			continue
		}
		f := item.FieldByName(field)
		if f.IsValid() && f.CanInterface() {
			total = total.Add(toDecimal(f.Interface()))
		}
	}
	return total
}

func seq(n int) []int {
	out := make([]int, max(n, 0))
	for i := range out {
		out[i] = i
	}
	return out
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict requires key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// toDecimal converts various types to decimal.Decimal
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// toTime converts various types to time.Time
func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case shared.Timestamp:
		return val.Time
	case *shared.Timestamp:
		if val == nil {
			return time.Time{}
		}
		return val.Time
	case string:
		ts, err := shared.ParseTimestamp(val)
		if err != nil {
			return time.Time{}
		}
		return ts.Time
	default:
		return time.Time{}
	}
}
