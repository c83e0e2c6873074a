package backend

import (
	"net/url"
	"sort"
	"strings"
)

// Endpoints builds backend URLs. It is the only place that knows the
// backend's path layout.
type Endpoints struct {
	base string
}

// NewEndpoints creates a builder for the given base URL
func NewEndpoints(baseURL string) Endpoints {
	return Endpoints{base: strings.TrimRight(baseURL, "/")}
}

// URL joins path segments onto the base URL, escaping each segment, and
// appends non-empty query values in key order.
func (e Endpoints) URL(query map[string]string, segments ...string) string {
	var b strings.Builder
	b.WriteString(e.base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if q := encodeQuery(query); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String()
}

func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k, v := range query {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, query[k])
	}
	return values.Encode()
}

func (e Endpoints) Login() string { return e.URL(nil, "auth", "login") }

func (e Endpoints) Clients() string                   { return e.URL(nil, "clients") }
func (e Endpoints) Client(id string) string           { return e.URL(nil, "clients", id) }
func (e Endpoints) Papers() string                    { return e.URL(nil, "papers") }
func (e Endpoints) Orders(q map[string]string) string { return e.URL(q, "orders") }
func (e Endpoints) Order(id string) string            { return e.URL(nil, "orders", id) }
func (e Endpoints) OrderStatus(id string) string {
	return e.URL(nil, "orders", id, "status")
}
func (e Endpoints) PendingItems(q map[string]string) string {
	return e.URL(q, "pending-order-items")
}

func (e Endpoints) Plans(q map[string]string) string { return e.URL(q, "plans") }
func (e Endpoints) Plan(id string) string            { return e.URL(nil, "plans", id) }
func (e Endpoints) PlanPreview() string              { return e.URL(nil, "plans", "preview") }
func (e Endpoints) PlanStatus(id string) string      { return e.URL(nil, "plans", id, "status") }
func (e Endpoints) PlanStartProduction(id string) string {
	return e.URL(nil, "plans", id, "start-production")
}

func (e Endpoints) BarcodeHierarchy(code string) string {
	return e.URL(nil, "barcode", code, "hierarchy")
}

func (e Endpoints) DispatchHistory(q map[string]string) string {
	return e.URL(q, "dispatch", "history")
}
func (e Endpoints) DispatchDetails(id string) string { return e.URL(nil, "dispatch", id, "details") }
func (e Endpoints) DispatchStatus(id string) string  { return e.URL(nil, "dispatch", id, "status") }
func (e Endpoints) DispatchPDF(id string) string     { return e.URL(nil, "dispatch", id, "pdf") }
func (e Endpoints) DispatchClients() string          { return e.URL(nil, "dispatch", "clients") }
func (e Endpoints) DispatchCreate() string           { return e.URL(nil, "dispatch", "create") }
func (e Endpoints) WarehouseItems(q map[string]string) string {
	return e.URL(q, "dispatch", "warehouse-items")
}
func (e Endpoints) WastageItems(q map[string]string) string {
	return e.URL(q, "dispatch", "wastage-inventory-items")
}
func (e Endpoints) ManualCutRolls(q map[string]string) string {
	return e.URL(q, "dispatch", "manual-cut-rolls")
}

// Challans returns the collection path for material-in or material-out
func (e Endpoints) Challans(direction string, q map[string]string) string {
	return e.URL(q, "material-"+direction)
}

// Challan returns the item path for a material challan
func (e Endpoints) Challan(direction, id string) string {
	return e.URL(nil, "material-"+direction, id)
}
func (e Endpoints) Materials() string { return e.URL(nil, "materials") }

func (e Endpoints) CutRollsReport(q map[string]string) string {
	return e.URL(q, "reports", "all-cut-rolls-filtered")
}
func (e Endpoints) PendingOrdersReport(q map[string]string) string {
	return e.URL(q, "reports", "pending-orders-filtered")
}
func (e Endpoints) ClientOrderSummary(q map[string]string) string {
	return e.URL(q, "reports", "client-order-summary")
}

// Health is pinged by the portal's own health endpoint
func (e Endpoints) Health() string { return e.URL(nil, "health") }
