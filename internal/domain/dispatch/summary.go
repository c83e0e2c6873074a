package dispatch

import "github.com/shopspring/decimal"

// Summary aggregates a filtered dispatch history
type Summary struct {
	Count         int            `json:"count"`
	TotalItems    int            `json:"total_items"`
	TotalWeightKg string         `json:"total_weight_kg"`
	ByStatus      map[Status]int `json:"by_status"`
}

// Summarize counts records per status and totals their items and weight
func Summarize(records []Record) Summary {
	s := Summary{ByStatus: make(map[Status]int, 4)}
	weight := decimal.Zero
	for _, st := range AllStatuses() {
		s.ByStatus[st] = 0
	}
	for _, r := range records {
		s.Count++
		s.TotalItems += r.ItemCount()
		weight = weight.Add(r.ItemWeight())
		s.ByStatus[r.Status]++
	}
	s.TotalWeightKg = weight.StringFixed(2)
	return s
}

// OrderGroup is a block of a packing slip: one order's rolls of one paper
type OrderGroup struct {
	OrderFrontendID string          `json:"order_frontend_id"`
	PaperSpec       string          `json:"paper_spec"`
	Items           []Item          `json:"items"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
}

// GroupItems groups items by order then paper spec, keeping first-seen order
func GroupItems(items []Item) []OrderGroup {
	type key struct{ order, spec string }
	index := map[key]int{}
	var groups []OrderGroup
	for _, it := range items {
		k := key{it.OrderFrontendID, it.Spec()}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, OrderGroup{OrderFrontendID: k.order, PaperSpec: k.spec, WeightKg: decimal.Zero})
		}
		groups[i].Items = append(groups[i].Items, it)
		groups[i].WeightKg = groups[i].WeightKg.Add(it.WeightKg)
	}
	return groups
}
