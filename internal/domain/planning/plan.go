package planning

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// SetWidthInches is the width of the intermediate set roll cut from a jumbo
const SetWidthInches = 118

// Status mirrors the backend plan lifecycle
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsValid checks if the Status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the portal should offer the transition.
// The backend remains the authority; this only hides impossible actions.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPlanned:
		return target == StatusInProgress || target == StatusFailed
	case StatusInProgress:
		return target == StatusCompleted || target == StatusFailed
	}
	return false
}

// Label is the human text shown in status badges
func (s Status) Label() string {
	switch s {
	case StatusPlanned:
		return "Planned"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	}
	return string(s)
}

// AllStatuses lists the statuses in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPlanned, StatusInProgress, StatusCompleted, StatusFailed}
}

// Transitions lists the statuses the portal offers from s
func (s Status) Transitions() []Status {
	var out []Status
	for _, t := range AllStatuses() {
		if s.CanTransitionTo(t) {
			out = append(out, t)
		}
	}
	return out
}

// Plan is a cutting plan produced by the backend optimizer
type Plan struct {
	ID                      string           `json:"id"`
	FrontendID              string           `json:"frontend_id"`
	Name                    string           `json:"name"`
	Status                  Status           `json:"status"`
	ExpectedWastePercentage decimal.Decimal  `json:"expected_waste_percentage"`
	ActualWastePercentage   decimal.Decimal  `json:"actual_waste_percentage"`
	CutPattern              []CutPattern     `json:"cut_pattern"`
	OrderIDs                []string         `json:"order_ids"`
	CreatedBy               string           `json:"created_by_name,omitempty"`
	CreatedAt               shared.Timestamp `json:"created_at"`
	ExecutedAt              shared.Timestamp `json:"executed_at"`
	CompletedAt             shared.Timestamp `json:"completed_at"`
}

// CutPattern is one 118" set: the widths cut side by side from it
type CutPattern struct {
	JumboNumber      int               `json:"jumbo_number"`
	SetNumber        int               `json:"set_number"`
	GSM              int               `json:"gsm"`
	BF               decimal.Decimal   `json:"bf"`
	Shade            string            `json:"shade"`
	Widths           []decimal.Decimal `json:"widths"`
	OrderFrontendIDs []string          `json:"order_frontend_ids,omitempty"`
	ClientNames      []string          `json:"client_names,omitempty"`
}

// UsedInches sums the cut widths
func (p CutPattern) UsedInches() decimal.Decimal {
	used := decimal.Zero
	for _, w := range p.Widths {
		used = used.Add(w)
	}
	return used
}

// TrimInches is the leftover width of the set, never negative
func (p CutPattern) TrimInches() decimal.Decimal {
	trim := decimal.NewFromInt(SetWidthInches).Sub(p.UsedInches())
	if trim.IsNegative() {
		return decimal.Zero
	}
	return trim
}

// WastePercent is trim as a share of the set width
func (p CutPattern) WastePercent() decimal.Decimal {
	return p.TrimInches().Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(SetWidthInches)).Round(2)
}

// PaperSpec renders the pattern's paper grade
func (p CutPattern) PaperSpec() string {
	return partner.FormatSpec(p.GSM, p.BF, p.Shade)
}

// JumboGroup collects the sets cut from one jumbo roll
type JumboGroup struct {
	JumboNumber int          `json:"jumbo_number"`
	PaperSpec   string       `json:"paper_spec"`
	Sets        []CutPattern `json:"sets"`
	CutRolls    int          `json:"cut_rolls"`
	TrimInches  string       `json:"trim_inches"`
}

// Summary aggregates a set of cut patterns
type Summary struct {
	JumboRolls        int    `json:"jumbo_rolls"`
	SetRolls          int    `json:"set_rolls"`
	CutRolls          int    `json:"cut_rolls"`
	AverageTrimInches string `json:"average_trim_inches"`
	WastePercent      string `json:"waste_percent"`
}

// GroupByJumbo orders patterns by jumbo then set number and groups them
func GroupByJumbo(patterns []CutPattern) []JumboGroup {
	sorted := slices.Clone(patterns)
	slices.SortStableFunc(sorted, func(a, b CutPattern) int {
		if c := cmp.Compare(a.JumboNumber, b.JumboNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.SetNumber, b.SetNumber)
	})

	var groups []JumboGroup
	for _, p := range sorted {
		if len(groups) == 0 || groups[len(groups)-1].JumboNumber != p.JumboNumber {
			groups = append(groups, JumboGroup{JumboNumber: p.JumboNumber, PaperSpec: p.PaperSpec()})
		}
		g := &groups[len(groups)-1]
		g.Sets = append(g.Sets, p)
		g.CutRolls += len(p.Widths)
	}
	for i := range groups {
		trim := decimal.Zero
		for _, s := range groups[i].Sets {
			trim = trim.Add(s.TrimInches())
		}
		groups[i].TrimInches = trim.StringFixed(2)
	}
	return groups
}

// Summarize counts jumbos, sets and cut rolls and the average trim per set
func Summarize(patterns []CutPattern) Summary {
	jumbos := map[int]struct{}{}
	var s Summary
	trim := decimal.Zero
	for _, p := range patterns {
		jumbos[p.JumboNumber] = struct{}{}
		s.CutRolls += len(p.Widths)
		trim = trim.Add(p.TrimInches())
	}
	s.JumboRolls = len(jumbos)
	s.SetRolls = len(patterns)

	avg, waste := decimal.Zero, decimal.Zero
	if s.SetRolls > 0 {
		n := decimal.NewFromInt(int64(s.SetRolls))
		avg = trim.Div(n)
		waste = trim.Mul(decimal.NewFromInt(100)).Div(n.Mul(decimal.NewFromInt(SetWidthInches)))
	}
	s.AverageTrimInches = avg.StringFixed(2)
	s.WastePercent = waste.StringFixed(2)
	return s
}

// PreviewRequest asks the optimizer for a plan without saving it
type PreviewRequest struct {
	OrderIDs       []string `json:"order_ids" binding:"required,min=1"`
	PendingItemIDs []string `json:"pending_item_ids,omitempty"`
}

// PreviewResult is the optimizer's proposal
type PreviewResult struct {
	CutPatterns             []CutPattern    `json:"cut_patterns"`
	ExpectedWastePercentage decimal.Decimal `json:"expected_waste_percentage"`
	PendingOrders           []PendingWidth  `json:"pending_orders"`
}

// PendingWidth is a width the optimizer could not place
type PendingWidth struct {
	WidthInches     decimal.Decimal `json:"width_inches"`
	QuantityPending int             `json:"quantity_pending"`
	GSM             int             `json:"gsm"`
	BF              decimal.Decimal `json:"bf"`
	Shade           string          `json:"shade"`
	Reason          string          `json:"reason"`
}

// CreateRequest saves a plan for the given orders
type CreateRequest struct {
	Name           string   `json:"name" form:"name" binding:"max=200"`
	OrderIDs       []string `json:"order_ids" binding:"required,min=1"`
	PendingItemIDs []string `json:"pending_item_ids,omitempty"`
	CreatedByID    string   `json:"created_by_id,omitempty"`
}
