package inventory

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/shared"
)

// RollNode is a roll placed in the jumbo -> set -> cut tree
type RollNode struct {
	Roll
	Children []*RollNode `json:"children"`
	// Matched is the roll whose code was looked up
	Matched bool `json:"matched"`
	// OnPath marks the ancestors of the matched roll
	OnPath        bool            `json:"on_path"`
	CutRollCount  int             `json:"cut_roll_count"`
	CutRollWeight decimal.Decimal `json:"cut_roll_weight"`
}

// Hierarchy is the assembled tree around a looked-up roll
type Hierarchy struct {
	Code    string      `json:"code"`
	Roots   []*RollNode `json:"roots"`
	Matched *RollNode   `json:"matched"`
	// Path runs from the root down to the matched roll
	Path []*RollNode `json:"-"`
}

// BuildHierarchy assembles the flat list the backend returns into a tree.
// Rolls whose parent is absent from the list become roots. A parent cycle
// is cut at its first member in list order, which becomes a root; the rest
// of the cycle and its descendants stay attached. The roll whose
// barcode or QR code equals code (ignoring case) is marked Matched and its
// ancestors OnPath.
func BuildHierarchy(code string, rolls []Roll) (*Hierarchy, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.InvalidInput("Enter a barcode or QR code")
	}

	nodes := make(map[string]*RollNode, len(rolls))
	order := make([]*RollNode, 0, len(rolls))
	for _, r := range rolls {
		if r.ID == "" {
			continue
		}
		if _, dup := nodes[r.ID]; dup {
			continue
		}
		n := &RollNode{Roll: r, CutRollWeight: decimal.Zero}
		nodes[r.ID] = n
		order = append(order, n)
	}

	h := &Hierarchy{Code: code}
	cut := make(map[string]bool)
	for _, n := range order {
		parent, ok := nodes[n.ParentID]
		if !ok || n.ParentID == n.ID || closesCycle(nodes, cut, n) {
			cut[n.ID] = true
			h.Roots = append(h.Roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortNodes(h.Roots)
	for _, root := range h.Roots {
		aggregate(root, map[string]bool{})
	}

	for _, root := range h.Roots {
		if path := findPath(root, code, nil); path != nil {
			h.Path = path
			h.Matched = path[len(path)-1]
			h.Matched.Matched = true
			for _, n := range path[:len(path)-1] {
				n.OnPath = true
			}
			break
		}
	}
	if h.Matched == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No roll found for code "+code)
	}
	return h, nil
}

// closesCycle reports whether following parents from n returns to n. The
// walk stops at rolls already made roots and at loops above n that n is
// not part of.
func closesCycle(nodes map[string]*RollNode, cut map[string]bool, n *RollNode) bool {
	seen := map[string]bool{}
	for cur := nodes[n.ParentID]; cur != nil; cur = nodes[cur.ParentID] {
		switch {
		case cur.ID == n.ID:
			return true
		case cut[cur.ID], seen[cur.ID]:
			return false
		}
		seen[cur.ID] = true
	}
	return false
}

func sortNodes(ns []*RollNode) {
	slices.SortStableFunc(ns, func(a, b *RollNode) int {
		if c := cmp.Compare(a.RollType.Rank(), b.RollType.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.BarcodeID, b.BarcodeID)
	})
	for _, n := range ns {
		sortNodes(n.Children)
	}
}

func aggregate(n *RollNode, seen map[string]bool) {
	if seen[n.ID] {
		return
	}
	seen[n.ID] = true
	if n.RollType == RollTypeCut {
		n.CutRollCount = 1
		n.CutRollWeight = n.WeightKg
	}
	for _, c := range n.Children {
		aggregate(c, seen)
		n.CutRollCount += c.CutRollCount
		n.CutRollWeight = n.CutRollWeight.Add(c.CutRollWeight)
	}
}

func findPath(n *RollNode, code string, prefix []*RollNode) []*RollNode {
	path := append(slices.Clone(prefix), n)
	if strings.EqualFold(n.BarcodeID, code) || strings.EqualFold(n.QRCode, code) {
		return path
	}
	for _, c := range n.Children {
		if found := findPath(c, code, path); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node depth-first with its depth
func (h *Hierarchy) Walk(fn func(n *RollNode, depth int)) {
	var visit func(n *RollNode, depth int)
	visit = func(n *RollNode, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range h.Roots {
		visit(r, 0)
	}
}
