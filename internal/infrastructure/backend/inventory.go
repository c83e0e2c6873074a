package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/papermill/portal/internal/domain/inventory"
)

// hierarchyEnvelope covers the shapes the hierarchy endpoint has used: a
// bare node list, {"nodes": [...]} or {"items": [...]}.
type hierarchyEnvelope struct {
	Nodes []inventory.Roll `json:"nodes"`
	Rolls []inventory.Roll `json:"rolls"`
}

// BarcodeHierarchy fetches the flat list of rolls related to a code
func (c *Client) BarcodeHierarchy(ctx context.Context, code string) ([]inventory.Roll, error) {
	data, _, err := c.do(ctx, http.MethodGet, c.endpoints.BarcodeHierarchy(code), nil)
	if err != nil {
		return nil, err
	}
	var env hierarchyEnvelope
	if json.Unmarshal(data, &env) == nil {
		if len(env.Nodes) > 0 {
			return env.Nodes, nil
		}
		if len(env.Rolls) > 0 {
			return env.Rolls, nil
		}
	}
	return decodeList[inventory.Roll](data)
}

// ListWarehouseItems fetches cut rolls available for dispatch
func (c *Client) ListWarehouseItems(ctx context.Context, query map[string]string) ([]inventory.WarehouseItem, error) {
	return getList[inventory.WarehouseItem](ctx, c, c.endpoints.WarehouseItems(query))
}

// ListWastageItems fetches reusable off-cuts
func (c *Client) ListWastageItems(ctx context.Context, query map[string]string) ([]inventory.WastageRoll, error) {
	return getList[inventory.WastageRoll](ctx, c, c.endpoints.WastageItems(query))
}

// ListManualCutRolls fetches hand-entered cut rolls
func (c *Client) ListManualCutRolls(ctx context.Context, query map[string]string) ([]inventory.ManualCutRoll, error) {
	return getList[inventory.ManualCutRoll](ctx, c, c.endpoints.ManualCutRolls(query))
}

// ListChallans fetches inward or outward material challans
func (c *Client) ListChallans(ctx context.Context, dir inventory.Direction, query map[string]string) ([]inventory.MaterialChallan, error) {
	return getList[inventory.MaterialChallan](ctx, c, c.endpoints.Challans(string(dir), query))
}

// CreateChallan records a material challan
func (c *Client) CreateChallan(ctx context.Context, dir inventory.Direction, f inventory.ChallanForm) (*inventory.MaterialChallan, error) {
	var out inventory.MaterialChallan
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.Challans(string(dir), nil), f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateChallan replaces a material challan
func (c *Client) UpdateChallan(ctx context.Context, dir inventory.Direction, id string, f inventory.ChallanForm) (*inventory.MaterialChallan, error) {
	var out inventory.MaterialChallan
	if err := c.sendJSON(ctx, http.MethodPut, c.endpoints.Challan(string(dir), id), f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChallan removes a material challan
func (c *Client) DeleteChallan(ctx context.Context, dir inventory.Direction, id string) error {
	return c.delete(ctx, c.endpoints.Challan(string(dir), id))
}

// ListMaterials fetches the raw material master
func (c *Client) ListMaterials(ctx context.Context) ([]inventory.Material, error) {
	return getList[inventory.Material](ctx, c, c.endpoints.Materials())
}
