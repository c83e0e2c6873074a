package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/papermill/portal/internal/domain/inventory"
)

// challanFormView is what challan_form.html receives
type challanFormView struct {
	Direction inventory.Direction
	ID        string
	Form      inventory.ChallanForm
	Materials []inventory.Material
	Units     []string
}

func (h *PageHandler) challanForm(c *gin.Context, d *pageData, view *challanFormView, err error) {
	d.Live = ""
	view.Units = inventory.Units
	d.Data = view
	materials, merr := h.svc.Inventory.ListMaterials(c.Request.Context())
	view.Materials = materials
	if err == nil {
		err = merr
	}
	if err != nil {
		h.fail(c, "challan_form.html", d, err)
		return
	}
	h.render(c, http.StatusOK, "challan_form.html", d)
}

// challanDirection parses :direction, rendering the error page when invalid
func (h *PageHandler) challanDirection(c *gin.Context, d *pageData) (inventory.Direction, bool) {
	dir, err := inventory.ParseDirection(c.Param("direction"))
	if err != nil {
		d.Data = &challanFormView{}
		h.fail(c, "challan_form.html", d, err)
		return "", false
	}
	d.Title = dir.Label()
	return dir, true
}

func challansURL(dir inventory.Direction) string {
	return "/challans/" + url.PathEscape(string(dir)) + "?saved=1"
}

// NewChallan handles GET /challans/:direction/new
func (h *PageHandler) NewChallan(c *gin.Context) {
	d := h.data(c, "New challan", "challans")
	dir, ok := h.challanDirection(c, d)
	if !ok {
		return
	}
	d.Title = "New " + d.Title + " challan"
	h.challanForm(c, d, &challanFormView{Direction: dir, Form: inventory.ChallanForm{Unit: "kg"}}, nil)
}

// CreateChallan handles POST /challans/:direction
func (h *PageHandler) CreateChallan(c *gin.Context) {
	d := h.data(c, "New challan", "challans")
	dir, ok := h.challanDirection(c, d)
	if !ok {
		return
	}
	f, err := challanFormFromPost(c)
	if err == nil {
		_, err = h.svc.Inventory.CreateChallan(c.Request.Context(), dir, f)
	}
	if err != nil {
		h.challanForm(c, d, &challanFormView{Direction: dir, Form: f}, err)
		return
	}
	c.Redirect(http.StatusSeeOther, challansURL(dir))
}

// EditChallan handles GET /challans/:direction/:id/edit
func (h *PageHandler) EditChallan(c *gin.Context) {
	d := h.data(c, "Edit challan", "challans")
	dir, ok := h.challanDirection(c, d)
	if !ok {
		return
	}
	id := c.Param("id")
	view := &challanFormView{Direction: dir, ID: id}
	ch, err := h.svc.Inventory.GetChallan(c.Request.Context(), dir, id)
	if err == nil {
		d.Title = "Edit challan " + ch.FrontendID
		view.Form = inventory.FormFromChallan(*ch)
	}
	h.challanForm(c, d, view, err)
}

// UpdateChallan handles POST /challans/:direction/:id
func (h *PageHandler) UpdateChallan(c *gin.Context) {
	d := h.data(c, "Edit challan", "challans")
	dir, ok := h.challanDirection(c, d)
	if !ok {
		return
	}
	id := c.Param("id")
	f, err := challanFormFromPost(c)
	if err == nil {
		_, err = h.svc.Inventory.UpdateChallan(c.Request.Context(), dir, id, f)
	}
	if err != nil {
		h.challanForm(c, d, &challanFormView{Direction: dir, ID: id, Form: f}, err)
		return
	}
	c.Redirect(http.StatusSeeOther, challansURL(dir))
}

// DeleteChallan handles POST /challans/:direction/:id/delete
func (h *PageHandler) DeleteChallan(c *gin.Context) {
	d := h.data(c, "Challans", "challans")
	dir, ok := h.challanDirection(c, d)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.svc.Inventory.DeleteChallan(c.Request.Context(), dir, id); err != nil {
		view := &challanFormView{Direction: dir, ID: id}
		if ch, gerr := h.svc.Inventory.GetChallan(c.Request.Context(), dir, id); gerr == nil {
			view.Form = inventory.FormFromChallan(*ch)
		}
		h.challanForm(c, d, view, err)
		return
	}
	c.Redirect(http.StatusSeeOther, challansURL(dir))
}
