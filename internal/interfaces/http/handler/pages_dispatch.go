package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	dispatchapp "github.com/papermill/portal/internal/application/dispatch"
	"github.com/papermill/portal/internal/domain/dispatch"
)

// dispatchFormView is what dispatch_form.html receives
type dispatchFormView struct {
	Form       dispatch.CreateForm
	Candidates *dispatchapp.Candidates
	Checked    map[string]bool
}

// dispatchForm loads the rolls that can go out for the form's client and
// renders the form. err, when set, is shown as the alert.
func (h *PageHandler) dispatchForm(c *gin.Context, d *pageData, f dispatch.CreateForm, err error) {
	d.Live = ""
	view := &dispatchFormView{Form: f, Checked: checked(f.InventoryIDs, f.WastageIDs, f.ManualCutRollIDs)}
	d.Data = view
	cands, cerr := h.svc.Dispatches.Candidates(c.Request.Context(), f.ClientID)
	if cerr == nil {
		view.Candidates = cands
	} else {
		view.Candidates = &dispatchapp.Candidates{}
	}
	if err == nil {
		err = cerr
	}
	if err != nil {
		h.fail(c, "dispatch_form.html", d, err)
		return
	}
	h.render(c, http.StatusOK, "dispatch_form.html", d)
}

// NewDispatch handles GET /dispatch/new. Picking a client reloads the
// page with ?client_id= so only that client's rolls are offered.
func (h *PageHandler) NewDispatch(c *gin.Context) {
	d := h.data(c, "New dispatch", "dispatch")
	f := dispatch.CreateForm{
		ClientID:     c.Query("client_id"),
		PaymentType:  "bill",
		DispatchDate: time.Now().Format(time.DateOnly),
	}
	h.dispatchForm(c, d, f, nil)
}

// CreateDispatch handles POST /dispatch
func (h *PageHandler) CreateDispatch(c *gin.Context) {
	d := h.data(c, "New dispatch", "dispatch")
	f := dispatchFormFromPost(c)
	rec, err := h.svc.Dispatches.Create(c.Request.Context(), f, currentUserID(c))
	if err != nil {
		h.dispatchForm(c, d, f, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dispatch/"+url.PathEscape(rec.ID)+"?created=1")
}
