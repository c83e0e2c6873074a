package handler

import (
	"embed"
	"errors"
	"html/template"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	dispatchapp "github.com/papermill/portal/internal/application/dispatch"
	inventoryapp "github.com/papermill/portal/internal/application/inventory"
	orderapp "github.com/papermill/portal/internal/application/order"
	printingapp "github.com/papermill/portal/internal/application/printing"
	reportapp "github.com/papermill/portal/internal/application/report"
	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/planning"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/auth"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/logger"
	"github.com/papermill/portal/internal/interfaces/http/dto"
	"github.com/papermill/portal/internal/interfaces/http/middleware"
)

//go:embed pages/*.html
var pageFS embed.FS

// LoadPageTemplates parses the embedded page templates. funcs is usually
// the document engine's function map, so pages format money and weights
// the same way the printed documents do.
func LoadPageTemplates(funcs template.FuncMap) (*template.Template, error) {
	fm := template.FuncMap{
		"statusLabel": func(s dispatch.Status) string { return s.Label() },
		"orderStatus": func(s order.Status) string { return s.Label() },
		"planStatus":  func(s planning.Status) string { return s.Label() },
		"pageURL":     pageURL,
		"exportURL":   exportURL,
		"hasPrev":     func(info shared.PageInfo) bool { return info.Page > 1 },
		"hasNext":     func(info shared.PageInfo) bool { return info.Page < info.TotalPages },
		"prevPage":    func(info shared.PageInfo) int { return info.Page - 1 },
		"nextPage":    func(info shared.PageInfo) int { return info.Page + 1 },
	}
	maps.Copy(fm, funcs)
	return template.New("pages").Funcs(fm).ParseFS(pageFS, "pages/*.html")
}

// pageURL rewrites the page number of the current query
func pageURL(q url.Values, page int) string {
	v := url.Values{}
	maps.Copy(v, q)
	v.Set("page", strconv.Itoa(page))
	return "?" + v.Encode()
}

// exportURL carries the page's filters onto a download link, dropping
// the pagination since exports cover every matching row
func exportURL(path string, q url.Values, format string) string {
	v := url.Values{}
	maps.Copy(v, q)
	v.Del("page")
	v.Del("page_size")
	v.Set("format", format)
	return path + "?" + v.Encode()
}

// PageServices are the application services behind the HTML pages
type PageServices struct {
	Orders     OrderService
	Plans      PlanningService
	Dispatches DispatchService
	Barcodes   BarcodeLookup
	Reports    ReportService
	Inventory  InventoryService
	Documents  DocumentService
}

// PageHandler renders the server-side HTML pages
type PageHandler struct {
	BaseHandler
	auth *AuthHandler
	svc  PageServices
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(authHandler *AuthHandler, svc PageServices) *PageHandler {
	return &PageHandler{auth: authHandler, svc: svc}
}

// pageData is what every page template receives
type pageData struct {
	Title          string
	Active         string
	User           *auth.Claims
	Alert          string
	AlertKind      string // danger, warning or success
	RequestID      string
	IdempotencyKey string
	Query          url.Values
	Data           any
	// Live lists the change-feed event types that refresh the page;
	// LiveID narrows them to one record on detail pages.
	Live   string
	LiveID string
}

// liveTopics maps a nav section to the events its pages follow
var liveTopics = map[string]string{
	"orders":   "order,client",
	"dispatch": "dispatch",
	"challans": "challan_in,challan_out",
	"plans":    "plan,order",
}

func (h *PageHandler) data(c *gin.Context, title, active string) *pageData {
	return &pageData{
		Title:          title,
		Active:         active,
		User:           middleware.CurrentClaims(c),
		RequestID:      getRequestID(c),
		IdempotencyKey: uuid.NewString(),
		Query:          c.Request.URL.Query(),
		Live:           liveTopics[active],
	}
}

// follow narrows the page's live refresh to one record
func (d *pageData) follow(topic, id string) {
	d.Live, d.LiveID = topic, id
}

// saved shows the success banner after a redirect from a form post
func (d *pageData) saved(c *gin.Context, msg string) {
	if c.Query("saved") != "" {
		d.Alert, d.AlertKind = msg, "success"
	}
}

func (h *PageHandler) render(c *gin.Context, status int, name string, d *pageData) {
	c.HTML(status, name, d)
}

// fail renders the page with an alert banner describing err. Messages of
// domain errors are shown as-is; anything else is logged and replaced by
// a generic message carrying the request id.
func (h *PageHandler) fail(c *gin.Context, name string, d *pageData, err error) {
	status, msg := http.StatusInternalServerError, "An unexpected error occurred (request "+d.RequestID+")"

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		errors.As(backend.ToDomainError(err), &domainErr)
	}
	if domainErr != nil {
		status = dto.GetHTTPStatus(dto.NormalizeErrorCode(domainErr.Code))
		msg = domainErr.Message
	} else {
		logger.GetGinLogger(c).Error("page failed", zap.String("page", name), zap.Error(err))
	}
	d.Alert, d.AlertKind = msg, "danger"
	if status == http.StatusBadGateway {
		d.AlertKind = "warning"
	}
	h.render(c, status, name, d)
}

// LoginForm handles GET /login
func (h *PageHandler) LoginForm(c *gin.Context) {
	d := h.data(c, "Sign in", "")
	d.Data = gin.H{"Next": safeNext(c.Query("next")), "Username": ""}
	h.render(c, http.StatusOK, "login.html", d)
}

// Login handles POST /login
func (h *PageHandler) Login(c *gin.Context) {
	next := safeNext(c.PostForm("next"))
	d := h.data(c, "Sign in", "")
	d.Data = gin.H{"Next": next, "Username": c.PostForm("username")}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		d.Alert, d.AlertKind = "Enter your username and password", "danger"
		h.render(c, http.StatusBadRequest, "login.html", d)
		return
	}
	if _, err := h.auth.signIn(c, req); err != nil {
		h.fail(c, "login.html", d, err)
		return
	}
	c.Redirect(http.StatusSeeOther, next)
}

// Logout handles POST /logout
func (h *PageHandler) Logout(c *gin.Context) {
	h.auth.signOut(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// safeNext only allows local redirect targets
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/orders"
	}
	return next
}

// Orders handles GET /orders
func (h *PageHandler) Orders(c *gin.Context) {
	d := h.data(c, "Orders", "orders")
	d.saved(c, "Order deleted")
	var req orderapp.ListOrdersRequest
	_ = c.ShouldBindQuery(&req)
	list, err := h.svc.Orders.ListOrders(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "orders.html", d, err)
		return
	}
	d.Data = gin.H{"List": list, "Statuses": order.AllStatuses()}
	h.render(c, http.StatusOK, "orders.html", d)
}

// OrderDetail handles GET /orders/:id
func (h *PageHandler) OrderDetail(c *gin.Context) {
	d := h.data(c, "Order", "orders")
	d.follow("order", c.Param("id"))
	d.saved(c, "Order saved")
	o, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "order_detail.html", d, err)
		return
	}
	d.Title = "Order " + o.DisplayID()
	d.Data = gin.H{"Order": o, "Statuses": order.AllStatuses()}
	h.render(c, http.StatusOK, "order_detail.html", d)
}

// Dispatches handles GET /dispatch
func (h *PageHandler) Dispatches(c *gin.Context) {
	d := h.data(c, "Dispatch history", "dispatch")
	var req dispatchapp.HistoryRequest
	_ = c.ShouldBindQuery(&req)
	history, err := h.svc.Dispatches.History(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "dispatches.html", d, err)
		return
	}
	d.Data = gin.H{"History": history, "Statuses": dispatch.AllStatuses()}
	h.render(c, http.StatusOK, "dispatches.html", d)
}

// DispatchDetail handles GET /dispatch/:id
func (h *PageHandler) DispatchDetail(c *gin.Context) {
	d := h.data(c, "Dispatch", "dispatch")
	d.follow("dispatch", c.Param("id"))
	switch {
	case c.Query("updated") != "":
		d.Alert, d.AlertKind = "Dispatch status updated", "success"
	case c.Query("created") != "":
		d.Alert, d.AlertKind = "Dispatch created", "success"
	}
	details, err := h.svc.Dispatches.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "dispatch_detail.html", d, err)
		return
	}
	d.Title = "Dispatch " + details.Number()
	d.Data = details
	h.render(c, http.StatusOK, "dispatch_detail.html", d)
}

// DispatchStatus handles POST /dispatch/:id/status
func (h *PageHandler) DispatchStatus(c *gin.Context) {
	id := c.Param("id")
	status := dispatch.Status(c.PostForm("status"))
	if _, err := h.svc.Dispatches.UpdateStatus(c.Request.Context(), id, status); err != nil {
		d := h.data(c, "Dispatch", "dispatch")
		if details, derr := h.svc.Dispatches.Details(c.Request.Context(), id); derr == nil {
			d.Title = "Dispatch " + details.Number()
			d.Data = details
		}
		h.fail(c, "dispatch_detail.html", d, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dispatch/"+url.PathEscape(id)+"?updated=1")
}

// Barcode handles GET /barcode
func (h *PageHandler) Barcode(c *gin.Context) {
	d := h.data(c, "Roll lookup", "barcode")
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		h.render(c, http.StatusOK, "barcode.html", d)
		return
	}
	res, err := h.svc.Barcodes.Lookup(c.Request.Context(), code)
	if err != nil {
		h.fail(c, "barcode.html", d, err)
		return
	}
	d.Data = res
	h.render(c, http.StatusOK, "barcode.html", d)
}

// Reports handles GET /reports and GET /reports/:name
func (h *PageHandler) Reports(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		name = reportapp.CutRolls
	}
	d := h.data(c, "Reports", "reports")
	view := gin.H{"Name": name, "Names": reportapp.Names}
	d.Data = view

	ctx := c.Request.Context()
	var err error
	switch name {
	case reportapp.CutRolls:
		var req reportapp.CutRollsRequest
		_ = c.ShouldBindQuery(&req)
		view["CutRolls"], err = h.svc.Reports.CutRolls(ctx, req)
	case reportapp.PendingOrders:
		var req reportapp.PendingOrdersRequest
		_ = c.ShouldBindQuery(&req)
		view["Pending"], err = h.svc.Reports.PendingOrders(ctx, req)
	case reportapp.ClientOrderSummary:
		view["ClientSummary"], err = h.svc.Reports.ClientOrderSummary(ctx, c.Query("from_date"), c.Query("to_date"))
	default:
		err = shared.NewDomainError("NOT_FOUND", "Unknown report: "+name)
	}
	if err != nil {
		h.fail(c, "reports.html", d, err)
		return
	}
	h.render(c, http.StatusOK, "reports.html", d)
}

// Challans handles GET /challans/:direction
func (h *PageHandler) Challans(c *gin.Context) {
	d := h.data(c, "Challans", "challans")
	dir, err := inventory.ParseDirection(c.Param("direction"))
	if err != nil {
		h.fail(c, "challans.html", d, err)
		return
	}
	d.Title = dir.Label()
	d.saved(c, "Challan saved")
	var req inventoryapp.ListChallansRequest
	_ = c.ShouldBindQuery(&req)
	page, err := h.svc.Inventory.ListChallans(c.Request.Context(), dir, req)
	if err != nil {
		h.fail(c, "challans.html", d, err)
		return
	}
	d.Data = gin.H{"Direction": dir, "Page": page}
	h.render(c, http.StatusOK, "challans.html", d)
}

// Documents handles GET /documents
func (h *PageHandler) Documents(c *gin.Context) {
	d := h.data(c, "Documents", "documents")
	if id := c.Query("generated"); id != "" {
		d.Alert, d.AlertKind = "Document generated", "success"
	}
	var req printingapp.ListJobsRequest
	_ = c.ShouldBindQuery(&req)
	jobs, err := h.svc.Documents.ListJobs(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "documents.html", d, err)
		return
	}
	d.Data = gin.H{"Jobs": jobs, "Types": h.svc.Documents.GetDocumentTypes()}
	h.render(c, http.StatusOK, "documents.html", d)
}

// GenerateDocument handles POST /documents/generate
func (h *PageHandler) GenerateDocument(c *gin.Context) {
	req := printingapp.GenerateRequest{
		DocumentType: c.PostForm("document_type"),
		ReferenceID:  strings.TrimSpace(c.PostForm("reference_id")),
		TemplateID:   c.PostForm("template_id"),
		Reuse:        c.PostForm("reuse") != "",
	}
	res, err := h.svc.Documents.Generate(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		d := h.data(c, "Documents", "documents")
		if jobs, jerr := h.svc.Documents.ListJobs(c.Request.Context(), printingapp.ListJobsRequest{}); jerr == nil {
			d.Data = gin.H{"Jobs": jobs, "Types": h.svc.Documents.GetDocumentTypes()}
		}
		h.fail(c, "documents.html", d, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/documents?generated="+url.QueryEscape(res.Job.ID))
}
