package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papermill/portal/internal/interfaces/http/handler"
)

// Handlers are the endpoint handlers the portal serves
type Handlers struct {
	Auth      *handler.AuthHandler
	Orders    *handler.OrderHandler
	Planning  *handler.PlanningHandler
	Barcode   *handler.BarcodeHandler
	Inventory *handler.InventoryHandler
	Dispatch  *handler.DispatchHandler
	Reports   *handler.ReportHandler
	Documents *handler.DocumentHandler
	System    *handler.SystemHandler
	Pages     *handler.PageHandler
	// Realtime upgrades /ws to the change feed; nil disables it
	Realtime http.Handler
}

// Guards are the middleware placed in front of route groups. Nil guards
// are skipped.
type Guards struct {
	// APISession authenticates /api routes, answering 401 otherwise
	APISession gin.HandlerFunc
	// PageSession authenticates pages, redirecting to /login otherwise
	PageSession gin.HandlerFunc
	// LoginLimit throttles sign-in attempts
	LoginLimit gin.HandlerFunc
	// Idempotency rejects repeated form submissions
	Idempotency gin.HandlerFunc
}

func (g Guards) chain(mw ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw))
	for _, m := range mw {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// APIGroups returns the /api/v1 route table
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	signedIn := g.chain(g.APISession, g.Idempotency)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", append(g.chain(g.LoginLimit), h.Auth.Login)...)
	auth.Group("session", "").Use(signedIn...).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.System.Ping)
	system.Group("info", "").Use(signedIn...).GET("/info", h.System.GetSystemInfo)

	orders := NewDomainGroup("orders", "").Use(signedIn...)
	orders.GET("/orders", h.Orders.List).
		POST("/orders", h.Orders.Create).
		GET("/orders/:id", h.Orders.Get).
		PUT("/orders/:id", h.Orders.Update).
		PUT("/orders/:id/status", h.Orders.UpdateStatus).
		DELETE("/orders/:id", h.Orders.Delete).
		GET("/clients", h.Orders.ListClients).
		POST("/clients", h.Orders.CreateClient).
		PUT("/clients/:id", h.Orders.UpdateClient).
		DELETE("/clients/:id", h.Orders.DeleteClient).
		GET("/papers", h.Orders.ListPapers).
		POST("/papers", h.Orders.CreatePaper)

	planning := NewDomainGroup("planning", "").Use(signedIn...)
	planning.GET("/plans", h.Planning.List).
		POST("/plans", h.Planning.Create).
		POST("/plans/preview", h.Planning.Preview).
		GET("/plans/:id", h.Planning.Get).
		PUT("/plans/:id/status", h.Planning.UpdateStatus).
		POST("/plans/:id/start-production", h.Planning.StartProduction).
		GET("/pending-items", h.Planning.ListPending)

	barcode := NewDomainGroup("barcode", "/barcode").Use(signedIn...)
	barcode.GET("/:code", h.Barcode.Lookup)

	inventory := NewDomainGroup("inventory", "").Use(signedIn...)
	inventory.GET("/challans/:direction", h.Inventory.ListChallans).
		POST("/challans/:direction", h.Inventory.CreateChallan).
		GET("/challans/:direction/:id", h.Inventory.GetChallan).
		PUT("/challans/:direction/:id", h.Inventory.UpdateChallan).
		DELETE("/challans/:direction/:id", h.Inventory.DeleteChallan).
		GET("/inventory/materials", h.Inventory.ListMaterials).
		GET("/inventory/warehouse", h.Inventory.ListWarehouse).
		GET("/inventory/wastage", h.Inventory.ListWastage).
		GET("/inventory/manual-cut-rolls", h.Inventory.ListManualCutRolls)

	dispatch := NewDomainGroup("dispatch", "/dispatch").Use(signedIn...)
	dispatch.GET("/history", h.Dispatch.History).
		GET("/candidates", h.Dispatch.Candidates).
		POST("", h.Dispatch.Create).
		GET("/:id", h.Dispatch.Details).
		PUT("/:id/status", h.Dispatch.UpdateStatus).
		GET("/:id/pdf", h.Dispatch.PDF)

	reports := NewDomainGroup("reports", "/reports").Use(signedIn...)
	reports.GET("", h.Reports.List).
		GET("/:name", h.Reports.Get)

	documents := NewDomainGroup("documents", "/documents").Use(signedIn...)
	documents.GET("/types", h.Documents.Types).
		GET("/templates", h.Documents.Templates).
		GET("/preview", h.Documents.PreviewHTML).
		POST("/preview", h.Documents.Preview).
		POST("/generate", h.Documents.Generate).
		GET("/jobs", h.Documents.ListJobs).
		GET("/jobs/:id", h.Documents.GetJob).
		GET("/jobs/:id/download", h.Documents.Download)

	return []*DomainGroup{auth, system, orders, planning, barcode, inventory, dispatch, reports, documents}
}

// Mount registers the whole portal on engine: health, the change feed,
// the versioned API and the HTML pages
func Mount(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/health", h.System.Health)

	NewRouter(engine, WithAPIVersion("v1")).
		Register(toRegistrars(APIGroups(h, g))...).
		Setup()

	if h.Realtime != nil {
		engine.GET("/ws", append(g.chain(g.PageSession), gin.WrapH(h.Realtime))...)
	}
	if h.Pages != nil {
		mountPages(engine, h.Pages, g)
	}
}

func toRegistrars(groups []*DomainGroup) []RouteRegistrar {
	out := make([]RouteRegistrar, len(groups))
	for i, dg := range groups {
		out[i] = dg
	}
	return out
}

func mountPages(engine *gin.Engine, p *handler.PageHandler, g Guards) {
	login := engine.Group("/login")
	login.GET("", p.LoginForm)
	login.POST("", append(g.chain(g.LoginLimit), p.Login)...)

	pages := engine.Group("/", g.chain(g.PageSession, g.Idempotency)...)
	pages.GET("", func(c *gin.Context) { c.Redirect(http.StatusFound, "/orders") })
	pages.POST("/logout", p.Logout)
	pages.GET("/orders", p.Orders)
	pages.GET("/orders/new", p.NewOrder)
	pages.POST("/orders", p.CreateOrder)
	pages.GET("/orders/:id", p.OrderDetail)
	pages.GET("/orders/:id/edit", p.EditOrder)
	pages.POST("/orders/:id", p.UpdateOrder)
	pages.POST("/orders/:id/status", p.OrderStatus)
	pages.POST("/orders/:id/delete", p.DeleteOrder)
	pages.GET("/plans", p.Plans)
	pages.GET("/plans/new", p.NewPlan)
	pages.POST("/plans/preview", p.PreviewPlan)
	pages.POST("/plans", p.CreatePlan)
	pages.GET("/plans/:id", p.PlanDetail)
	pages.POST("/plans/:id/start-production", p.StartProduction)
	pages.POST("/plans/:id/status", p.PlanStatus)
	pages.GET("/pending-items", p.PendingItems)
	pages.GET("/dispatch", p.Dispatches)
	pages.GET("/dispatch/new", p.NewDispatch)
	pages.POST("/dispatch", p.CreateDispatch)
	pages.GET("/dispatch/:id", p.DispatchDetail)
	pages.POST("/dispatch/:id/status", p.DispatchStatus)
	pages.GET("/barcode", p.Barcode)
	pages.GET("/reports", p.Reports)
	pages.GET("/reports/:name", p.Reports)
	pages.GET("/challans/:direction", p.Challans)
	pages.GET("/challans/:direction/new", p.NewChallan)
	pages.POST("/challans/:direction", p.CreateChallan)
	pages.GET("/challans/:direction/:id/edit", p.EditChallan)
	pages.POST("/challans/:direction/:id", p.UpdateChallan)
	pages.POST("/challans/:direction/:id/delete", p.DeleteChallan)
	pages.GET("/documents", p.Documents)
	pages.POST("/documents/generate", p.GenerateDocument)
}
