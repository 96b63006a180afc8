package http

import (
	"log/slog"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/auth"
	"github.com/geocoder89/qtohub/internal/config"
	"github.com/geocoder89/qtohub/internal/http/handlers"
	"github.com/geocoder89/qtohub/internal/http/middlewares"
	"github.com/geocoder89/qtohub/internal/observability"
	"github.com/geocoder89/qtohub/internal/service"
	"github.com/geocoder89/qtohub/internal/spreadsheet"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const jsonBodyLimit = 1 << 20

// Deps is everything the router needs from main. Prom, Gatherer, Limiter
// and Ready are optional.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Users    handlers.UserStore
	Projects service.ProjectStore
	Items    service.ItemStore
	Sessions *auth.Manager
	Limiter  middlewares.Limiter
	Ready    map[string]handlers.Pinger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	secure := d.Cfg.IsProd()

	var (
		rowObserver     spreadsheet.RowObserver
		sessionObserver interface{ ObserveSession(string) }
	)
	if d.Prom != nil {
		rowObserver = d.Prom
		sessionObserver = d.Prom
	}

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("qtohub"))
	r.Use(middlewares.RequestID())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders("/", "/login", "/register", "/static"))
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))

	gate := middlewares.NewGatekeeper(d.Sessions, secure, sessionObserver)
	r.Use(gate.Identify())
	r.Use(middlewares.RequestLogger(d.Log))

	// services
	projectSvc := service.NewProjects(d.Projects, d.Log)
	itemSvc := service.NewItems(d.Items, d.Projects, d.Log)
	bridge := spreadsheet.NewBridge(projectSvc, itemSvc, rowObserver, d.Log)

	// handlers
	health := handlers.NewHealthHandler(d.Ready)
	pages := handlers.NewPagesHandler(d.Cfg.StaticDir)
	authH := handlers.NewAuthHandler(d.Users, d.Sessions, secure, sessionObserver, d.Log)
	projectsH := handlers.NewProjectsHandler(projectSvc)
	itemsH := handlers.NewItemsHandler(itemSvc)
	sheetH := handlers.NewSpreadsheetHandler(bridge)

	limiter := d.Limiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(d.Cfg.LoginRateLimit, d.Cfg.LoginRateWindow)
	}
	authLimit := middlewares.RateLimit(limiter, middlewares.KeyByIP)

	// public
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	r.Static("/static", d.Cfg.StaticDir)

	r.GET("/", pages.Home)
	r.GET("/login", gate.RedirectAuthenticated(), pages.LoginPage)
	r.GET("/register", gate.RedirectAuthenticated(), pages.RegisterPage)
	r.POST("/login", authLimit, middlewares.MaxBodyBytes(jsonBodyLimit), middlewares.RequireJSON(), authH.Login)
	r.POST("/register", authLimit, middlewares.MaxBodyBytes(jsonBodyLimit), middlewares.RequireJSON(), authH.Register)
	r.POST("/logout", authH.Logout)
	r.GET("/session", authH.Session)

	// authenticated
	projects := r.Group("/projects",
		gate.RequireSession(),
		middlewares.RequireAnyRole(access.RoleAdmin, access.RoleProjectManager, access.RoleDataEntry),
	)
	{
		projects.GET("", projectsH.ListProjects)
		projects.POST("", jsonBody(projectsH.CreateProject)...)
		projects.GET("/:id", projectsH.GetProject)
		projects.PUT("/:id", jsonBody(projectsH.UpdateProject)...)
		projects.DELETE("/:id", projectsH.DeleteProject)

		projects.GET("/:id/items", itemsH.ListItems)
		projects.POST("/:id/items", jsonBody(itemsH.CreateItem)...)
		projects.PUT("/:id/items/:itemId", jsonBody(itemsH.UpdateItem)...)
		projects.DELETE("/:id/items/:itemId", itemsH.DeleteItem)

		projects.GET("/:id/export", sheetH.ExportProject)
		projects.POST("/:id/import", middlewares.MaxBodyBytes(d.Cfg.MaxUploadBytes), middlewares.RequireMultipart(), sheetH.ImportProject)
	}

	return r
}

// jsonBody prefixes h with the body size cap and content type check used by
// every JSON write route.
func jsonBody(h gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{middlewares.MaxBodyBytes(jsonBodyLimit), middlewares.RequireJSON(), h}
}
