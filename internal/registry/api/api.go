package api

import (
	"github.com/gin-gonic/gin"
	"github.com/hushlane/central/internal/config"
	"github.com/hushlane/central/internal/middleware"
	"github.com/hushlane/central/internal/registry/database"
	"github.com/hushlane/central/internal/registry/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Api wires the registry HTTP surface: public heartbeat ingest and version
// distribution, plus the basic-auth admin surface over the reporting view.
type Api struct {
	processor *service.Processor
	reporting *service.Reporting
	store     database.Store
	cache     service.InstanceCache

	recentUpdates int
}

type Deps struct {
	Processor *service.Processor
	Reporting *service.Reporting
	Store     database.Store
	Cache     service.InstanceCache
}

func NewApi(router *gin.Engine, cfg *config.Config, deps Deps) *Api {
	cache := deps.Cache
	if cache == nil {
		cache = service.NoopCache{}
	}
	api := &Api{
		processor:     deps.Processor,
		reporting:     deps.Reporting,
		store:         deps.Store,
		cache:         cache,
		recentUpdates: cfg.Registry.RecentUpdates,
	}
	api.setupRouters(router, cfg)
	return api
}

func (api *Api) setupRouters(router *gin.Engine, cfg *config.Config) {
	// public surface; instances self-identify by customer_id
	router.GET("/", api.Root)
	router.GET("/latest-version", api.GetLatestVersion)
	router.POST("/instances/register", api.RegisterInstance)
	router.GET("/health", api.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// operator surface behind the opaque admin gate
	admin := router.Group("/admin", middleware.BasicAuth(cfg.Admin.User, cfg.Admin.Pass))
	admin.GET("/summary", api.GetSummary)
	admin.GET("/instances", api.ListInstances)
	admin.GET("/instances/:customerID", api.GetInstance)
	admin.GET("/instances/:customerID/history", api.GetInstanceHistory)
	admin.GET("/updates", api.GetRecentUpdates)
}
