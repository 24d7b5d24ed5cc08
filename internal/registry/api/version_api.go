package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root lists the public endpoints so operators can discover the surface.
func (api *Api) Root(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]any{
		"service": "central-api",
		"version": api.reporting.Latest().Version,
		"endpoints": map[string]any{
			"version":  "/latest-version",
			"register": "/instances/register",
			"license":  "/license/validate",
			"admin":    "/admin/summary",
		},
	})
}

// GetLatestVersion serves the catalog record customer instances poll to
// decide whether to self-update.
func (api *Api) GetLatestVersion(c *gin.Context) {
	c.JSON(http.StatusOK, api.reporting.Latest())
}
