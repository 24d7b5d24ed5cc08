package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health is the liveness probe. It answers 200 whenever the process serves
// requests; store reachability is reported in the body only, so a storage
// outage does not make orchestrators restart an otherwise healthy process.
func (api *Api) Health(c *gin.Context) {
	storage := "ok"
	if err := api.store.Ping(c.Request.Context()); err != nil {
		storage = "unreachable"
	}
	c.JSON(http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "central-api",
		"storage": storage,
	})
}
