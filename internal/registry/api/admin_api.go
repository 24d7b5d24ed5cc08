package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hushlane/central/internal/registry/model"
)

// GetSummary serves the aggregate dashboard view plus the catalog version.
func (api *Api) GetSummary(c *gin.Context) {
	summary, err := api.reporting.Summarize(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, map[string]any{
		"latest_version": api.reporting.Latest().Version,
		"stale_after":    api.reporting.StaleAfter().String(),
		"summary":        summary,
	})
}

// GetRecentUpdates serves the newest version transitions across all
// customers, newest first.
func (api *Api) GetRecentUpdates(c *gin.Context) {
	entries, err := api.store.RecentHistory(c.Request.Context(), api.recentUpdates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()},
		})
		return
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	c.JSON(http.StatusOK, map[string]any{"updates": entries})
}
