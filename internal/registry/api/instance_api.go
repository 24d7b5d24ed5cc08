package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hushlane/central/internal/registry/model"
	"github.com/rs/zerolog/log"
)

// RegisterInstance ingests one heartbeat. 200 with the resulting record on
// success, 400 on validation failure, 503 when the store is unavailable.
func (api *Api) RegisterInstance(c *gin.Context) {
	var hb model.Heartbeat
	if err := c.ShouldBindJSON(&hb); err != nil {
		c.JSON(http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": "INVALID_JSON", "message": "invalid JSON body"},
		})
		return
	}

	rec, err := api.processor.Process(c.Request.Context(), &hb)
	if err != nil {
		if model.IsValidation(err) {
			c.JSON(http.StatusBadRequest, map[string]any{
				"error": map[string]any{"code": "VALIDATION_ERROR", "message": err.Error()},
			})
			return
		}
		log.Error().Err(err).Str("customer_id", hb.CustomerID).Msg("heartbeat dropped")
		c.JSON(http.StatusServiceUnavailable, map[string]any{
			"error": map[string]any{"code": "STORAGE_ERROR", "message": "registry store unavailable, retry later"},
		})
		return
	}

	c.JSON(http.StatusOK, map[string]any{"status": "success", "instance": rec})
}

func (api *Api) ListInstances(c *gin.Context) {
	records, err := api.store.ListInstances(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, map[string]any{"total": len(records), "instances": records})
}

// GetInstance serves one record, trying the cache before the store.
func (api *Api) GetInstance(c *gin.Context) {
	customerID := c.Param("customerID")

	if rec, err := api.cache.ReadInstance(c.Request.Context(), customerID); err == nil && rec != nil {
		c.JSON(http.StatusOK, rec)
		return
	} else if err != nil {
		log.Error().Err(err).Str("customer_id", customerID).Msg("instance cache read failed")
	}

	rec, err := api.store.GetInstance(c.Request.Context(), customerID)
	if errors.Is(err, model.ErrInstanceNotFound) {
		c.JSON(http.StatusNotFound, map[string]any{
			"error": map[string]any{"code": "NOT_FOUND", "message": "unknown customer_id"},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetInstanceHistory serves the version chain for one customer, oldest first.
// History may outlive the instance record, so an empty chain is still 200.
func (api *Api) GetInstanceHistory(c *gin.Context) {
	customerID := c.Param("customerID")

	entries, err := api.store.HistoryFor(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()},
		})
		return
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	c.JSON(http.StatusOK, map[string]any{"customer_id": customerID, "history": entries})
}
