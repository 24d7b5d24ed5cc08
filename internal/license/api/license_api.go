package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hushlane/central/internal/license/model"
	"github.com/hushlane/central/internal/license/service"
	"github.com/rs/zerolog/log"
)

type LicenseAPI struct {
	svc *service.Service
}

// RegisterLicenseRoutes mounts the license validation endpoint. No auth: the
// license key itself is the credential being checked.
func RegisterLicenseRoutes(router *gin.Engine, svc *service.Service) {
	api := &LicenseAPI{svc: svc}
	router.POST("/license/validate", api.ValidateLicense)
}

func (api *LicenseAPI) ValidateLicense(c *gin.Context) {
	var req model.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, map[string]any{
			"valid": false, "error": "INVALID_REQUEST", "message": "invalid JSON body",
		})
		return
	}

	verdict, err := api.svc.Validate(c.Request.Context(), &req)
	if err != nil {
		log.Error().Err(err).Str("customer_id", req.CustomerID).Msg("license validation failed")
		c.JSON(http.StatusInternalServerError, map[string]any{
			"valid": false, "error": "VALIDATION_ERROR", "message": err.Error(),
		})
		return
	}

	if !verdict.Valid {
		c.JSON(http.StatusUnauthorized, map[string]any{
			"valid": false, "error": verdict.Code, "message": verdict.Message,
		})
		return
	}

	var expiresAt any
	if verdict.License.ExpiresAt != nil {
		expiresAt = verdict.License.ExpiresAt
	}
	c.JSON(http.StatusOK, map[string]any{
		"valid":         true,
		"customer_name": verdict.License.CustomerName,
		"plan":          verdict.License.Plan,
		"expires_at":    expiresAt,
		"message":       verdict.Message,
	})
}
