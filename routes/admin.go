package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"protector-server/middleware"
	"protector-server/models"
	"protector-server/services"
)

// RegisterAdminRoutes sets up staff-only administration endpoints
func RegisterAdminRoutes(router *gin.RouterGroup, provisioning *services.ProvisioningService) {
	router.Use(middleware.RequireRole(models.RoleAdmin))

	router.POST("/operators", func(c *gin.Context) {
		var req services.ProvisionOperatorInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		operator, err := provisioning.ProvisionOperator(req)
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"operator": operator,
		})
	})
}
