package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"protector-server/database"
	"protector-server/models"
)

// RegisterServiceRoutes sets up the public protection-service catalog
func RegisterServiceRoutes(router *gin.RouterGroup) {
	router.GET("", func(c *gin.Context) {
		var services []models.Service
		if err := database.DB.Where("is_active = ?", true).Order("base_price ASC").Find(&services).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"services": services,
		})
	})
}
