package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"protector-server/database"
	"protector-server/middleware"
	"protector-server/models"
	"protector-server/services"
	"protector-server/utils"
)

// RegisterAuthRoutes sets up the authentication endpoints
func RegisterAuthRoutes(router *gin.RouterGroup, jwtService *services.JWTService) {
	router.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		var user models.User
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			return
		}

		tokens, err := jwtService.GenerateTokenPair(&user, c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user,
			"tokens":  tokens,
		})
	})

	router.POST("/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		tokens, err := jwtService.RotateRefreshToken(req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"tokens":  tokens,
		})
	})

	router.POST("/logout", middleware.AuthMiddleware(), func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
			jwtService.RevokeRefreshToken(req.RefreshToken)
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	router.GET("/me", middleware.AuthMiddleware(), func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user,
		})
	})
}
