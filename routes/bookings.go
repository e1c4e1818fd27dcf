package routes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"protector-server/middleware"
	"protector-server/models"
	"protector-server/store"
)

// RegisterBookingRoutes sets up the booking endpoints
func RegisterBookingRoutes(router *gin.RouterGroup, bookings *store.BookingStore) {
	router.POST("", middleware.RequireRole(models.RoleClient), func(c *gin.Context) {
		var req struct {
			ServiceID     uint    `json:"service_id" binding:"required"`
			PickupAddress string  `json:"pickup_address" binding:"required"`
			Destination   *string `json:"destination"`
			ScheduledDate string  `json:"scheduled_date" binding:"required"`
			ScheduledTime string  `json:"scheduled_time" binding:"required"`
			DurationHours int     `json:"duration_hours"`
			Notes         *string `json:"notes"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be YYYY-MM-DD"})
			return
		}

		booking, err := bookings.Create(store.CreateBookingInput{
			ClientID:      c.GetUint("user_id"),
			ServiceID:     req.ServiceID,
			PickupAddress: req.PickupAddress,
			Destination:   req.Destination,
			ScheduledDate: scheduledDate,
			ScheduledTime: req.ScheduledTime,
			DurationHours: req.DurationHours,
			Notes:         req.Notes,
		})
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"booking": booking,
		})
	})

	router.GET("", func(c *gin.Context) {
		role := models.UserRole(c.GetString("user_role"))

		// Operators and admins see the full book; clients only their own
		var (
			list []models.Booking
			err  error
		)
		if role == models.RoleOperator || role == models.RoleAdmin {
			list, err = bookings.List(models.BookingStatus(c.Query("status")))
		} else {
			list, err = bookings.ListByClient(c.GetUint("user_id"))
		}
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"bookings": list,
		})
	})

	router.GET("/:id", func(c *gin.Context) {
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := bookings.GetByID(uint(bookingID))
		if err != nil {
			respondStoreError(c, err)
			return
		}

		if !canAccessBooking(c, booking) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"booking": booking,
		})
	})

	router.PATCH("/:id/status", middleware.RequireRole(models.RoleOperator, models.RoleAdmin), func(c *gin.Context) {
		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
			return
		}

		var req struct {
			Status models.BookingStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		booking, err := bookings.UpdateStatus(uint(bookingID), req.Status, c.GetUint("user_id"))
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"booking": booking,
		})
	})
}

// canAccessBooking allows staff, the booking's client, and its operator
func canAccessBooking(c *gin.Context, booking *models.Booking) bool {
	role := models.UserRole(c.GetString("user_role"))
	if role == models.RoleOperator || role == models.RoleAdmin {
		return true
	}
	return booking.ClientID == c.GetUint("user_id")
}

// respondStoreError maps the store error taxonomy onto HTTP statuses
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrForeignKey):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNoInvoice):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrTransport):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
