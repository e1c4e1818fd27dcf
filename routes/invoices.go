package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"protector-server/chat"
	"protector-server/middleware"
	"protector-server/models"
	"protector-server/store"
)

// RegisterInvoiceRoutes sets up the operator invoice endpoint
func RegisterInvoiceRoutes(router *gin.RouterGroup, chatSvc *chat.Service, bookings *store.BookingStore) {
	router.POST("", middleware.RequireRole(models.RoleOperator, models.RoleAdmin), func(c *gin.Context) {
		var req struct {
			BookingID    uint   `json:"booking_id" binding:"required"`
			BasePrice    int64  `json:"base_price"`
			HourlyRate   int64  `json:"hourly_rate"`
			Duration     int    `json:"duration" binding:"required"`
			VehicleFee   int64  `json:"vehicle_fee"`
			PersonnelFee int64  `json:"personnel_fee"`
			Currency     string `json:"currency"`
			RequestID    string `json:"request_id"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		booking, ok := authorizeBooking(c, bookings, req.BookingID)
		if !ok {
			return
		}

		message, err := chatSvc.SendInvoice(req.BookingID, c.GetUint("user_id"), booking.ClientID,
			models.InvoicePayload{
				BasePrice:    req.BasePrice,
				HourlyRate:   req.HourlyRate,
				Duration:     req.Duration,
				VehicleFee:   req.VehicleFee,
				PersonnelFee: req.PersonnelFee,
				Currency:     req.Currency,
			}, req.RequestID)
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": message,
		})
	})
}
