package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"protector-server/payments"
	"protector-server/store"
)

// RegisterPaymentRoutes sets up payment initiation and verification
func RegisterPaymentRoutes(router *gin.RouterGroup, paymentSvc *payments.Service, bookings *store.BookingStore) {
	router.POST("/initialize", func(c *gin.Context) {
		var req struct {
			BookingID  uint   `json:"booking_id" binding:"required"`
			PayerEmail string `json:"payer_email" binding:"required,email"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
			return
		}

		if _, ok := authorizeBooking(c, bookings, req.BookingID); !ok {
			return
		}

		session, err := paymentSvc.CreatePaymentSession(req.BookingID, req.PayerEmail)
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"session": session,
		})
	})

	router.GET("/verify/:reference", func(c *gin.Context) {
		reference := c.Param("reference")
		if reference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment reference is required"})
			return
		}

		bookingID, err := paymentSvc.SessionBooking(reference)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		if _, ok := authorizeBooking(c, bookings, bookingID); !ok {
			return
		}

		session, err := paymentSvc.VerifyPayment(reference)
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"session": session,
		})
	})
}
