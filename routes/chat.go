package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"protector-server/chat"
	"protector-server/middleware"
	"protector-server/models"
	"protector-server/store"
	ws "protector-server/websocket"
)

// ChatRoutes sets up the message endpoints and the WebSocket entry point.
// Reads and writes go through the chat service; the WebSocket is only the
// delivery surface for the change feed.
func ChatRoutes(router *gin.Engine, hub *ws.Hub, chatSvc *chat.Service, bookings *store.BookingStore) {
	api := router.Group("/api/v1")

	messages := api.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.GET("", func(c *gin.Context) {
			bookingID, ok := bookingFromQuery(c, bookings)
			if !ok {
				return
			}

			thread, err := chatSvc.GetMessages(bookingID)
			if err != nil {
				respondStoreError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"messages": thread,
				"degraded": chatSvc.Degraded(),
			})
		})

		messages.POST("", func(c *gin.Context) {
			var req struct {
				BookingID uint               `json:"booking_id" binding:"required"`
				Content   string             `json:"content" binding:"required"`
				Type      models.MessageType `json:"message_type"`
				RequestID string             `json:"request_id"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
				return
			}

			booking, ok := authorizeBooking(c, bookings, req.BookingID)
			if !ok {
				return
			}

			msgType := req.Type
			if msgType == "" {
				msgType = models.MessageTypeText
			}

			senderType, recipientID := senderAndRecipient(c, booking)

			message, err := chatSvc.PostMessage(store.SendInput{
				BookingID:   req.BookingID,
				SenderType:  senderType,
				SenderID:    c.GetUint("user_id"),
				RecipientID: recipientID,
				Content:     req.Content,
				Type:        msgType,
				RequestID:   req.RequestID,
			})
			if err != nil {
				respondStoreError(c, err)
				return
			}

			c.JSON(http.StatusCreated, gin.H{
				"success": true,
				"message": message,
			})
		})

		messages.POST("/mark-read", func(c *gin.Context) {
			var req struct {
				BookingID uint `json:"booking_id" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
				return
			}

			if _, ok := authorizeBooking(c, bookings, req.BookingID); !ok {
				return
			}

			if err := chatSvc.MarkRead(req.BookingID, c.GetUint("user_id")); err != nil {
				respondStoreError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	}

	// WebSocket connection, booking-scoped
	router.GET("/api/v1/chat/ws", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		bookingID, ok := bookingFromQuery(c, bookings)
		if !ok {
			return
		}

		role := models.UserRole(c.GetString("user_role"))
		ws.ServeWebSocket(hub, c.Writer, c.Request, c.GetUint("user_id"), role, bookingID)
	})
}

// bookingFromQuery parses bookingId and checks the caller may see the booking
func bookingFromQuery(c *gin.Context, bookings *store.BookingStore) (uint, bool) {
	raw := c.Query("bookingId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingId query parameter is required"})
		return 0, false
	}
	bookingID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bookingId"})
		return 0, false
	}

	if _, ok := authorizeBooking(c, bookings, uint(bookingID)); !ok {
		return 0, false
	}
	return uint(bookingID), true
}

// authorizeBooking loads the booking and enforces participant access
func authorizeBooking(c *gin.Context, bookings *store.BookingStore, bookingID uint) (*models.Booking, bool) {
	booking, err := bookings.GetByID(bookingID)
	if err != nil {
		respondStoreError(c, err)
		return nil, false
	}
	if !canAccessBooking(c, booking) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}
	return booking, true
}

// senderAndRecipient derives the message tags from the caller's role
func senderAndRecipient(c *gin.Context, booking *models.Booking) (models.SenderType, uint) {
	role := models.UserRole(c.GetString("user_role"))
	if role == models.RoleClient {
		var operatorID uint
		if booking.OperatorID != nil {
			operatorID = *booking.OperatorID
		}
		return models.SenderClient, operatorID
	}
	return models.SenderOperator, booking.ClientID
}
