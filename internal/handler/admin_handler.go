package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atriumhq/service-reservation/internal/application"
	bookingDomain "github.com/atriumhq/service-reservation/internal/domain/booking"
	"github.com/atriumhq/service-reservation/pkg/auth"
	"github.com/atriumhq/service-reservation/pkg/middleware"
	"github.com/atriumhq/service-reservation/pkg/response"
)

// AdminBookingHandler handles operator and admin HTTP requests for
// booking management.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers operator booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	operatorRole := middleware.RequireRole(auth.RoleOperator, auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, operatorRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/by-reference/:reference", h.GetByReference)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/bookings/:id/conflicts", h.ListConflicts)
		admin.POST("/bookings/:id/confirm", h.ConfirmBooking)
		admin.POST("/bookings/:id/transition", h.TransitionBooking)
		admin.POST("/bookings/:id/check-in", h.eventAction(bookingDomain.EventCheckIn))
		admin.POST("/bookings/:id/request-checkout", h.eventAction(bookingDomain.EventRequestCheckout))
		admin.POST("/bookings/:id/complete", h.eventAction(bookingDomain.EventComplete))
		admin.POST("/bookings/:id/cancel", h.eventAction(bookingDomain.EventCancel))
		admin.POST("/bookings/:id/reject", h.eventAction(bookingDomain.EventReject))
		admin.POST("/bookings/:id/no-show", h.eventAction(bookingDomain.EventMarkNoShow))
		admin.POST("/bookings/:id/abandon", h.eventAction(bookingDomain.EventMarkAbandoned))
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// GetByReference handles GET /api/v1/admin/bookings/by-reference/:reference.
// Operators look bookings up by the code customers quote at the desk.
func (h *AdminBookingHandler) GetByReference(c *gin.Context) {
	result, err := h.service.GetBookingByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListConflicts handles GET /api/v1/admin/bookings/:id/conflicts. The
// peer set is computed on demand and never cached.
func (h *AdminBookingHandler) ListConflicts(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	peers, err := h.service.GetConflictPeers(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, peers)
}

// ConfirmBooking handles POST /api/v1/admin/bookings/:id/confirm.
// Confirmation always runs conflict resolution: the target wins and
// every live overlapping sibling is cancelled in the same transaction.
func (h *AdminBookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.ResolveByConfirming(c.Request.Context(), bookingID, operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// TransitionBooking handles POST /api/v1/admin/bookings/:id/transition
// with an explicit event name in the body.
func (h *AdminBookingHandler) TransitionBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		Event  string `json:"event" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := bookingDomain.ParseEvent(body.Event)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Confirmation must carry the conflict cascade with it.
	if event == bookingDomain.EventConfirm {
		result, err := h.service.ResolveByConfirming(c.Request.Context(), bookingID, operatorID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	result, err := h.service.Transition(c.Request.Context(), bookingID, event, operatorID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// eventAction builds a handler for a fixed operator event.
func (h *AdminBookingHandler) eventAction(event bookingDomain.Event) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid booking ID")
			return
		}

		operatorID, ok := middleware.GetUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&body)

		result, err := h.service.Transition(c.Request.Context(), bookingID, event, operatorID, body.Reason)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}
