package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atriumhq/service-reservation/internal/application"
	"github.com/atriumhq/service-reservation/pkg/auth"
	"github.com/atriumhq/service-reservation/pkg/middleware"
	"github.com/atriumhq/service-reservation/pkg/response"
)

// SpaceHandler handles HTTP requests for the space catalog.
type SpaceHandler struct {
	spaces   *application.SpaceService
	bookings *application.BookingService
}

// NewSpaceHandler creates a new SpaceHandler.
func NewSpaceHandler(spaces *application.SpaceService, bookings *application.BookingService) *SpaceHandler {
	return &SpaceHandler{spaces: spaces, bookings: bookings}
}

// RegisterRoutes registers space routes on the given router group.
func (h *SpaceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	operatorRole := middleware.RequireRole(auth.RoleOperator, auth.RoleAdmin)

	spaces := r.Group("/api/v1/spaces")
	spaces.Use(authMW)
	{
		spaces.GET("", h.ListSpaces)
		spaces.GET("/:id", h.GetSpace)
		spaces.GET("/:id/availability", h.GetAvailability)
		spaces.POST("", operatorRole, h.CreateSpace)
		spaces.PATCH("/:id", operatorRole, h.UpdateSpace)
		spaces.POST("/:id/deactivate", operatorRole, h.DeactivateSpace)
	}
}

// ListSpaces handles GET /api/v1/spaces.
func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.spaces.ListSpaces(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetSpace handles GET /api/v1/spaces/:id.
func (h *SpaceHandler) GetSpace(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid space ID")
		return
	}

	result, err := h.spaces.GetSpace(c.Request.Context(), spaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetAvailability handles GET /api/v1/spaces/:id/availability?from=&to=.
func (h *SpaceHandler) GetAvailability(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid space ID")
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		response.BadRequest(c, "invalid or missing from parameter (RFC3339)")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		response.BadRequest(c, "invalid or missing to parameter (RFC3339)")
		return
	}

	windows, err := h.bookings.GetAvailability(c.Request.Context(), spaceID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, windows)
}

// CreateSpace handles POST /api/v1/spaces.
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	var req application.CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.spaces.CreateSpace(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateSpace handles PATCH /api/v1/spaces/:id.
func (h *SpaceHandler) UpdateSpace(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid space ID")
		return
	}

	var req application.UpdateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.spaces.UpdateSpace(c.Request.Context(), spaceID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeactivateSpace handles POST /api/v1/spaces/:id/deactivate.
func (h *SpaceHandler) DeactivateSpace(c *gin.Context) {
	spaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid space ID")
		return
	}

	result, err := h.spaces.DeactivateSpace(c.Request.Context(), spaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
