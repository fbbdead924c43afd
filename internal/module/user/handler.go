package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/apiclient/internal/shared/response"
)

// Handler exposes user lookups over HTTP.
type Handler struct {
	resolver *Resolver
}

// NewHandler creates a new user handler.
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// RegisterRoutes registers the user routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
	}
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.resolver.Resolve(c.Request.Context(), c.Param("id"), forceParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": u})
}

// ListUsers handles GET /users?id=a&id=b.
// With ordered=true the result follows the order of the id parameters.
func (h *Handler) ListUsers(c *gin.Context) {
	ids := c.QueryArray("id")
	if len(ids) == 0 {
		response.BadRequest(c, "at least one id is required")
		return
	}

	users, err := h.resolver.ResolveMany(c.Request.Context(), ids, forceParam(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	if ordered, _ := strconv.ParseBool(c.Query("ordered")); ordered {
		SortByIDs(users, ids)
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

func forceParam(c *gin.Context) bool {
	force, _ := strconv.ParseBool(c.Query("force"))
	return force
}
