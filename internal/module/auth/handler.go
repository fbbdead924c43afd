package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/apiclient/internal/shared/response"
)

var errorMappings = []response.ErrorMapping{
	{Err: ErrInvalidToken, Status: http.StatusUnauthorized, Code: "INVALID_TOKEN", Message: "invalid token"},
	{Err: ErrAppToken, Status: http.StatusUnauthorized, Code: "APP_TOKEN", Message: "token is not bound to a user"},
	{Err: ErrInvalidOAuthCode, Status: http.StatusBadRequest, Code: "INVALID_OAUTH_CODE", Message: "invalid oauth code"},
	{Err: ErrInvalidOAuthState, Status: http.StatusBadRequest, Code: "INVALID_OAUTH_STATE", Message: "invalid oauth state"},
}

// Handler handles HTTP requests for authentication.
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LoginRequest starts a login. Empty scopes means the configured defaults.
type LoginRequest struct {
	Scopes      []string `json:"scopes"`
	ForceVerify bool     `json:"force_verify"`
}

// CallbackRequest completes a login.
type CallbackRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state" binding:"required"`
}

// RegisterRoutes registers auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.InitiateLogin)
		auth.POST("/callback", h.Callback)
		auth.GET("/verify", h.Verify)
	}
}

// InitiateLogin starts the OAuth login flow.
// POST /auth/login
func (h *Handler) InitiateLogin(c *gin.Context) {
	var req LoginRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	var scopes []string
	if len(req.Scopes) > 0 {
		scopes = req.Scopes
	}

	resp, err := h.service.InitiateLogin(c.Request.Context(), scopes, req.ForceVerify)
	if err != nil {
		response.HandleError(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Callback handles the OAuth callback.
// POST /auth/callback
func (h *Handler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CompleteLogin(c.Request.Context(), req.Code, req.State)
	if err != nil {
		response.HandleError(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify checks the bearer token of the request.
// GET /auth/verify
func (h *Handler) Verify(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		response.Unauthorized(c, "authorization header required")
		return
	}

	verification, err := h.service.Verify(c.Request.Context(), token)
	if err != nil {
		response.HandleError(c, err, errorMappings)
		return
	}

	c.JSON(http.StatusOK, verification)
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
