// Package v1 exposes the HTTP surface for API version 1. Handlers stay
// thin: bind, call the logic layer, map errors to status codes.
package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
	"github.com/minhngo/wellness-sessions/internal/logger"
	logicv1 "github.com/minhngo/wellness-sessions/internal/logic/v1"
	"github.com/minhngo/wellness-sessions/middleware"
)

// Handler groups the HTTP handlers for API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth     *logicv1.AuthService
	sessions *logicv1.SessionService
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, sessions *logicv1.SessionService) *Handler {
	return &Handler{auth: auth, sessions: sessions}
}

// RegisterRoutes registers all API routes on the given group. requireAuth
// guards the endpoints that need an authenticated caller.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/users/register/", h.Register)
	rg.POST("/users/login/", h.Login)
	rg.GET("/users/me/", requireAuth, h.Me)

	rg.GET("/sessions/", h.ListPublicSessions)
	rg.GET("/my-sessions/", requireAuth, h.ListMySessions)
	rg.GET("/my-sessions/:id/", requireAuth, h.GetMySession)
	rg.POST("/my-sessions/save-draft/", requireAuth, h.SaveDraft)
	rg.POST("/my-sessions/publish/", requireAuth, h.Publish)
}

// Register handles POST /api/users/register/.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	response, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"detail": "A user with this email already exists."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		}
		return
	}

	log.Info().Int64("user_id", response.User.ID).Msg("User registered")
	c.JSON(http.StatusCreated, response)
}

// Login handles POST /api/users/login/.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Login failed")

		switch {
		case errors.Is(err, logicv1.ErrUserNotFound),
			errors.Is(err, logicv1.ErrInvalidCredentials),
			errors.Is(err, logicv1.ErrUserInactive):
			// One message for all three: don't reveal which part failed.
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid email or password."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		}
		return
	}

	log.Info().Int64("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Me handles GET /api/users/me/.
func (h *Handler) Me(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	user, err := h.auth.Me(ctx, identity)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
