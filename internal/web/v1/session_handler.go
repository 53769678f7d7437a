package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
	"github.com/minhngo/wellness-sessions/internal/logger"
	logicv1 "github.com/minhngo/wellness-sessions/internal/logic/v1"
	"github.com/minhngo/wellness-sessions/middleware"
)

// ListPublicSessions handles GET /api/sessions/. No auth: this is the
// public catalogue and only ever contains published sessions.
func (h *Handler) ListPublicSessions(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	sessions, err := h.sessions.ListPublic(ctx)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("List public sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	c.JSON(http.StatusOK, domain.SessionViews(sessions))
}

// ListMySessions handles GET /api/my-sessions/.
func (h *Handler) ListMySessions(c *gin.Context) {
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

	sessions, err := h.sessions.ListMine(ctx, identity)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("List my sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	c.JSON(http.StatusOK, domain.SessionViews(sessions))
}

// GetMySession handles GET /api/my-sessions/:id/.
func (h *Handler) GetMySession(c *gin.Context) {
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

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found."})
		return
	}

	session, err := h.sessions.GetMine(ctx, identity, id)
	if err != nil {
		span.RecordError(err)
		h.sessionError(c, ctx, err, "Get session failed")
		return
	}

	c.JSON(http.StatusOK, session.View())
}

// SaveDraft handles POST /api/my-sessions/save-draft/.
func (h *Handler) SaveDraft(c *gin.Context) {
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

	var in domain.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Malformed request body."})
		return
	}

	session, err := h.sessions.SaveDraft(ctx, identity, in)
	if err != nil {
		span.RecordError(err)
		h.sessionError(c, ctx, err, "Save draft failed")
		return
	}

	logger.FromContext(ctx).Info().
		Int64("session_id", session.ID).
		Int64("user_id", identity.UserID).
		Msg("Draft saved")
	c.JSON(http.StatusOK, session.View())
}

// Publish handles POST /api/my-sessions/publish/.
func (h *Handler) Publish(c *gin.Context) {
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

	var in domain.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Malformed request body."})
		return
	}

	session, err := h.sessions.Publish(ctx, identity, in)
	if err != nil {
		span.RecordError(err)
		h.sessionError(c, ctx, err, "Publish failed")
		return
	}

	logger.FromContext(ctx).Info().
		Int64("session_id", session.ID).
		Int64("user_id", identity.UserID).
		Msg("Session published")
	c.JSON(http.StatusOK, session.View())
}

// sessionError maps session logic failures to HTTP responses. NotFound keeps
// one generic message whether the session is missing or owned by someone
// else; validation failures return the per-field map as the body.
func (h *Handler) sessionError(c *gin.Context, ctx context.Context, err error, logMsg string) {
	log := logger.FromContext(ctx)

	var verr *logicv1.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn().Err(err).Msg(logMsg)
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, logicv1.ErrSessionNotFound):
		log.Warn().Err(err).Msg(logMsg)
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found."})
	case errors.Is(err, logicv1.ErrSessionIDRequired):
		log.Warn().Err(err).Msg(logMsg)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Session id required."})
	default:
		log.Error().Err(err).Msg(logMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}
