package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/duynhne/yoga-service/internal/core/domain"
	pkgzerolog "github.com/duynhne/yoga-service/pkg/logger/zerolog"
)

// ListSessions handles GET /api/session.
func (h *Handler) ListSessions(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	sessions, err := h.sessions.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession handles GET /api/session/:id.
func (h *Handler) GetSession(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessions.GetByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CreateSession handles POST /api/session (admin only).
func (h *Handler) CreateSession(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.Session
	if !bindJSON(c, span, &req) {
		return
	}

	session, err := h.sessions.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	pkgzerolog.FromContext(ctx).Info().Int64("session_id", session.ID).Msg("Session created")
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles PUT /api/session/:id (admin only).
func (h *Handler) UpdateSession(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req domain.Session
	if !bindJSON(c, span, &req) {
		return
	}

	session, err := h.sessions.Update(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession handles DELETE /api/session/:id (admin only).
func (h *Handler) DeleteSession(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sessions.Delete(ctx, id); err != nil {
		writeError(c, err)
		return
	}

	pkgzerolog.FromContext(ctx).Info().Int64("session_id", id).Msg("Session deleted")
	c.Status(http.StatusOK)
}

// Participate handles POST /api/session/:id/participate/:userId.
func (h *Handler) Participate(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("session.id", sessionID), attribute.Int64("user.id", userID))

	if _, err := h.sessions.Participate(ctx, principal(c), sessionID, userID); err != nil {
		pkgzerolog.FromContext(ctx).Warn().Err(err).Msg("Participate rejected")
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// NoLongerParticipate handles DELETE /api/session/:id/participate/:userId.
func (h *Handler) NoLongerParticipate(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("session.id", sessionID), attribute.Int64("user.id", userID))

	if _, err := h.sessions.NoLongerParticipate(ctx, principal(c), sessionID, userID); err != nil {
		pkgzerolog.FromContext(ctx).Warn().Err(err).Msg("Leave rejected")
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
