package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgzerolog "github.com/duynhne/yoga-service/pkg/logger/zerolog"
)

// GetUser handles GET /api/user/:id.
func (h *Handler) GetUser(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.FindByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/user/:id. Users may only delete themselves.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(ctx, principal(c), id); err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	pkgzerolog.FromContext(ctx).Info().Int64("user_id", id).Msg("User deleted")
	c.Status(http.StatusOK)
}
