package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTeachers handles GET /api/teacher.
func (h *Handler) ListTeachers(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	teachers, err := h.teachers.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// GetTeacher handles GET /api/teacher/:id.
func (h *Handler) GetTeacher(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	teacher, err := h.teachers.FindByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, teacher)
}
