package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/yoga-service/internal/core/domain"
	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
	"github.com/duynhne/yoga-service/middleware"
	pkgzerolog "github.com/duynhne/yoga-service/pkg/logger/zerolog"
)

// writeError translates a logic error into a status code and a short message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, logicv1.ErrInvalidCredentials):
		// Same body for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, domain.MessageResponse{Message: "Invalid credentials"})
	case errors.Is(err, logicv1.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, domain.MessageResponse{Message: "Error: Email is already taken!"})
	case errors.Is(err, logicv1.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.MessageResponse{Message: kindMessage(err, logicv1.ErrNotFound)})
	case errors.Is(err, logicv1.ErrBadRequest):
		c.JSON(http.StatusBadRequest, domain.MessageResponse{Message: kindMessage(err, logicv1.ErrBadRequest)})
	case errors.Is(err, logicv1.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, domain.MessageResponse{Message: "Unauthorized"})
	case errors.Is(err, logicv1.ErrConflict):
		c.JSON(http.StatusConflict, domain.MessageResponse{Message: "Conflict"})
	default:
		pkgzerolog.FromContext(c.Request.Context()).Error().Err(err).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, domain.MessageResponse{Message: "Internal server error"})
	}
}

// kindMessage returns the text of the most specific sentinel, e.g.
// "session not found" rather than the whole wrapped chain with ids.
func kindMessage(err, kind error) string {
	for _, s := range []error{
		logicv1.ErrSessionNotFound,
		logicv1.ErrUserNotFound,
		logicv1.ErrTeacherNotFound,
		logicv1.ErrAlreadyParticipating,
		logicv1.ErrNotParticipating,
		logicv1.ErrBlankSessionName,
	} {
		if errors.Is(err, s) && errors.Is(s, kind) {
			return strings.TrimSuffix(s.Error(), ": "+kind.Error())
		}
	}
	return kind.Error()
}

// pathID parses a positive integer path parameter, answering 400 when malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, domain.MessageResponse{Message: "Invalid " + name})
		return 0, false
	}
	return id, true
}

// principal returns the caller installed by the authentication filter.
// Routes behind RequireAuth always have one.
func principal(c *gin.Context) domain.Principal {
	p, _ := middleware.PrincipalFrom(c.Request.Context())
	return p
}
