package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	logicv1 "github.com/duynhne/yoga-service/internal/logic/v1"
	"github.com/duynhne/yoga-service/middleware"
	pkgzerolog "github.com/duynhne/yoga-service/pkg/logger/zerolog"
)

// Handler groups HTTP handlers for the yoga API v1.
// Dependencies are injected via the constructor.
type Handler struct {
	auth     *logicv1.AuthService
	users    *logicv1.UserService
	sessions *logicv1.SessionService
	teachers *logicv1.TeacherService
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, users *logicv1.UserService, sessions *logicv1.SessionService, teachers *logicv1.TeacherService) *Handler {
	return &Handler{
		auth:     auth,
		users:    users,
		sessions: sessions,
		teachers: teachers,
	}
}

// RegisterRoutes registers all API v1 routes on the given router group.
// Login and register are public; every other route requires a principal,
// which middleware.Authentication must have installed earlier in the chain.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/register", h.Register)

	protected := rg.Group("", middleware.RequireAuth())

	protected.GET("/session", h.ListSessions)
	protected.GET("/session/:id", h.GetSession)
	protected.POST("/session", middleware.RequireAdmin(), h.CreateSession)
	protected.PUT("/session/:id", middleware.RequireAdmin(), h.UpdateSession)
	protected.DELETE("/session/:id", middleware.RequireAdmin(), h.DeleteSession)
	protected.POST("/session/:id/participate/:userId", h.Participate)
	protected.DELETE("/session/:id/participate/:userId", h.NoLongerParticipate)

	protected.GET("/teacher", h.ListTeachers)
	protected.GET("/teacher/:id", h.GetTeacher)

	protected.GET("/user/:id", h.GetUser)
	protected.DELETE("/user/:id", h.DeleteUser)
}

// startSpan opens the web-layer span shared by every handler.
func startSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
}

// Login handles HTTP request for user login.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.LoginRequest
	if !bindJSON(c, span, &req) {
		return
	}

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("Login failed")
		writeError(c, err)
		return
	}

	logger.Info().Int64("user_id", response.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Register handles HTTP request for user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	logger := pkgzerolog.FromContext(ctx)

	var req domain.RegisterRequest
	if !bindJSON(c, span, &req) {
		return
	}

	id, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		writeError(c, err)
		return
	}

	logger.Info().Int64("user_id", id).Msg("Registration successful")
	c.JSON(http.StatusOK, domain.MessageResponse{Message: "User registered successfully!"})
}

// bindJSON decodes and validates the request body, answering 400 on failure.
func bindJSON(c *gin.Context, span trace.Span, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		pkgzerolog.FromContext(c.Request.Context()).Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, domain.MessageResponse{Message: err.Error()})
		return false
	}
	span.SetAttributes(attribute.Bool("request.valid", true))
	return true
}
