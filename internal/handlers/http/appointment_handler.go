package http

import (
	"net/http"
	"time"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"
	"telecare/internal/core/services"
	"telecare/internal/infrastructure/middleware"
	"telecare/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	appointmentService ports.AppointmentService
	authService        *services.AuthService
}

func NewAppointmentHandler(appointmentService ports.AppointmentService, authService *services.AuthService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
		authService:        authService,
	}
}

func (h *AppointmentHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/appointments")
	api.Use(middleware.AuthMiddleware(h.authService))
	{
		api.POST("", h.Create)
		api.GET("", h.ListMine)
		api.GET("/:id", h.Get)
		api.PUT("/:id/status", h.SetStatus)
	}

	doctors := router.Group("/api/v1/doctors/:id/appointments")
	doctors.Use(middleware.AuthMiddleware(h.authService))
	{
		doctors.GET("", h.ListByDoctor)
	}
}

type CreateAppointmentRequest struct {
	DoctorID string    `json:"doctor_id" binding:"required"`
	Date     time.Time `json:"date" binding:"required"`
	Duration int       `json:"duration" binding:"required"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateAppointmentRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	appointment, err := h.appointmentService.Create(c.Request.Context(), ports.CreateAppointmentInput{
		UserID:   domain.UserID(userID),
		DoctorID: domain.DoctorID(req.DoctorID),
		Date:     req.Date,
		Duration: req.Duration,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	appointment, err := h.appointmentService.GetByID(c.Request.Context(), domain.AppointmentID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	// Patients only see their own bookings
	if string(appointment.UserID) != c.GetString("user_id") {
		c.Error(errors.NewForbiddenError("appointment belongs to another user"))
		return
	}

	c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID := c.GetString("user_id")

	appointments, err := h.appointmentService.ListByUser(c.Request.Context(), domain.UserID(userID))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	appointments, err := h.appointmentService.ListByDoctor(c.Request.Context(), domain.DoctorID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	appointment, err := h.appointmentService.SetStatus(
		c.Request.Context(),
		domain.AppointmentID(c.Param("id")),
		domain.AppointmentStatus(req.Status),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}
