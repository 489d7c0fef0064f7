package http

import (
	"net/http"

	"telecare/internal/core/domain"
	"telecare/internal/core/services"
	"telecare/internal/infrastructure/middleware"
	"telecare/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/signup", h.Signup)
		api.POST("/login", h.Login)
	}

	profile := router.Group("/api/v1/profile")
	profile.Use(middleware.AuthMiddleware(h.authService))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

type SignupRequest struct {
	FullName    string `json:"full_name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	Gender      string `json:"gender" binding:"max=20"`
	PhoneNumber string `json:"phone_number" binding:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		Gender:      req.Gender,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.authService.GetProfile(c.Request.Context(), domain.UserID(userID))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	FullName          string `json:"full_name" binding:"max=100"`
	PhoneNumber       string `json:"phone_number" binding:"max=30"`
	PreferredLanguage string `json:"preferred_language" binding:"max=40"`
	ProfileImageURL   string `json:"profile_image_url" binding:"max=500"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), domain.UserID(userID), services.UpdateProfileInput{
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		PreferredLanguage: req.PreferredLanguage,
		ProfileImageURL:   req.ProfileImageURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}
