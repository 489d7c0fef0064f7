package http

import (
	"net/http"

	"telecare/internal/core/domain"
	"telecare/internal/core/ports"
	"telecare/pkg/errors"

	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	doctorService ports.DoctorService
}

func NewDoctorHandler(doctorService ports.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

func (h *DoctorHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/doctors")
	{
		api.POST("", h.Register)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.POST("/filter", h.Filter)
		api.POST("/filter-languages", h.FilterByLanguages)
		api.POST("/filter-gender-language", h.FilterByGenderAndLanguage)
	}
}

type RegisterDoctorRequest struct {
	FullName           string   `json:"full_name" binding:"required,max=100"`
	Email              string   `json:"email" binding:"required,email,max=254"`
	Password           string   `json:"password" binding:"required,min=6,max=128"`
	Gender             string   `json:"gender" binding:"max=20"`
	Specializations    []string `json:"specializations"`
	PreferredLanguages []string `json:"preferred_languages"`
	PhoneNumber        string   `json:"phone_number" binding:"max=30"`
}

func (h *DoctorHandler) Register(c *gin.Context) {
	var req RegisterDoctorRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	doctor := &domain.Doctor{
		FullName:           req.FullName,
		Email:              req.Email,
		Gender:             req.Gender,
		Specializations:    req.Specializations,
		PreferredLanguages: req.PreferredLanguages,
		PhoneNumber:        req.PhoneNumber,
	}

	created, err := h.doctorService.Register(c.Request.Context(), doctor, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.doctorService.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

type FilterDoctorsRequest struct {
	Specializations []string `json:"specializations"`
	Languages       []string `json:"languages"`
}

// Filter narrows the directory by specialization and/or preferred language.
func (h *DoctorHandler) Filter(c *gin.Context) {
	var req FilterDoctorsRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}
	if len(req.Specializations) == 0 && len(req.Languages) == 0 {
		c.Error(errors.NewInvalidInputError("at least one filter must be provided"))
		return
	}

	h.filter(c, ports.DoctorFilter{
		Specializations: req.Specializations,
		Languages:       req.Languages,
	})
}

type FilterByLanguagesRequest struct {
	Languages []string `json:"languages"`
}

func (h *DoctorHandler) FilterByLanguages(c *gin.Context) {
	var req FilterByLanguagesRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}
	if len(req.Languages) == 0 {
		c.Error(errors.NewInvalidInputError("languages must be a non-empty array"))
		return
	}

	h.filter(c, ports.DoctorFilter{Languages: req.Languages})
}

type FilterByGenderAndLanguageRequest struct {
	Gender    string   `json:"gender"`
	Languages []string `json:"languages"`
}

func (h *DoctorHandler) FilterByGenderAndLanguage(c *gin.Context) {
	var req FilterByGenderAndLanguageRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}
	if req.Gender == "" || len(req.Languages) == 0 {
		c.Error(errors.NewInvalidInputError("gender and languages are required"))
		return
	}

	h.filter(c, ports.DoctorFilter{Gender: req.Gender, Languages: req.Languages})
}

func (h *DoctorHandler) filter(c *gin.Context, filter ports.DoctorFilter) {
	doctors, err := h.doctorService.Filter(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

func (h *DoctorHandler) Get(c *gin.Context) {
	doctor, err := h.doctorService.GetByID(c.Request.Context(), domain.DoctorID(c.Param("id")))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doctor)
}
