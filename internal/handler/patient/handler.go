package patient

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/handler"
	"github.com/nucmed/petplan/internal/middleware"
	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/service/patient"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/patients")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.DELETE("", h.Clear)
	g.GET("/dose-preview", h.PreviewDose)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), c.GetString(middleware.ContextUserID), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.Success(p))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid patient ID"))
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.Error(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.Success(p))
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListPatients(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(list))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid patient ID"))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(p))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid patient ID"))
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(nil))
}

// Clear empties the whole examination list for a new planning day.
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.ClearPatients(c.Request.Context(), c.GetString(middleware.ContextUserID)); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(nil))
}

// PreviewDose computes the administered dose a scheme would prescribe for a
// given body weight without creating a patient record.
func (h *Handler) PreviewDose(c *gin.Context) {
	schemeID, err := uuid.Parse(c.Query("scheme_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid scheme_id"))
		return
	}

	weightKg, err := strconv.ParseFloat(c.Query("weight_kg"), 64)
	if err != nil || weightKg <= 0 {
		c.JSON(http.StatusBadRequest, handler.Error("invalid weight_kg"))
		return
	}

	dose, err := h.service.PreviewDose(c.Request.Context(), schemeID, weightKg)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(gin.H{"dose_mbq": dose}))
}
