package tracer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/handler"
	"github.com/nucmed/petplan/internal/middleware"
	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/service/catalog"
)

type Handler struct {
	service *catalog.Service
}

func NewHandler(service *catalog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/tracers")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateTracerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	t, err := h.service.CreateTracer(c.Request.Context(), c.GetString(middleware.ContextUserID), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.Success(t))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid tracer ID"))
		return
	}

	t, err := h.service.GetTracer(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.Error(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.Success(t))
}

// List returns the tracers of one attribute set; ?set= selects it, defaulting
// to the shared default set.
func (h *Handler) List(c *gin.Context) {
	setName := c.DefaultQuery("set", catalog.DefaultSetName)
	list, err := h.service.ListTracers(c.Request.Context(), c.GetString(middleware.ContextUserID), setName)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(list))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid tracer ID"))
		return
	}

	var req model.UpdateTracerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	t, err := h.service.UpdateTracer(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(t))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid tracer ID"))
		return
	}

	if err := h.service.DeleteTracer(c.Request.Context(), c.GetString(middleware.ContextUserID), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(nil))
}
