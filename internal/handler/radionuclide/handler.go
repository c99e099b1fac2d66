package radionuclide

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
	g := r.Group("/radionuclides")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateRadionuclideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	n, err := h.service.CreateRadionuclide(c.Request.Context(), c.GetString(middleware.ContextUserID), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.Success(n))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid radionuclide ID"))
		return
	}

	n, err := h.service.GetRadionuclide(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.Error(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.Success(n))
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListRadionuclides(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(list))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid radionuclide ID"))
		return
	}

	var req model.UpdateRadionuclideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	n, err := h.service.UpdateRadionuclide(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(n))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid radionuclide ID"))
		return
	}

	if err := h.service.DeleteRadionuclide(c.Request.Context(), c.GetString(middleware.ContextUserID), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(nil))
}
