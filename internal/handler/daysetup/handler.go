package daysetup

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
	g := r.Group("/daysetup")
	g.PUT("", h.Save)
	g.GET("", h.Get)

	sets := r.Group("/catalog/sets")
	sets.GET("", h.ListSets)
	sets.POST("/:name/activate", h.SwitchSet)
}

func (h *Handler) Save(c *gin.Context) {
	var req model.SaveDaySetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}

	ds, err := h.service.SaveDaySetup(c.Request.Context(), c.GetString(middleware.ContextUserID), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(ds))
}

func (h *Handler) Get(c *gin.Context) {
	ds, err := h.service.GetDaySetup(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusNotFound, handler.Error(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.Success(ds))
}

func (h *Handler) ListSets(c *gin.Context) {
	names, err := h.service.SetNames(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(names))
}

// SwitchSet makes the named attribute set the one the user's plan runs and
// catalog listings read from.
func (h *Handler) SwitchSet(c *gin.Context) {
	setName := c.Param("name")

	userID, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.Error("invalid user ID"))
		return
	}

	if err := h.service.SwitchSet(c.Request.Context(), userID, setName); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(gin.H{"current_set": setName}))
}
