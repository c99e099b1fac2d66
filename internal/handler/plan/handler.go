package plan

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nucmed/petplan/internal/handler"
	"github.com/nucmed/petplan/internal/middleware"
	"github.com/nucmed/petplan/internal/service/catalog"
	"github.com/nucmed/petplan/internal/service/plan"
)

type Handler struct {
	service *plan.Service
}

func NewHandler(service *plan.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/plan")
	g.POST("", h.Solve)
	g.POST("/async", h.SolveAsync)
}

type asyncRequest struct {
	SetName  string `json:"set_name"`
	NotifyTo string `json:"notify_to" binding:"omitempty,email"`
}

// Solve runs the day planner synchronously. An infeasible day is not an
// internal failure, so it answers 422 with the diagnosis instead of going
// through the error middleware.
func (h *Handler) Solve(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	setName := c.DefaultQuery("set", catalog.DefaultSetName)

	schedule, report, err := h.service.Solve(c.Request.Context(), userID, setName)
	if err != nil {
		if report != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"report":  report,
			})
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.Success(schedule))
}

func (h *Handler) SolveAsync(c *gin.Context) {
	var req asyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.Error(err.Error()))
		return
	}
	if req.SetName == "" {
		req.SetName = catalog.DefaultSetName
	}

	requestID, err := h.service.SubmitAsync(c.Request.Context(),
		c.GetString(middleware.ContextUserID), req.SetName, req.NotifyTo)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, handler.Success(gin.H{"request_id": requestID}))
}
