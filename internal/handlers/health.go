package handlers

import (
	"net/http"
	"time"

	"todolist/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Service:   h.service,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	})
}

// StoreCheck runs a trivial query to prove the store is reachable.
func (h *Handler) StoreCheck(c *gin.Context) {
	info, err := h.store.Ping(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "Database connection failed", err)
		return
	}

	c.JSON(http.StatusOK, models.Envelope{Success: true, Message: "Database connection successful", Data: info})
}

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, models.IndexResponse{
		Message:   "Welcome to the todo list API",
		Endpoints: endpoints,
	})
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.RouteNotFoundResponse{
		Success:   false,
		Message:   "Route not found",
		Endpoints: endpoints,
	})
}
