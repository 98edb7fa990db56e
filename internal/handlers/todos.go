package handlers

import (
	"errors"
	"net/http"
	"strings"

	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/store"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetTodos(c *gin.Context) {
	todos, err := h.store.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "Failed to fetch todos", err)
		return
	}

	c.JSON(http.StatusOK, models.Envelope{Success: true, Data: todos})
}

func (h *Handler) CreateTodo(c *gin.Context) {
	request := &models.CreateTodoRequest{}
	err := c.ShouldBindBodyWithJSON(request)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Envelope{Success: false, Message: "Invalid request body"})
		return
	}

	title := strings.TrimSpace(request.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, models.Envelope{Success: false, Message: "Title is required and cannot be empty"})
		return
	}

	todo, err := h.store.Create(c.Request.Context(), title)
	if err != nil {
		h.storeFailure(c, "Failed to create todo", err)
		return
	}

	c.JSON(http.StatusCreated, models.Envelope{Success: true, Data: todo})
}

func (h *Handler) ToggleTodo(c *gin.Context) {
	todoId, err := parseId(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Envelope{Success: false, Message: "Valid todo ID is required"})
		return
	}

	todo, err := h.store.Toggle(c.Request.Context(), todoId)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.Envelope{Success: false, Message: "Todo not found"})
		return
	}
	if err != nil {
		h.storeFailure(c, "Failed to update todo", err)
		return
	}

	c.JSON(http.StatusOK, models.Envelope{Success: true, Data: todo})
}

func (h *Handler) DeleteTodo(c *gin.Context) {
	todoId, err := parseId(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Envelope{Success: false, Message: "Valid todo ID is required"})
		return
	}

	todo, err := h.store.Delete(c.Request.Context(), todoId)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.Envelope{Success: false, Message: "Todo not found"})
		return
	}
	if err != nil {
		h.storeFailure(c, "Failed to delete todo", err)
		return
	}

	c.JSON(http.StatusOK, models.Envelope{Success: true, Message: "Todo deleted successfully", Data: todo})
}

// storeFailure logs a store error and answers with a generic 500 that still
// carries the underlying message.
func (h *Handler) storeFailure(c *gin.Context, message string, err error) {
	fields := []any{"err", err, "request_id", c.GetString(middleware.RequestIDKey)}
	if code := store.ErrorCode(err); code != "" {
		fields = append(fields, "pg_code", code)
	}
	h.logger.Error(message, fields...)

	c.JSON(http.StatusInternalServerError, models.Envelope{Success: false, Message: message, Error: err.Error()})
}
