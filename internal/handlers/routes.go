package handlers

import (
	"todolist/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router wires the API routes and middleware onto a fresh gin engine.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(h.logger),
		middleware.Recovery(h.logger),
		middleware.CORS(),
	)

	router.GET("/", h.Index)
	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.GET("/test", h.StoreCheck)

	todos := api.Group("/todos")
	todos.GET("", h.GetTodos)
	todos.POST("", h.CreateTodo)
	todos.PATCH("/:id", h.ToggleTodo)
	todos.DELETE("/:id", h.DeleteTodo)

	router.NoRoute(h.NotFound)

	return router
}
