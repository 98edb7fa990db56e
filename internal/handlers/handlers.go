package handlers

import (
	"context"
	"strconv"
	"time"

	"todolist/internal/models"

	"github.com/charmbracelet/log"
)

// TodoStore is the persistence the handlers need; *store.Store satisfies it.
type TodoStore interface {
	List(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, title string) (models.Todo, error)
	Toggle(ctx context.Context, id int64) (models.Todo, error)
	Delete(ctx context.Context, id int64) (models.Todo, error)
	Ping(ctx context.Context) (models.StoreInfo, error)
}

type Handler struct {
	store   TodoStore
	logger  *log.Logger
	service string
	started time.Time
}

func New(store TodoStore, logger *log.Logger, service string) *Handler {
	return &Handler{store: store, logger: logger, service: service, started: time.Now()}
}

func parseId(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

var endpoints = map[string]string{
	"health": "/health",
	"test":   "/api/test",
	"todos":  "/api/todos",
}
