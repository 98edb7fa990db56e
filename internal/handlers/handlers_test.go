package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todolist/internal/logging"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()

	s, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return New(s, logging.Discard(), "todolist-test").Router(), s
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	env := envelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func decodeTodo(t *testing.T, env envelope) models.Todo {
	t.Helper()
	todo := models.Todo{}
	require.NoError(t, json.Unmarshal(env.Data, &todo))
	return todo
}

func decodeTodos(t *testing.T, env envelope) []models.Todo {
	t.Helper()
	todos := []models.Todo{}
	require.NoError(t, json.Unmarshal(env.Data, &todos))
	return todos
}

func TestTodoLifecycle(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := doRequest(t, router, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)
	created := decodeTodo(t, env)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)

	w, env = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/todos/%d", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	toggled := decodeTodo(t, env)
	assert.True(t, toggled.Completed)
	assert.Equal(t, created.ID, toggled.ID)

	w, env = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Todo deleted successfully", env.Message)
	deleted := decodeTodo(t, env)
	assert.Equal(t, created.ID, deleted.ID)
	assert.True(t, deleted.Completed)

	w, env = doRequest(t, router, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, w.Code)
	for _, todo := range decodeTodos(t, env) {
		assert.NotEqual(t, created.ID, todo.ID)
	}
}

func TestGetTodos(t *testing.T) {
	router, _ := newTestServer(t)

	t.Run("empty list is an array", func(t *testing.T) {
		w, env := doRequest(t, router, http.MethodGet, "/api/todos", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.JSONEq(t, `[]`, string(env.Data))
	})

	t.Run("newest first", func(t *testing.T) {
		doRequest(t, router, http.MethodPost, "/api/todos", `{"title":"A"}`)
		doRequest(t, router, http.MethodPost, "/api/todos", `{"title":"B"}`)

		_, env := doRequest(t, router, http.MethodGet, "/api/todos", "")
		todos := decodeTodos(t, env)
		require.Len(t, todos, 2)
		assert.Equal(t, "B", todos[0].Title)
		assert.Equal(t, "A", todos[1].Title)
		assert.False(t, todos[1].Completed)
	})
}

func TestCreateTodoValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"whitespace title", `{"title":"   "}`, "Title is required and cannot be empty"},
		{"empty title", `{"title":""}`, "Title is required and cannot be empty"},
		{"missing title", `{}`, "Title is required and cannot be empty"},
		{"malformed json", `{"title":`, "Invalid request body"},
		{"wrong type", `{"title":42}`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s := newTestServer(t)

			w, env := doRequest(t, router, http.MethodPost, "/api/todos", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)

			todos, err := s.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, todos)
		})
	}
}

func TestCreateTodoTrimsTitle(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := doRequest(t, router, http.MethodPost, "/api/todos", `{"title":"  Call mom \n"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Call mom", decodeTodo(t, env).Title)
}

func TestToggleTwiceRestores(t *testing.T) {
	router, _ := newTestServer(t)

	_, env := doRequest(t, router, http.MethodPost, "/api/todos", `{"title":"Read"}`)
	created := decodeTodo(t, env)
	path := fmt.Sprintf("/api/todos/%d", created.ID)

	doRequest(t, router, http.MethodPatch, path, "")
	w, env := doRequest(t, router, http.MethodPatch, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.Completed, decodeTodo(t, env).Completed)
}

func TestIdErrors(t *testing.T) {
	for _, method := range []string{http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			router, s := newTestServer(t)
			_, err := s.Create(context.Background(), "untouched")
			require.NoError(t, err)

			for _, id := range []string{"abc", "12abc", "1.5", "99999999999999999999"} {
				w, env := doRequest(t, router, method, "/api/todos/"+id, "")
				assert.Equal(t, http.StatusBadRequest, w.Code, id)
				assert.Equal(t, "Valid todo ID is required", env.Message, id)
			}

			w, env := doRequest(t, router, method, "/api/todos/999999", "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "Todo not found", env.Message)
			assert.False(t, env.Success)

			todos, err := s.List(context.Background())
			require.NoError(t, err)
			require.Len(t, todos, 1)
			assert.False(t, todos[0].Completed)
		})
	}
}

type failingStore struct {
	err error
}

func (f failingStore) List(context.Context) ([]models.Todo, error) { return nil, f.err }
func (f failingStore) Create(context.Context, string) (models.Todo, error) {
	return models.Todo{}, f.err
}
func (f failingStore) Toggle(context.Context, int64) (models.Todo, error) {
	return models.Todo{}, f.err
}
func (f failingStore) Delete(context.Context, int64) (models.Todo, error) {
	return models.Todo{}, f.err
}
func (f failingStore) Ping(context.Context) (models.StoreInfo, error) {
	return models.StoreInfo{}, f.err
}

func TestStoreFailures(t *testing.T) {
	router := New(failingStore{err: errors.New("connection refused")}, logging.Discard(), "test").Router()

	tests := []struct {
		method  string
		path    string
		body    string
		message string
	}{
		{http.MethodGet, "/api/todos", "", "Failed to fetch todos"},
		{http.MethodPost, "/api/todos", `{"title":"x"}`, "Failed to create todo"},
		{http.MethodPatch, "/api/todos/1", "", "Failed to update todo"},
		{http.MethodDelete, "/api/todos/1", "", "Failed to delete todo"},
		{http.MethodGet, "/api/test", "", "Database connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w, env := doRequest(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, "connection refused", env.Error)
		})
	}
}

type panickingStore struct {
	failingStore
}

func (panickingStore) List(context.Context) ([]models.Todo, error) { panic("boom") }

func TestRecovery(t *testing.T) {
	router := New(panickingStore{}, logging.Discard(), "test").Router()

	w, env := doRequest(t, router, http.MethodGet, "/api/todos", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Equal(t, "boom", env.Error)
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	health := models.HealthResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, "todolist-test", health.Service)
	assert.NotEmpty(t, health.Uptime)
}

func TestStoreCheck(t *testing.T) {
	router, _ := newTestServer(t)

	w, env := doRequest(t, router, http.MethodGet, "/api/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Database connection successful", env.Message)

	info := models.StoreInfo{}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Contains(t, info.Version, "SQLite")
}

func TestIndexAndNotFound(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	index := models.IndexResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &index))
	assert.Equal(t, "/api/todos", index.Endpoints["todos"])

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodPut, "/api/todos/1"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code, tt.path)
		notFound := models.RouteNotFoundResponse{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notFound))
		assert.False(t, notFound.Success)
		assert.Equal(t, "Route not found", notFound.Message)
		assert.Equal(t, "/health", notFound.Endpoints["health"])
	}
}

func TestMiddleware(t *testing.T) {
	router, _ := newTestServer(t)

	t.Run("request id generated", func(t *testing.T) {
		w, _ := doRequest(t, router, http.MethodGet, "/api/todos", "")
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("request id propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("cors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.Header.Set("Origin", "http://frontend.local")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
