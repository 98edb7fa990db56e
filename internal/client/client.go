// Package client talks to the todo API and keeps the local mirror of the
// todo list that the terminal UI renders.
package client

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"todolist/internal/models"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed envelope.schema.json
var envelopeSchema string

const (
	todosPath    = "/api/todos"
	maxBodyBytes = 4 << 20
)

// APIError is a response the server marked as failed.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	schema  *jsonschema.Schema
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("envelope.schema.json", strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("load envelope schema: %w", err)
	}
	schema, err := compiler.Compile("envelope.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		schema:  schema,
	}, nil
}

func (c *Client) List(ctx context.Context) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := c.do(ctx, http.MethodGet, todosPath, nil, &todos)
	return todos, err
}

func (c *Client) Create(ctx context.Context, title string) (models.Todo, error) {
	todo := models.Todo{}
	err := c.do(ctx, http.MethodPost, todosPath, models.CreateTodoRequest{Title: title}, &todo)
	return todo, err
}

func (c *Client) Toggle(ctx context.Context, id int64) (models.Todo, error) {
	todo := models.Todo{}
	err := c.do(ctx, http.MethodPatch, todoPath(id), nil, &todo)
	return todo, err
}

func (c *Client) Delete(ctx context.Context, id int64) (models.Todo, error) {
	todo := models.Todo{}
	err := c.do(ctx, http.MethodDelete, todoPath(id), nil, &todo)
	return todo, err
}

func todoPath(id int64) string {
	return todosPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := c.validate(raw); err != nil {
		return fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}

	env := envelope{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: message, Detail: env.Error}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Client) validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return c.schema.Validate(doc)
}
