// Package taskapi is the HTTP client the board uses to talk to the tasks API
// through the gateway.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"orbitplan/client/board"
)

// APIError is a non-2xx response. Message is the server's {message} field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tasks api: status %d", e.Status)
	}
	return fmt.Sprintf("tasks api: status %d: %s", e.Status, e.Message)
}

// UserMessage lets the board show the server message as is.
func (e *APIError) UserMessage() string { return e.Message }

type Task struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Stage    string `json:"stage"`
	Priority string `json:"priority"`
}

// Card projects the task onto the board.
func (t Task) Card() board.Card {
	return board.Card{ID: t.ID, Title: t.Title, Stage: t.Stage, Priority: t.Priority}
}

// Patch is a partial task update; nil fields are not sent.
type Patch struct {
	Title    *string `json:"title,omitempty"`
	Stage    *string `json:"stage,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for baseURL authenticating with token. A nil
// httpClient gets a client with a 10 second timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// UpdateTask sends patch and returns the task as stored.
func (c *Client) UpdateTask(ctx context.Context, id string, patch Patch) (*Task, error) {
	var out struct {
		Task *Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/tasks/update/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	if out.Task == nil {
		return nil, fmt.Errorf("tasks api: response carried no task")
	}
	return out.Task, nil
}

// UpdateStage moves a task to stage with a {stage} patch.
func (c *Client) UpdateStage(ctx context.Context, taskID, stage string) error {
	_, err := c.UpdateTask(ctx, taskID, Patch{Stage: &stage})
	return err
}

// ListTasks returns live tasks, optionally limited to one stage.
func (c *Client) ListTasks(ctx context.Context, stage string) ([]Task, error) {
	q := url.Values{}
	q.Set("isTrashed", strconv.FormatBool(false))
	if stage != "" {
		q.Set("stage", stage)
	}

	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// LoadBoard fetches the live tasks and groups them into columns.
func (c *Client) LoadBoard(ctx context.Context, columns []string) (board.Board, error) {
	tasks, err := c.ListTasks(ctx, "")
	if err != nil {
		return board.Board{}, err
	}
	cards := make([]board.Card, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, t.Card())
	}
	return board.New(columns, cards)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("tasks api: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope) == nil {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tasks api: decode response: %w", err)
	}
	return nil
}
