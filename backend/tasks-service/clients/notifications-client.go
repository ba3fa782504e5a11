package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
)

// NotificationsClient delivers task notifications to the notifications
// service through a circuit breaker.
type NotificationsClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewNotificationsClient(baseURL string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *NotificationsClient {
	return &NotificationsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
	}
}

type notifyRequest struct {
	Team   []string `json:"team"`
	Text   string   `json:"text"`
	TaskID string   `json:"taskId"`
}

// Notify creates one notification addressed to every member of team.
func (c *NotificationsClient) Notify(ctx context.Context, team []string, text, taskID string) error {
	body, err := json.Marshal(notifyRequest{Team: team, Text: text, TaskID: taskID})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notifications/add", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("notifications service unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("notifications service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		return nil, nil
	})
	return err
}
