package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"aurix/internal/config"
)

// ErrNoReply reports a 2xx chat response that carried no usable response
// text. Callers treat it differently from a transport failure.
var ErrNoReply = errors.New("chat service replied without response text")

// ChatClient sends one user message per call to the Chat Service.
type ChatClient struct {
	client   *Client
	endpoint string
}

func NewChatClient(client *Client, svc config.ServiceConfig) *ChatClient {
	path := svc.Path
	if path == "" {
		path = config.DefaultChatPath
	}
	return &ChatClient{
		client:   client,
		endpoint: svc.BaseURL + path,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Send posts the message text and returns the service's response text.
func (c *ChatClient) Send(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.client.do(req)
	if err != nil {
		return "", err
	}

	var reply chatResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", ErrNoReply
	}
	if reply.Response == "" {
		return "", ErrNoReply
	}
	return reply.Response, nil
}
