package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/contact-dispatch-service/environments"
	"github.com/onurcolak/contact-dispatch-service/internal/domain"
	"github.com/onurcolak/contact-dispatch-service/pkg/logger"
)

const AuthHeader = "x-dispatch-auth-key"

// Client delivers a rendered message to a phone number through the
// messaging gateway. The gateway drives a single delivery session, so sends
// from concurrent jobs are serialized here.
type Client struct {
	httpClient *resty.Client
	webhookURL string

	sendMu sync.Mutex
}

func NewWebhookClient(cfg environments.WebhookConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.AuthKey != "" {
		client.SetHeader(AuthHeader, cfg.AuthKey)
	}

	return &Client{
		httpClient: client,
		webhookURL: cfg.URL,
	}
}

func (c *Client) SendMessage(ctx context.Context, phoneNumber, content string) (*domain.WebhookResponse, error) {
	payload := domain.WebhookRequest{
		To:      phoneNumber,
		Content: content,
	}

	var webhookResp domain.WebhookResponse

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&webhookResp).
		Post(c.webhookURL)

	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	logger.Debugf("Webhook request to %s completed in %v (status: %d)", c.webhookURL, duration, resp.StatusCode())

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	return &webhookResp, nil
}

func (c *Client) GetURL() string {
	return c.webhookURL
}
