// Package provider implements the outbound client for the Evolution-style
// WhatsApp HTTP API.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/thiagogitai/sinconsult-crm/internal/config"
)

// Client abstracts the outbound provider so services can be tested against
// a fake.
type Client interface {
	SendText(ctx context.Context, instanceID, number, text string) (*SendResult, error)
	SendMedia(ctx context.Context, instanceID string, msg MediaMessage) (*SendResult, error)
}

// MediaMessage carries a media send. Caption is optional; audio sends omit
// it per provider convention.
type MediaMessage struct {
	Number    string
	MediaType string
	MediaURL  string
	Caption   string
}

// SendResult holds the provider-assigned message id.
type SendResult struct {
	MessageID string
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
}

type sendResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
	Status string `json:"status"`
}

type evolutionClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates an Evolution API client from configuration. Every call
// authenticates with the apikey header.
func NewClient(cfg *config.ProviderConfig, logger *zap.Logger) Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", cfg.APIKey)

	return &evolutionClient{
		http:   httpClient,
		logger: logger,
	}
}

func (c *evolutionClient) SendText(ctx context.Context, instanceID, number, text string) (*SendResult, error) {
	var result sendResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendTextRequest{Number: number, Text: text}).
		SetResult(&result).
		Post(fmt.Sprintf("/message/sendText/%s", instanceID))
	if err != nil {
		return nil, fmt.Errorf("failed to send text message: %w", err)
	}

	return c.handleResponse(resp, &result)
}

func (c *evolutionClient) SendMedia(ctx context.Context, instanceID string, msg MediaMessage) (*SendResult, error) {
	req := sendMediaRequest{
		Number:    msg.Number,
		MediaType: msg.MediaType,
		Media:     msg.MediaURL,
		Caption:   msg.Caption,
	}

	var result sendResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(fmt.Sprintf("/message/sendMedia/%s", instanceID))
	if err != nil {
		return nil, fmt.Errorf("failed to send media message: %w", err)
	}

	return c.handleResponse(resp, &result)
}

// handleResponse collapses every provider rejection into a single error with
// a human-readable detail string. The pipeline records it per message and
// never classifies further.
func (c *evolutionClient) handleResponse(resp *resty.Response, result *sendResponse) (*SendResult, error) {
	if resp.IsError() {
		c.logger.Warn("Provider rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return &SendResult{MessageID: result.Key.ID}, nil
}
