// Package msg91 sends WhatsApp template messages through the MSG91 bulk API.
package msg91

import (
	"context"
	"fmt"

	"playverse/pkg/client"
)

const DefaultBaseURL = "https://api.msg91.com/api/v5/whatsapp/whatsapp-outbound-message/bulk/"

type Config struct {
	AuthKey          string
	IntegratedNumber string
	BaseURL          string
}

type Client struct {
	cfg        Config
	httpClient *client.HttpClient
}

func NewClient(cfg Config, httpClient *client.HttpClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Component is one template placeholder value.
type Component struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Value   string `json:"value"`
}

func Text(v string) Component {
	return Component{Type: "text", Value: v}
}

func Image(url string) Component {
	return Component{Type: "image", Value: url}
}

func URLButton(v string) Component {
	return Component{Type: "text", Subtype: "url", Value: v}
}

// Recipient is a set of phone numbers sharing the same placeholder values.
type Recipient struct {
	To         []string             `json:"to"`
	Components map[string]Component `json:"components"`
}

// Template is a message to send to one or more recipients.
type Template struct {
	Name       string
	Namespace  string
	Recipients []Recipient
}

type language struct {
	Code   string `json:"code"`
	Policy string `json:"policy"`
}

type templateBody struct {
	Name            string      `json:"name"`
	Language        language    `json:"language"`
	Namespace       string      `json:"namespace"`
	ToAndComponents []Recipient `json:"to_and_components"`
}

type messagePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type bulkRequest struct {
	IntegratedNumber string         `json:"integrated_number"`
	ContentType      string         `json:"content_type"`
	Payload          messagePayload `json:"payload"`
}

func (c *Client) buildRequest(t Template) bulkRequest {
	return bulkRequest{
		IntegratedNumber: c.cfg.IntegratedNumber,
		ContentType:      "template",
		Payload: messagePayload{
			MessagingProduct: "whatsapp",
			Type:             "template",
			Template: templateBody{
				Name:            t.Name,
				Language:        language{Code: "en", Policy: "deterministic"},
				Namespace:       t.Namespace,
				ToAndComponents: t.Recipients,
			},
		},
	}
}

// Send posts a template message and returns the provider's decoded answer.
func (c *Client) Send(ctx context.Context, t Template) (map[string]any, error) {
	if len(t.Recipients) == 0 {
		return nil, fmt.Errorf("msg91: no recipients")
	}

	resp, err := c.httpClient.PostJSON(ctx, c.cfg.BaseURL, c.buildRequest(t), map[string]string{
		"authkey": c.cfg.AuthKey,
	})
	if err != nil {
		return nil, fmt.Errorf("msg91: %w", err)
	}

	var data map[string]any
	if err := resp.DecodeJSON(&data); err != nil {
		data = map[string]any{"raw": string(resp.Body)}
	}
	if !resp.IsSuccess() {
		return data, fmt.Errorf("msg91: unexpected status %d: %s", resp.StatusCode, string(resp.Body))
	}
	return data, nil
}
