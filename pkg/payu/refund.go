package payu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	CommandCancelRefund = "cancel_refund_transaction"
	maxTokenLength      = 23
)

// RefundRequest identifies the captured payment to return.
type RefundRequest struct {
	PaymentID string
	Amount    float64
	Token     string
}

type RefundResult struct {
	Token string
	// Raw is the gateway answer, decoded from JSON when possible.
	Raw any
}

// NewRefundToken returns a unique refund request id within PayU's 23 character limit.
func NewRefundToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:maxTokenLength]
}

// RefundHash is sha512(key|command|var1|salt).
func RefundHash(key, salt, command, var1 string) string {
	return sha512Hex(strings.Join([]string{key, command, var1, salt}, "|"))
}

func (c *Client) RefundForm(req RefundRequest) url.Values {
	form := url.Values{}
	form.Set("key", c.cfg.MerchantKey)
	form.Set("command", CommandCancelRefund)
	form.Set("var1", req.PaymentID)
	form.Set("var2", req.Token)
	form.Set("var3", FormatAmount(req.Amount))
	form.Set("hash", RefundHash(c.cfg.MerchantKey, c.cfg.MerchantSalt, CommandCancelRefund, req.PaymentID))
	return form
}

// Refund asks the gateway to return a captured payment.
func (c *Client) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if req.PaymentID == "" {
		return nil, fmt.Errorf("payu refund: payment id is required")
	}
	if req.Token == "" {
		req.Token = NewRefundToken()
	}

	resp, err := c.httpClient.PostForm(ctx, c.cfg.RefundURL, c.RefundForm(req), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("payu refund: %w", err)
	}

	result := &RefundResult{Token: req.Token}
	var decoded any
	if err := json.Unmarshal(resp.Body, &decoded); err == nil {
		result.Raw = decoded
	} else {
		result.Raw = string(resp.Body)
	}

	if !resp.IsSuccess() {
		return result, fmt.Errorf("payu refund: unexpected status %d", resp.StatusCode)
	}
	return result, nil
}

// Accepted reports whether PayU acknowledged the refund request (status 1).
func (r *RefundResult) Accepted() bool {
	m, ok := r.Raw.(map[string]any)
	if !ok {
		return false
	}
	switch v := m["status"].(type) {
	case float64:
		return v == 1
	case string:
		return v == "1"
	}
	return false
}
