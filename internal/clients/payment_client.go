package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"railbook/internal/utils"
)

// PaymentClient talks to the payment gateway's JSON API.
type PaymentClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewPaymentClient(baseURL string, timeout time.Duration) PaymentClient {
	return PaymentClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

type refundRequest struct {
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

type refundResponse struct {
	RefundID string `json:"refundId"`
}

// StatusError is a non-2xx reply from the gateway.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("payment gateway %s: status %d: %s", e.Path, e.Status, e.Body)
}

func (c PaymentClient) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	var out verifyResponse
	if err := c.post(ctx, "/verify", verifyRequest{OrderID: orderID, PaymentID: paymentID, Signature: signature}, &out); err != nil {
		return false, err
	}
	return out.Verified, nil
}

// Refund asks the gateway to return amountMinor (1/100 currency units).
func (c PaymentClient) Refund(ctx context.Context, paymentID string, amountMinor int64) (string, error) {
	if amountMinor <= 0 {
		return "", errors.New("refund amount must be positive")
	}
	var out refundResponse
	if err := c.post(ctx, "/refund", refundRequest{PaymentID: paymentID, Amount: amountMinor}, &out); err != nil {
		return "", err
	}
	if out.RefundID == "" {
		return "", errors.New("payment gateway returned empty refund id")
	}
	return out.RefundID, nil
}

func (c PaymentClient) post(ctx context.Context, path string, in, out any) error {
	if c.BaseURL == "" {
		return errors.New("payment gateway url not configured")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if rid := utils.RequestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("payment gateway %s: decode: %w", path, err)
	}
	return nil
}

func (c PaymentClient) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
