// Package webhook delivers user notifications as signed HTTP callbacks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"library/internal/entity"
)

const (
	tokenIssuer = "library"
	tokenTTL    = time.Minute
)

var (
	// ErrDelivery wraps every failed notification attempt.
	ErrDelivery = errors.New("webhook delivery failed")
	// ErrInvalidAddress is returned for addresses that are not absolute
	// http(s) URLs.
	ErrInvalidAddress = errors.New("invalid webhook address")
)

// Dialer creates channels that share one HTTP client and signing key.
type Dialer struct {
	httpClient *http.Client
	secret     string
}

func NewDialer(secret string, timeout time.Duration) *Dialer {
	return &Dialer{
		httpClient: &http.Client{Timeout: timeout},
		secret:     secret,
	}
}

// Channel returns the notification channel for address.
func (d *Dialer) Channel(address string) (entity.NotificationService, error) {
	u, err := url.Parse(address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return &Channel{dialer: d, address: u.String()}, nil
}

type Channel struct {
	dialer  *Dialer
	address string
}

type payload struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// SendNotification posts message to the channel address. Any transport error
// or non-2xx response is reported as ErrDelivery.
func (c *Channel) SendNotification(ctx context.Context, message string) error {
	body, err := json.Marshal(payload{Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	token, err := GenerateToken(c.dialer.secret, c.address, tokenTTL)
	if err != nil {
		return fmt.Errorf("sign webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.dialer.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code: %d", ErrDelivery, resp.StatusCode)
	}
	return nil
}
