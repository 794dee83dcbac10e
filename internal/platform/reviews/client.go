package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrUnavailable marks failures worth trying again later: transport errors,
// throttling and 5xx responses.
var ErrUnavailable = errors.New("review provider unavailable")

// Client fetches reader reviews from an HTTP review provider.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(baseURL, userAgent string, rps int, timeout time.Duration) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Every(time.Second / time.Duration(rps))
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// reviewsResponse matches GET /books/{isbn}/reviews
type reviewsResponse struct {
	Reviews []string `json:"reviews"`
}

// GetReviewsForBook returns the reviews for isbn in provider order. A book the
// provider does not know yields nil, nil.
func (c *Client) GetReviewsForBook(ctx context.Context, isbn string) ([]string, error) {
	u := fmt.Sprintf("%s/books/%s/reviews", c.baseURL, url.PathEscape(isbn))

	var res reviewsResponse
	found, err := c.get(ctx, u, &res)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return res.Reviews, nil
}

// Close drops idle keep-alive connections. The client can still be used.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return false, fmt.Errorf("%w: unexpected status code: %d", ErrUnavailable, resp.StatusCode)
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return false, fmt.Errorf("decode reviews: %w", err)
	}
	return true, nil
}
