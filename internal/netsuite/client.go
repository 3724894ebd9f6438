package netsuite

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

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 5
	defaultBurst             = 1
)

// Response is a decoded NetSuite response. Body holds the JSON value, or the
// raw text when the payload is not JSON, or nil when it is empty.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       any
	Raw        []byte
}

// StatusMessage returns the reason phrase of the status line.
func (r *Response) StatusMessage() string {
	return statusMessage(r.StatusCode, r.Status)
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
	Body       any
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("netsuite request failed with status %s", e.Status)
	if detail := errorDetail(e.Body); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// StatusMessage returns the reason phrase of the status line.
func (e *APIError) StatusMessage() string {
	return statusMessage(e.StatusCode, e.Status)
}

// errorDetail reads the title and first detail of a NetSuite error body.
func errorDetail(body any) string {
	switch b := body.(type) {
	case string:
		return strings.TrimSpace(b)
	case map[string]any:
		title, _ := b["title"].(string)
		if details, ok := b["o:errorDetails"].([]any); ok && len(details) > 0 {
			if first, ok := details[0].(map[string]any); ok {
				if detail, _ := first["detail"].(string); detail != "" {
					if title == "" {
						return detail
					}
					return title + " " + detail
				}
			}
		}
		return title
	default:
		return ""
	}
}

func statusMessage(code int, status string) string {
	msg := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if msg == "" {
		msg = http.StatusText(code)
	}
	return msg
}

// Client sends authenticated, rate limited requests to one NetSuite account.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.ILogger
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit sets the client side request rate.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client that authenticates every request with an access
// token obtained from creds.
func NewClient(ctx context.Context, creds Credentials, log logger.ILogger, opts ...Option) *Client {
	httpClient := oauth2.NewClient(ctx, TokenSource(ctx, creds))
	httpClient.Timeout = defaultTimeout

	c := &Client{
		baseURL:    creds.baseURL(),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the absolute URL of urlPath below basePath.
func (c *Client) URL(basePath, urlPath string) string {
	return c.baseURL + basePath + urlPath
}

// Do sends req below basePath. The body is sent as JSON unless it is empty.
// Non-2xx responses are returned as *APIError.
func (c *Client) Do(ctx context.Context, basePath string, req *domain.HTTPRequest) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.URL(basePath, req.URLPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request url: %w", err)
	}
	u.RawQuery = queryValues(req.QueryString).Encode()

	var body io.Reader
	if hasBody(req.Body) {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, formatValue(value))
	}

	c.log.Infof("Requesting %s %s", req.Method, u.Redacted())

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Headers:    res.Header,
		Body:       decodeBody(raw),
		Raw:        raw,
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return resp, &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Body:       resp.Body,
		}
	}

	return resp, nil
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func hasBody(body any) bool {
	switch b := body.(type) {
	case nil:
		return false
	case map[string]any:
		return len(b) > 0
	case []any:
		return len(b) > 0
	case string:
		return b != ""
	default:
		return true
	}
}

func queryValues(qs map[string]any) url.Values {
	values := url.Values{}
	for key, value := range qs {
		if list, ok := value.([]any); ok {
			for _, item := range list {
				values.Add(key, formatValue(item))
			}
			continue
		}
		values.Set(key, formatValue(value))
	}
	return values
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
