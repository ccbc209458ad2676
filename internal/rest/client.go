package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds each request made with a Client's default HTTP client.
const DefaultTimeout = 30 * time.Second

// maxErrorBody limits how much of an error response is read.
const maxErrorBody = 64 << 10

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Code       string // Error code from the body, when present
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d: %s (code %s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Client talks to a table server. Each service is reached at
// BaseURL/Servlet/<service>/{info,data,update}.
type Client struct {
	BaseURL    string // Scheme and host, e.g. http://localhost:8080
	Servlet    string
	Username   string // Basic auth; empty disables
	Password   string
	HTTPClient *http.Client
}

// NewClient creates a client with a default HTTP client.
func NewClient(baseURL, servlet, username, password string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Servlet:    servlet,
		Username:   username,
		Password:   password,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Services lists the service names the servlet serves.
func (c *Client) Services(ctx context.Context) ([]string, error) {
	var list ServiceList
	if err := c.do(ctx, http.MethodGet, c.endpoint("", "", nil), nil, &list); err != nil {
		return nil, err
	}
	return list.Services, nil
}

// TableInfo fetches a service's table definition.
func (c *Client) TableInfo(ctx context.Context, service string) (*TableInfo, error) {
	var info TableInfo
	if err := c.do(ctx, http.MethodGet, c.endpoint(service, "info", nil), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Data fetches a service's rows. Criteria are keyed by filter column name.
func (c *Client) Data(ctx context.Context, service string, criteria map[string]string) ([][]string, error) {
	q := url.Values{}
	for name, v := range criteria {
		q.Set("f."+name, v)
	}
	var rows [][]string
	if err := c.do(ctx, http.MethodGet, c.endpoint(service, "data", q), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update posts a batch of row changes and returns the server's verdict.
func (c *Client) Update(ctx context.Context, service string, updates []UpdateInfo) (bool, error) {
	var ok bool
	if err := c.do(ctx, http.MethodPost, c.endpoint(service, "update", nil), updates, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (c *Client) endpoint(service, function string, q url.Values) string {
	parts := []string{strings.TrimRight(c.BaseURL, "/"), url.PathEscape(c.Servlet)}
	if service != "" {
		parts = append(parts, url.PathEscape(service), function)
	} else {
		parts = append(parts, "")
	}
	u := strings.Join(parts, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeHTTPError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeHTTPError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	herr := &HTTPError{StatusCode: resp.StatusCode}
	var er ErrorResponse
	if json.Unmarshal(raw, &er) == nil && (er.Message != "" || er.Error != "") {
		herr.Code = er.Code
		herr.Message = er.Message
		if herr.Message == "" {
			herr.Message = er.Error
		}
		return herr
	}

	herr.Message = strings.TrimSpace(string(raw))
	if herr.Message == "" {
		herr.Message = http.StatusText(resp.StatusCode)
	}
	return herr
}
