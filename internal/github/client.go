package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client talks to the repository contents API with a single token.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// Content is the subset of a contents API object we use.
type Content struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	HTMLURL string `json:"html_url"`
}

// PutContentRequest is the body of a create-or-update call. SHA must be set
// when the file already exists.
type PutContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type Commit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
}

type PutContentResponse struct {
	Content   Content `json:"content"`
	Commit    Commit  `json:"commit"`
	RequestID string  `json:"-"`
}

// NewClient returns a client for the public API.
func NewClient(token string, httpTimeout time.Duration) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		token:      token,
		baseURL:    DefaultBaseURL,
	}
}

// NewClientWithBaseURL allows pointing the client at GitHub Enterprise or a
// test server.
func NewClientWithBaseURL(token string, httpTimeout time.Duration, baseURL string) *Client {
	c := NewClient(token, httpTimeout)
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// GetContent fetches metadata for path. A missing file yields an error that
// matches ErrNotFound.
func (c *Client) GetContent(ctx context.Context, owner, repo, path, ref string) (*Content, error) {
	endpoint := c.contentsURL(owner, repo, path)
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyAPIError(decodeAPIError(resp), resp)
	}
	var out Content
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// PutContent creates or updates the file at path.
func (c *Client) PutContent(ctx context.Context, owner, repo, path string, req PutContentRequest) (*PutContentResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.contentsURL(owner, repo, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPut, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyAPIError(decodeAPIError(resp), resp)
	}
	var out PutContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out.RequestID = resp.Header.Get("X-GitHub-Request-Id")
	return &out, nil
}

func (c *Client) setHeaders(r *http.Request) {
	r.Header.Set("Authorization", "token "+c.token)
	r.Header.Set("Accept", "application/vnd.github.v3+json")
	r.Header.Set("User-Agent", "folio-cli")
}

// contentsURL escapes each path segment so titles with spaces or unicode
// survive, while "/" keeps its directory meaning.
func (c *Client) contentsURL(owner, repo, path string) string {
	segs := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo), strings.Join(segs, "/"))
}

func decodeAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, RequestID: resp.Header.Get("X-GitHub-Request-Id")}
	if msg, ok := raw["message"].(string); ok {
		apiErr.Message = msg
	} else if raw == nil {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if doc, ok := raw["documentation_url"].(string); ok {
		apiErr.DocumentationURL = doc
	}
	return apiErr
}

// classifyAPIError maps an APIError to a typed error.
func classifyAPIError(apiErr *APIError, resp *http.Response) error {
	sc := apiErr.StatusCode
	switch {
	case sc == http.StatusTooManyRequests:
		return &RateLimitError{APIError: apiErr, RetryAfter: retryAfter(resp)}
	case sc == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return &RateLimitError{APIError: apiErr, RetryAfter: retryAfter(resp)}
	case sc == http.StatusUnauthorized || sc == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case sc == http.StatusConflict || sc == http.StatusUnprocessableEntity:
		return &ConflictError{APIError: apiErr}
	case sc >= 500 && sc <= 599:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}

// retryAfter reads Retry-After (seconds or HTTP date) or, failing that, the
// X-RateLimit-Reset epoch.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			return time.Duration(s) * time.Second
		}
		if t, err := http.ParseTime(v); err == nil {
			if d := time.Until(t); d > 0 {
				return d.Round(time.Second)
			}
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Until(time.Unix(epoch, 0)); d > 0 {
				return d.Round(time.Second)
			}
		}
	}
	return 0
}

// IsRemoteRejection reports whether err came back from the API as a non-2xx
// response, as opposed to a transport failure.
func IsRemoteRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
