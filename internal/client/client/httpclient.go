package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// DefaultTimeout bounds every request when the caller does not pick one.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Middleware wraps the transport. Middlewares passed to NewHTTPClient run in
// the given order on the way out: the first one sees the request first and
// the response last.
type Middleware func(next http.RoundTripper) http.RoundTripper

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at baseURL. A zero timeout
// means DefaultTimeout. base may be nil to use http.DefaultTransport.
func NewHTTPClient(baseURL string, timeout time.Duration, base http.RoundTripper, mw ...Middleware) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := base
	if transport == nil {
		transport = http.DefaultTransport
	}
	for i := len(mw) - 1; i >= 0; i-- {
		transport = mw[i](transport)
	}

	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func (c *HTTPClient) endpoint(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	return u.String()
}

// do sends one JSON request. in and out may be nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapTransportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrCredentialAbsent):
		return common.ErrCredentialAbsent
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload models.ErrorResponse
	if json.Unmarshal(b, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}

func (c *HTTPClient) tokenCall(ctx context.Context, method, path string, in any) (string, error) {
	var out models.TokenResponse
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return "", err
	}
	token := strings.TrimSpace(out.Token)
	if token == "" {
		return "", common.ErrEmptyToken
	}
	return token, nil
}

func (c *HTTPClient) Login(ctx context.Context, cred models.LoginCredentials) (string, error) {
	return c.tokenCall(ctx, http.MethodPost, PathLogin, cred)
}

func (c *HTTPClient) Register(ctx context.Context, cred models.RegisterCredentials) error {
	return c.do(ctx, http.MethodPost, PathRegister, cred, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, r models.ForgotPasswordRequest) error {
	return c.do(ctx, http.MethodPost, PathForgotPassword, r, nil)
}

// ResetPassword returns the token the backend issues for the reset account.
// An empty token is not an error here: the reset itself succeeded.
func (c *HTTPClient) ResetPassword(ctx context.Context, resetToken string, r models.ResetPasswordRequest) (string, error) {
	var out models.TokenResponse
	path := PathResetPassword + "/" + url.PathEscape(resetToken)
	if err := c.do(ctx, http.MethodPut, path, r, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Token), nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out envelope[models.User]
	if err := c.do(ctx, http.MethodGet, PathMe, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, r models.UpdatePasswordRequest) (string, error) {
	return c.tokenCall(ctx, http.MethodPut, PathUpdatePassword, r)
}

func (c *HTTPClient) UpdateDetails(ctx context.Context, r models.UpdateDetailsRequest) (*models.User, error) {
	var out envelope[models.User]
	if err := c.do(ctx, http.MethodPut, PathUpdateDetails, r, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, r models.DeleteAccountRequest) error {
	return c.do(ctx, http.MethodDelete, PathDeleteAccount, r, nil)
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out envelope[[]models.Task]
	if err := c.do(ctx, http.MethodGet, PathTasks, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	var out envelope[models.Task]
	if err := c.do(ctx, http.MethodPost, PathTasks, t, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, t *models.Task) (*models.Task, error) {
	var out envelope[models.Task]
	if err := c.do(ctx, http.MethodPut, PathTasks+"/"+url.PathEscape(id), t, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, PathTasks+"/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) TasksByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var out envelope[[]models.StatusCount]
	if err := c.do(ctx, http.MethodGet, PathAnalyticsStatus, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) TasksByPriority(ctx context.Context) ([]models.PriorityCount, error) {
	var out envelope[[]models.PriorityCount]
	if err := c.do(ctx, http.MethodGet, PathAnalyticsPriority, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) CompletionTrends(ctx context.Context) ([]models.TrendPoint, error) {
	var out envelope[[]models.TrendPoint]
	if err := c.do(ctx, http.MethodGet, PathAnalyticsTrends, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) OverdueTasks(ctx context.Context) ([]models.Task, error) {
	var out envelope[[]models.Task]
	if err := c.do(ctx, http.MethodGet, PathAnalyticsOverdue, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
