package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/venhawk/venhawk-intake/internal/intake/domain"
	"github.com/venhawk/venhawk-intake/internal/logger"
	"github.com/venhawk/venhawk-intake/internal/metrics"
)

// Client talks to the vendor-matching REST API. Every call carries a bearer
// token from the configured TokenSource and waits on the shared limiter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
	log        logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per second across all callers.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for baseURL (for example http://host/api).
func NewClient(baseURL string, timeout time.Duration, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a client that shares the transport and limiter of c but
// authenticates with the given bearer token.
func (c *Client) WithToken(accessToken string) *Client {
	cp := *c
	cp.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return &cp
}

type accessTokenKey struct{}

// WithAccessToken makes calls issued with ctx authenticate as the given
// user instead of through the client's TokenSource.
func WithAccessToken(ctx context.Context, accessToken string) context.Context {
	if accessToken == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, accessToken)
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	if v, ok := ctx.Value(accessTokenKey{}).(string); ok {
		return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, nil
	}
	if c.tokens == nil {
		return nil, fmt.Errorf("no access token available")
	}
	return c.tokens.Token()
}

// SyncUser creates or refreshes the backend's record of the signed-in user.
func (c *Client) SyncUser(ctx context.Context, profile domain.UserProfile) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return c.do(ctx, "sync_user", http.MethodPost, "/users/sync", bytes.NewReader(body), "application/json", nil)
}

type createProjectResponse struct {
	ID             json.RawMessage `json:"id"`
	MatchedVendors json.RawMessage `json:"matchedVendors"`
}

// CreateProject submits a project and returns the matched vendors.
func (c *Client) CreateProject(ctx context.Context, payload domain.ProjectPayload) (*domain.ProjectResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	var raw createProjectResponse
	if err := c.do(ctx, "create_project", http.MethodPost, "/projects", bytes.NewReader(body), "application/json", &raw); err != nil {
		return nil, err
	}
	return parseProjectResult(raw)
}

func parseProjectResult(raw createProjectResponse) (*domain.ProjectResult, error) {
	id, err := parseID(raw.ID)
	if err != nil {
		return nil, err
	}
	if len(raw.MatchedVendors) == 0 {
		return nil, fmt.Errorf("%w: matchedVendors is missing", ErrMalformedResponse)
	}

	var vendors []domain.Vendor
	if err := json.Unmarshal(raw.MatchedVendors, &vendors); err != nil {
		return nil, fmt.Errorf("%w: matchedVendors: %v", ErrMalformedResponse, err)
	}
	if vendors == nil {
		vendors = []domain.Vendor{}
	}
	return &domain.ProjectResult{ID: id, MatchedVendors: vendors}, nil
}

// parseID accepts string and numeric ids.
func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("%w: id is missing", ErrMalformedResponse)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("%w: id is empty", ErrMalformedResponse)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: id: %v", ErrMalformedResponse, err)
	}
	return n.String(), nil
}

// UploadFile streams one file as multipart field "file".
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, content io.Reader) (domain.FileRef, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return domain.FileRef{}, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return domain.FileRef{}, fmt.Errorf("failed to read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.FileRef{}, fmt.Errorf("failed to finish form: %w", err)
	}

	var ref domain.FileRef
	if err := c.do(ctx, "upload_file", http.MethodPost, "/files", &buf, mw.FormDataContentType(), &ref); err != nil {
		return domain.FileRef{}, err
	}
	if ref.FileURL == "" {
		return domain.FileRef{}, fmt.Errorf("%w: fileUrl is missing", ErrMalformedResponse)
	}
	return ref, nil
}

// DeleteFile removes a previously uploaded file from remote storage.
func (c *Client) DeleteFile(ctx context.Context, fileURL string) error {
	body, err := json.Marshal(map[string]string{"fileUrl": fileURL})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, "delete_file", http.MethodDelete, "/files", bytes.NewReader(body), "application/json", nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend(op, start, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	tok, err := c.token(ctx)
	if err != nil {
		return domain.NewAuthError(err)
	}
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.log.Warn("backend returned error", map[string]interface{}{
			"operation": op,
			"status":    resp.StatusCode,
			"message":   apiErr.Message,
		})
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
