package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shophub/pkg/config"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
	"github.com/angelmondragon/shophub/pkg/metrics"
	"github.com/angelmondragon/shophub/pkg/retry"
	"github.com/microcosm-cc/bluemonday"
)

const maxBodyBytes = 4 << 20

var errEmptyBody = errors.New("catalog returned an empty body")

// statusError carries a non-2xx upstream status.
type statusError struct {
	status int
	path   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog %s returned status %d", e.path, e.status)
}

// ClientParams groups dependencies for the catalog client.
type ClientParams struct {
	Config     config.CatalogConfig
	HTTPClient *http.Client
	Metrics    *metrics.Storefront
	Logger     *logger.Logger
}

// Client talks to the upstream REST catalog.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	retry   retry.Config
	policy  *bluemonday.Policy
	metrics *metrics.Storefront
	logg    *logger.Logger
}

var _ Source = (*Client)(nil)

// NewClient builds a catalog client from configuration.
func NewClient(params ClientParams) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(params.Config.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog base url is invalid")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Config.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		retry: retry.Config{
			MaxAttempts: params.Config.RetryAttempts,
			Backoff:     retry.ExponentialBackoff(params.Config.RetryBase, params.Config.RetryMax),
			ShouldRetry: retryable,
		},
		policy:  bluemonday.StrictPolicy(),
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// FetchAllProducts returns the full product list.
func (c *Client) FetchAllProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.getJSON(ctx, "products", "/products", &out); err != nil {
		return nil, c.mapError(ctx, err, "products")
	}
	return c.cleanAll(out), nil
}

// FetchCategories returns the upstream category names.
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "categories", "/products/categories", &out); err != nil {
		return nil, c.mapError(ctx, err, "categories")
	}
	for i := range out {
		out[i] = c.clean(out[i])
	}
	return out, nil
}

// FetchProductByID returns one product.
func (c *Client) FetchProductByID(ctx context.Context, id int) (Product, error) {
	if id <= 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	var out Product
	if err := c.getJSON(ctx, "product", "/products/"+strconv.Itoa(id), &out); err != nil {
		return Product{}, c.mapError(ctx, err, "product")
	}
	if out.ID == 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return c.cleanProduct(out), nil
}

// FetchProductsByCategory returns the products of a single category.
func (c *Client) FetchProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	var out []Product
	if err := c.getJSON(ctx, "category", "/products/category/"+url.PathEscape(category), &out); err != nil {
		return nil, c.mapError(ctx, err, "category")
	}
	return c.cleanAll(out), nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges demo credentials for an upstream token. Not retried.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode login request")
	}
	var out loginResponse
	start := time.Now()
	err = c.do(ctx, http.MethodPost, "/auth/login", payload, &out)
	c.metrics.ObserveCatalog("login", time.Since(start), err)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.status == http.StatusUnauthorized || se.status == http.StatusBadRequest) {
			return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid email or password")
		}
		return "", c.mapError(ctx, err, "login")
	}
	if out.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	return out.Token, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, dest any) error {
	start := time.Now()
	err := retry.Do(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodGet, path, nil, dest)
	})
	c.metrics.ObserveCatalog(endpoint, time.Since(start), err)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	target := c.baseURL.JoinPath(path)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &statusError{status: resp.StatusCode, path: path}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return errEmptyBody
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// retryable reports whether a failed attempt is worth repeating:
// transport failures, 5xx and 429.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, errEmptyBody) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= http.StatusInternalServerError || se.status == http.StatusTooManyRequests
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}
	return true
}

func (c *Client) mapError(ctx context.Context, err error, what string) error {
	if errors.Is(err, errEmptyBody) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	}
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	}
	if c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "catalog_endpoint", what), "catalog request failed: "+err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
}

func (c *Client) cleanAll(items []Product) []Product {
	for i := range items {
		items[i] = c.cleanProduct(items[i])
	}
	return items
}

func (c *Client) cleanProduct(p Product) Product {
	p.Title = c.clean(p.Title)
	p.Description = c.clean(p.Description)
	p.Category = c.clean(p.Category)
	if p.Price < 0 {
		p.Price = 0
	}
	return p
}

// clean strips markup and leaves plain text.
func (c *Client) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}
