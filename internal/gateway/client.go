// Package gateway is the typed boundary to the tracker API.
//
// It carries no business logic: every method maps to one endpoint,
// attaches the fixed basic-auth credential and normalizes non-2xx
// responses into an *APIError with a human-readable message.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"grosz/internal/cache"
	"grosz/internal/core"
	"grosz/internal/log"
)

const referenceTTL = 5 * time.Minute

// Config carries the connection settings for the tracker API.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client is the remote data gateway. Categories and accounts are
// reference data fetched once per view; they sit behind a short TTL
// cache so repeated mounts within a session don't re-hit the backend.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *log.Logger

	categories *cache.LRUCache[[]core.Category]
	accounts   *cache.LRUCache[[]core.Account]
}

// New creates a gateway client. The timeout applies to every request;
// zero falls back to 15s.
func New(cfg Config, logger *log.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithComponent(log.ComponentGateway),
		categories: cache.NewLRUCache[[]core.Category](1, referenceTTL),
		accounts:   cache.NewLRUCache[[]core.Account](1, referenceTTL),
	}
}

// CleanExpired implements cache.Cleaner over the reference-data caches.
func (c *Client) CleanExpired() int {
	return c.categories.CleanExpired() + c.accounts.CleanExpired()
}

// APIError is a normalized non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ListQuery parameterizes the transaction list request. Zero-valued
// fields are omitted from the query string.
type ListQuery struct {
	Account    string
	CategoryID string
	DateFrom   string
	DateTo     string
	Search     string
	Page       int
	PerPage    int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Account != "" {
		v.Set("account", q.Account)
	}
	if q.CategoryID != "" {
		v.Set("category_id", q.CategoryID)
	}
	if q.DateFrom != "" {
		v.Set("date_from", q.DateFrom)
	}
	if q.DateTo != "" {
		v.Set("date_to", q.DateTo)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// StatsQuery parameterizes the aggregate requests: account and year
// only, both optional.
type StatsQuery struct {
	Account string
	Year    string
}

func (q StatsQuery) values() url.Values {
	v := url.Values{}
	if q.Account != "" {
		v.Set("account", q.Account)
	}
	if q.Year != "" {
		v.Set("year", q.Year)
	}
	return v
}

// ListTransactions fetches one page of transactions. The returned page
// number is authoritative; the server may clamp the requested one.
func (c *Client) ListTransactions(ctx context.Context, q ListQuery) (core.TransactionPage, error) {
	var page core.TransactionPage
	err := c.doJSON(ctx, http.MethodGet, "/api/transactions", q.values(), nil, &page)
	return page, err
}

// GetTransaction fetches a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var tx core.Transaction
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), nil, nil, &tx)
	return tx, err
}

// UpdateCategory assigns a category to a transaction and returns the
// full updated row, including server-side derived fields such as the
// category source flipping to manual.
func (c *Client) UpdateCategory(ctx context.Context, id, categoryID int64) (core.Transaction, error) {
	var tx core.Transaction
	body := map[string]int64{"category_id": categoryID}
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/transactions/%d/category", id), nil, body, &tx)
	return tx, err
}

// ListCategories fetches the category reference list, cached for a
// short TTL.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	if cached, ok := c.categories.Get("all"); ok {
		return cached, nil
	}
	var categories []core.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	c.categories.Set("all", categories)
	return categories, nil
}

// ListAccounts fetches the account reference list, cached for a short
// TTL.
func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	if cached, ok := c.accounts.Get("all"); ok {
		return cached, nil
	}
	var accounts []core.Account
	if err := c.doJSON(ctx, http.MethodGet, "/api/accounts", nil, nil, &accounts); err != nil {
		return nil, err
	}
	c.accounts.Set("all", accounts)
	return accounts, nil
}

// MonthlyStats fetches the per-month aggregate rows.
func (c *Client) MonthlyStats(ctx context.Context, q StatsQuery) ([]core.MonthlyStat, error) {
	var stats []core.MonthlyStat
	err := c.doJSON(ctx, http.MethodGet, "/api/stats/monthly", q.values(), nil, &stats)
	return stats, err
}

// CategoryStats fetches the per-category aggregate rows.
func (c *Client) CategoryStats(ctx context.Context, q StatsQuery) ([]core.CategoryStat, error) {
	var stats []core.CategoryStat
	err := c.doJSON(ctx, http.MethodGet, "/api/stats/categories", q.values(), nil, &stats)
	return stats, err
}

// Categorize asks the backend to run its categorization engine over
// uncategorized rows and returns how many it categorized.
func (c *Client) Categorize(ctx context.Context) (int64, error) {
	var resp struct {
		Categorized int64 `json:"categorized"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/categorize", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Categorized, nil
}

// ImportCSV uploads a bank statement as multipart form data under the
// "file" field. The filename matters: the backend detects the bank
// format from it.
func (c *Client) ImportCSV(ctx context.Context, filename string, r io.Reader) (core.ImportResult, error) {
	var result core.ImportResult

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return result, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return result, fmt.Errorf("read statement file: %w", err)
	}
	if err := w.Close(); err != nil {
		return result, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/import", nil, &buf)
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	err = c.send(req, &result)
	return result, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed",
			log.FieldRequestID, requestID,
			log.FieldMethod, req.Method,
			log.FieldPath, req.URL.Path,
			log.FieldError, err)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Request completed",
		log.FieldRequestID, requestID,
		log.FieldMethod, req.Method,
		log.FieldPath, req.URL.Path,
		log.FieldQuery, req.URL.RawQuery,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeError maps a non-2xx response to an *APIError. The message
// comes from the JSON body's "error" field, falling back to the HTTP
// status text when the body is absent or unparsable.
func normalizeError(resp *http.Response) error {
	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = resp.Status
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Error != "" {
		message = body.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
