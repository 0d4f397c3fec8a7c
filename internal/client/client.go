package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"candle-labels/internal/label"
	"candle-labels/internal/model"

	"github.com/rs/zerolog"
)

// ErrUnauthorized is returned for any 401 response. The stored token is cleared first.
var ErrUnauthorized = errors.New("unauthorized: log in again")

// APIError is a non-2xx response decoded from the API error body.
type APIError struct {
	Status        int
	Code          string
	Message       string
	CorrelationID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %s (status %d): %s", e.Code, e.Status, e.Message)
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// OnUnauthorized runs after a 401 clears the token.
	OnUnauthorized func()

	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
}

// Client is a typed client of the candle label API.
type Client struct {
	baseURL        string
	http           *http.Client
	onUnauthorized func()
	logger         zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a new API client.
func New(cfg Config, logger zerolog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           httpClient,
		onUnauthorized: cfg.OnUnauthorized,
		token:          cfg.Token,
		logger:         logger.With().Str("component", "api_client").Logger(),
	}
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, login, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", &model.LoginRequest{Login: login, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return &resp, nil
}

// ListCandles returns candles matching filter. A nil IsActive lists inactive candles too.
func (c *Client) ListCandles(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error) {
	q := url.Values{}
	if filter.Skip > 0 {
		q.Set("skip", strconv.Itoa(filter.Skip))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*filter.CategoryID, 10))
	}
	if filter.IsActive == nil {
		q.Set("is_active", "all")
	} else {
		q.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.SortBy != "" {
		q.Set("sort_by", filter.SortBy)
	}
	if filter.SortOrder != "" {
		q.Set("sort_order", filter.SortOrder)
	}

	var candles []model.Candle
	if err := c.doJSON(ctx, http.MethodGet, "/api/candles?"+q.Encode(), nil, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

// GetCandle returns a single candle.
func (c *Client) GetCandle(ctx context.Context, id int64) (*model.Candle, error) {
	var candle model.Candle
	if err := c.doJSON(ctx, http.MethodGet, candlePath(id), nil, &candle); err != nil {
		return nil, err
	}
	return &candle, nil
}

// CreateCandle stores a new candle.
func (c *Client) CreateCandle(ctx context.Context, req *model.CandleCreate) (*model.Candle, error) {
	var candle model.Candle
	if err := c.doJSON(ctx, http.MethodPost, "/api/candles", req, &candle); err != nil {
		return nil, err
	}
	return &candle, nil
}

// UpdateCandle applies a partial update.
func (c *Client) UpdateCandle(ctx context.Context, id int64, req *model.CandleUpdate) (*model.Candle, error) {
	var candle model.Candle
	if err := c.doJSON(ctx, http.MethodPut, candlePath(id), req, &candle); err != nil {
		return nil, err
	}
	return &candle, nil
}

// SetQuantity sets the print quantity. The server clamps it to [1, 100].
func (c *Client) SetQuantity(ctx context.Context, id int64, quantity int) (*model.Candle, error) {
	return c.changeQuantity(ctx, id, &model.QuantityChange{Quantity: &quantity})
}

// AdjustQuantity adds delta to the print quantity.
func (c *Client) AdjustQuantity(ctx context.Context, id int64, delta int) (*model.Candle, error) {
	return c.changeQuantity(ctx, id, &model.QuantityChange{Delta: &delta})
}

func (c *Client) changeQuantity(ctx context.Context, id int64, req *model.QuantityChange) (*model.Candle, error) {
	var candle model.Candle
	if err := c.doJSON(ctx, http.MethodPatch, candlePath(id)+"/quantity", req, &candle); err != nil {
		return nil, err
	}
	return &candle, nil
}

// DeleteCandle removes a candle.
func (c *Client) DeleteCandle(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, candlePath(id), nil, nil)
}

// Categories lists categories by name.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory stores a new category.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := c.doJSON(ctx, http.MethodPost, "/api/categories", &model.CategoryCreate{Name: name}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// LabelSets lists saved selections, newest first.
func (c *Client) LabelSets(ctx context.Context) ([]model.LabelSet, error) {
	var sets []model.LabelSet
	if err := c.doJSON(ctx, http.MethodGet, "/api/label-sets", nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// CreateLabelSet saves a named selection.
func (c *Client) CreateLabelSet(ctx context.Context, req *model.LabelSetRequest) (*model.LabelSetResponse, error) {
	var set model.LabelSetResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/label-sets", req, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetLabelSet returns a saved selection with its candles.
func (c *Client) GetLabelSet(ctx context.Context, id int64) (*model.LabelSetResponse, error) {
	var set model.LabelSetResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/label-sets/"+strconv.FormatInt(id, 10), nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// Sheet is a rendered label document.
type Sheet struct {
	HTML     []byte
	Filename string
}

// GenerateLabels renders the selection in req.
func (c *Client) GenerateLabels(ctx context.Context, req *label.Request) (*Sheet, error) {
	return c.generate(ctx, "/api/generate-labels", req)
}

// GenerateLabelSet renders a saved selection.
func (c *Client) GenerateLabelSet(ctx context.Context, id int64, req *label.Request) (*Sheet, error) {
	return c.generate(ctx, "/api/label-sets/"+strconv.FormatInt(id, 10)+"/labels", req)
}

func (c *Client) generate(ctx context.Context, path string, req *label.Request) (*Sheet, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read label sheet: %w", err)
	}

	sheet := &Sheet{HTML: html, Filename: label.Filename(time.Now())}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		sheet.Filename = params["filename"]
	}
	return sheet, nil
}

// ImportCandles uploads a CSV or JSON file for bulk import.
func (c *Client) ImportCandles(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error) {
	var result model.ImportResult
	if err := c.postFile(ctx, "/api/candles/import", filename, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upload stores a logo or QR image. kind is "logo" or "qr".
func (c *Client) Upload(ctx context.Context, kind, filename string, r io.Reader) (*model.UploadResult, error) {
	var result model.UploadResult
	if err := c.postFile(ctx, "/api/upload/"+url.PathEscape(kind), filename, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WriteTemplate downloads the CSV import template into w.
func (c *Client) WriteTemplate(ctx context.Context, w io.Writer) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/candles/template/csv", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	return nil
}

func (c *Client) postFile(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, &body, mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeBody(resp, out)
}

// do sends the request and converts non-2xx responses into errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.SetToken("")
		c.logger.Warn().Str("path", path).Msg("session rejected, token cleared")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		var payload model.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
			apiErr.CorrelationID = payload.CorrelationID
		}
		c.logger.Debug().Int("status", resp.StatusCode).Str("code", apiErr.Code).Str("path", path).Msg("api error")
		return nil, apiErr
	}

	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func candlePath(id int64) string {
	return "/api/candles/" + strconv.FormatInt(id, 10)
}
