// Package airtable - HTTP-клиент таблиц автомобилей, заявок и обращений.
package airtable

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

	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
)

const (
	DefaultBaseURL      = "https://api.airtable.com/v0"
	DefaultCarsTable    = "Автомобили (Cars)"
	DefaultOrdersTable  = "Заявки на аренду"
	DefaultContactTable = "Заявки на связь"

	defaultRetryAfter = 30 * time.Second
	serviceName       = "airtable"
)

var ErrMisconfigured = errors.New("airtable client is not configured")

// APIError - ответ сервиса с кодом вне 2xx.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("airtable responded with status %d: %s", e.StatusCode, e.Message)
}

// RateLimitError содержит паузу, которую рекомендует сервис.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Record - запись таблицы.
type Record struct {
	ID          string          `json:"id"`
	CreatedTime time.Time       `json:"createdTime"`
	Fields      json.RawMessage `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// Client интерфейс доступа к таблицам.
type Client interface {
	FetchCars(ctx context.Context) ([]models.Car, error)
	FetchOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, payload OrderPayload) (*Record, error)
	CreateContactRequest(ctx context.Context, req models.ContactRequest, created time.Time) (*Record, error)
}

// Config - параметры подключения.
type Config struct {
	BaseURL      string
	BaseID       string
	Token        string
	CarsTable    string
	OrdersTable  string
	ContactTable string
	Timeout      time.Duration
}

type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPClient создаёт HTTP-клиент.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CarsTable == "" {
		cfg.CarsTable = DefaultCarsTable
	}
	if cfg.OrdersTable == "" {
		cfg.OrdersTable = DefaultOrdersTable
	}
	if cfg.ContactTable == "" {
		cfg.ContactTable = DefaultContactTable
	}
	return &HTTPClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *HTTPClient) tableURL(table string, query url.Values) (string, error) {
	if c.cfg.BaseID == "" {
		return "", ErrMisconfigured
	}
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid airtable base url: %w", err)
	}
	u = u.JoinPath(c.cfg.BaseID, table)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// list читает все страницы таблицы.
func (c *HTTPClient) list(ctx context.Context, table string, query url.Values) ([]Record, error) {
	var records []Record
	offset := ""
	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		target, err := c.tableURL(table, q)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, target, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// create добавляет запись с указанными полями.
func (c *HTTPClient) create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	target, err := c.tableURL(table, nil)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	var rec Record
	if err := c.do(ctx, http.MethodPost, target, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode airtable response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return parseAPIError(resp)
	}
}

// parseAPIError разбирает оба формата ошибки: {"error":"NOT_FOUND"} и {"error":{"type":..,"message":..}}.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	var code string
	switch {
	case json.Unmarshal(envelope.Error, &code) == nil:
		apiErr.Type = code
		apiErr.Message = code
	case json.Unmarshal(envelope.Error, &detail) == nil:
		apiErr.Type = detail.Type
		apiErr.Message = detail.Message
		if apiErr.Message == "" {
			apiErr.Message = detail.Type
		}
	}
	return apiErr
}

func parseRetryAfter(val string) time.Duration {
	if val == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		return time.Until(t)
	}
	return defaultRetryAfter
}

func logCall(operation string, fn func() error, args ...any) error {
	logger.ExternalServiceCall(serviceName, operation, args...)
	err := fn()
	logger.ExternalServiceResult(serviceName, operation, err, args...)
	return err
}
