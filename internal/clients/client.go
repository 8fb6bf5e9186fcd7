package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Config — параметры подключения к одному сервису.
type Config struct {
	// URL — базовый адрес сервиса, например "http://lots.registry:6543".
	URL string

	// Token — Bearer-токен concierge.
	Token string

	// Timeout — таймаут одного запроса. По умолчанию 30с.
	Timeout time.Duration
}

// client — общий HTTP-транспорт для всех трёх сервисов.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(cfg Config) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &client{
		base:  strings.TrimRight(cfg.URL, "/"),
		token: cfg.Token,
		http:  &http.Client{Timeout: timeout},
	}
}

// dataEnvelope — конверт {"data": ...}, в котором сервисы реестра
// принимают и отдают полезную нагрузку.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// do выполняет один запрос. in (если не nil) сериализуется в
// {"data": in}; при 2xx поле data ответа десериализуется в out (если
// не nil). Не-2xx ответ превращается в *APIError.
func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		wrapped, err := json.Marshal(dataEnvelope{Data: payload})
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}
		body = bytes.NewReader(wrapped)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessageFromBody(respBody),
		}
	}

	if out == nil {
		return nil
	}
	var envelope dataEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

// check проверяет доступность сервиса: любой HTTP-ответ, включая
// ошибочный, означает живой сервис; отказом считается только
// транспортная ошибка.
func (c *client) check(ctx context.Context, path string) error {
	err := c.do(ctx, http.MethodGet, path, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil
	}
	return err
}

// errorMessageFromBody достаёт описание ошибки из стандартного тела
// {"status": "error", "errors": [{"description": ...}]}; если тело не
// разбирается — возвращает его усечённым как есть.
func errorMessageFromBody(body []byte) string {
	var parsed struct {
		Errors []struct {
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		return parsed.Errors[0].Description
	}
	return truncate(string(body), 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
