package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shaiso/Concierge/internal/domain"
)

const (
	defaultLimit   = 100
	defaultTimeout = 30 * time.Second

	designDocID = "_design/lots"
	filterName  = "status"

	// FilterDoc — полное имя фильтра для параметра filter= в _changes.
	FilterDoc = "lots/status"
)

// ErrSetup — document store недоступен или не принял конфигурацию
// базы/фильтра. Ошибка конструирования, валит процесс на старте.
var ErrSetup = errors.New("feed: setup failed")

// Config — подключение к document store.
type Config struct {
	// URL — адрес сервера, например "http://127.0.0.1:5984".
	// Логин и пароль задаются прямо в URL.
	URL string `yaml:"url"`

	// Name — имя базы с лотами.
	Name string `yaml:"name"`

	// Limit — размер одной порции _changes. По умолчанию 100.
	Limit int `yaml:"limit"`
}

// Client — клиент change feed.
type Client struct {
	http   *http.Client
	base   string
	db     string
	limit  int
	cursor *Cursor
	logger *slog.Logger
}

// New создаёт клиент feed. Курсор передаётся снаружи: он переживает
// пересоздание клиента и им же пользуется расписание сброса.
func New(cfg Config, cursor *Cursor, logger *slog.Logger) *Client {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Client{
		http:   &http.Client{Timeout: defaultTimeout},
		base:   strings.TrimRight(cfg.URL, "/"),
		db:     cfg.Name,
		limit:  limit,
		cursor: cursor,
		logger: logger,
	}
}

// Check проверяет доступность document store и существование базы.
func (c *Client) Check(ctx context.Context) error {
	status, _, err := c.request(ctx, http.MethodGet, "/"+c.db, nil)
	if err != nil {
		return err
	}
	if status != 200 {
		return fmt.Errorf("database %q: status %d", c.db, status)
	}
	return nil
}

// Setup приводит document store к рабочему виду: создаёт базу, если её
// нет, и создаёт либо обновляет фильтр lots/status с переданным
// предикатом.
func (c *Client) Setup(ctx context.Context, filterCondition string) error {
	if err := c.ensureDB(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSetup, err)
	}
	if err := c.ensureFilter(ctx, BuildFilter(filterCondition)); err != nil {
		return fmt.Errorf("%w: %v", ErrSetup, err)
	}
	return nil
}

func (c *Client) ensureDB(ctx context.Context) error {
	status, _, err := c.request(ctx, http.MethodPut, "/"+c.db, nil)
	if err != nil {
		return err
	}
	switch status {
	case 201:
		c.logger.Info("created feed database", "db", c.db)
		return nil
	case 412:
		// база уже существует
		return nil
	default:
		return fmt.Errorf("create database %q: status %d", c.db, status)
	}
}

// designDoc — design-документ с фильтрами.
type designDoc struct {
	ID      string            `json:"_id"`
	Rev     string            `json:"_rev,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

func (c *Client) ensureFilter(ctx context.Context, filter string) error {
	path := "/" + c.db + "/" + designDocID

	var doc designDoc
	status, body, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	switch status {
	case 200:
		if err := json.Unmarshal(body, &doc); err != nil {
			return fmt.Errorf("decode design doc: %w", err)
		}
	case 404:
		doc = designDoc{ID: designDocID}
	default:
		return fmt.Errorf("get design doc: status %d", status)
	}

	if doc.Filters == nil {
		doc.Filters = make(map[string]string)
	}
	if existing, ok := doc.Filters[filterName]; ok && existing == filter {
		c.logger.Debug("feed filter is up to date", "filter", FilterDoc)
		return nil
	}
	doc.Filters[filterName] = filter

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal design doc: %w", err)
	}
	status, _, err = c.request(ctx, http.MethodPut, path, payload)
	if err != nil {
		return err
	}
	if status != 201 {
		return fmt.Errorf("save design doc: status %d", status)
	}
	c.logger.Info("feed filter saved", "filter", FilterDoc)
	return nil
}

// changesResponse — ответ _changes.
type changesResponse struct {
	Results []struct {
		ID  string          `json:"id"`
		Doc json.RawMessage `json:"doc"`
	} `json:"results"`
	LastSeq json.RawMessage `json:"last_seq"`
}

// docMeta — служебные поля документа.
type docMeta struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev"`
}

// Drain вычитывает feed от текущей позиции курсора до пустой порции и
// возвращает полученные лоты в порядке коммита. Перед дреном курсор
// может быть сброшен по расписанию (полная перефильтрация).
//
// Ошибка транспорта прерывает дрен; уже вычитанные лоты возвращаются —
// курсор за них сдвинут, терять их нельзя.
func (c *Client) Drain(ctx context.Context) ([]domain.Lot, error) {
	c.cursor.MaybeDrop(c.logger)

	var lots []domain.Lot
	for {
		batch, err := c.changes(ctx)
		if err != nil {
			return lots, err
		}
		if len(batch) == 0 {
			return lots, nil
		}
		lots = append(lots, batch...)
	}
}

func (c *Client) changes(ctx context.Context) ([]domain.Lot, error) {
	q := url.Values{}
	q.Set("include_docs", "true")
	q.Set("limit", fmt.Sprint(c.limit))
	q.Set("filter", FilterDoc)
	if since := c.cursor.Get(); since != "" {
		q.Set("since", since)
	}

	status, body, err := c.request(ctx, http.MethodGet, "/"+c.db+"/_changes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("get changes: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("get changes: status %d", status)
	}

	var resp changesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}

	c.cursor.Set(decodeSeq(resp.LastSeq))
	c.logger.Info("documents got from feed", "count", len(resp.Results))

	lots := make([]domain.Lot, 0, len(resp.Results))
	for _, row := range resp.Results {
		var lot domain.Lot
		if err := json.Unmarshal(row.Doc, &lot); err != nil {
			c.logger.Error("skipping malformed feed document", "doc_id", row.ID, "error", err)
			continue
		}
		var meta docMeta
		if err := json.Unmarshal(row.Doc, &meta); err == nil {
			lot.ID = meta.ID
			lot.Rev = meta.Rev
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

// decodeSeq приводит непрозрачный last_seq к строке: разные версии
// document store отдают его числом либо строкой.
func decodeSeq(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (c *Client) request(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
