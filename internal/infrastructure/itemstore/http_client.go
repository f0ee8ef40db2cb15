package itemstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bid_pricing/internal/domain/entities"
	"bid_pricing/internal/domain/mapping"
	"bid_pricing/internal/usecase/interfaces"
)

const (
	DefaultTimeout = 10 * time.Second

	// responses larger than this are rejected rather than buffered
	maxBodyBytes = 8 << 20
)

var ErrNotConfigured = errors.New("item store base url not configured")

// StatusError is returned when the item store answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("item store %s %s: unexpected status code: %d", e.Method, e.Path, e.Code)
}

// HTTPClient talks to a remote item backend exposing:
//
//	GET    {base}/bids/{bid}/demolition-items
//	PUT    {base}/bids/{bid}/demolition-items            full replace
//	POST   {base}/bids/{bid}/demolition-items            create one
//	PUT    {base}/bids/{bid}/demolition-items/{item}     update one
//	DELETE {base}/bids/{bid}/demolition-items/{item}
//
// List responses may use any envelope mapping.DecodeEnvelope understands.
type HTTPClient struct {
	Client  *http.Client
	BaseURL string
}

var _ interfaces.IDemolitionItemRepository = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) FetchByBid(ctx context.Context, bidID string) (mapping.Envelope, error) {
	body, err := c.do(ctx, http.MethodGet, itemsPath(bidID), nil)
	if err != nil {
		return mapping.Envelope{}, err
	}
	env, err := mapping.DecodeEnvelope(body)
	if err != nil {
		log.Printf("[itemstore][http] fetch decode failed bid_id=%s err=%v", bidID, err)
		return mapping.Envelope{}, fmt.Errorf("failed to decode items: %w", err)
	}
	return env, nil
}

func (c *HTTPClient) Create(ctx context.Context, bidID string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
	body, err := c.do(ctx, http.MethodPost, itemsPath(bidID), rec)
	if err != nil {
		return entities.DemolitionRecord{}, err
	}
	return decodeRecord(body)
}

// Update returns a zero record when the store does not know the item.
func (c *HTTPClient) Update(ctx context.Context, bidID, itemNumber string, rec entities.DemolitionRecord) (entities.DemolitionRecord, error) {
	body, err := c.do(ctx, http.MethodPut, itemPath(bidID, itemNumber), rec)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return entities.DemolitionRecord{}, nil
	}
	if err != nil {
		return entities.DemolitionRecord{}, err
	}
	return decodeRecord(body)
}

// Delete treats an already missing item as deleted.
func (c *HTTPClient) Delete(ctx context.Context, bidID, itemNumber string) error {
	_, err := c.do(ctx, http.MethodDelete, itemPath(bidID, itemNumber), nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil
	}
	return err
}

func (c *HTTPClient) ReplaceAll(ctx context.Context, bidID string, records []entities.DemolitionRecord) ([]entities.DemolitionRecord, error) {
	if records == nil {
		records = []entities.DemolitionRecord{}
	}
	payload := map[string]any{"demolitionItems": records}
	body, err := c.do(ctx, http.MethodPut, itemsPath(bidID), payload)
	if err != nil {
		return nil, err
	}
	env, err := mapping.DecodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if env.Shape == mapping.ShapeEmpty {
		// store acknowledged without echoing
		return records, nil
	}
	return env.Items, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	if c == nil || c.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[itemstore][http] request failed method=%s path=%s err=%v", method, path, err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	log.Printf("[itemstore][http] %s %s status=%d elapsed=%s", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// decodeRecord accepts a bare record or one wrapped in data/item.
func decodeRecord(body []byte) (entities.DemolitionRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return entities.DemolitionRecord{}, nil
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		for _, inner := range []json.RawMessage{wrapped.Data, wrapped.Item} {
			if inner = bytes.TrimSpace(inner); len(inner) > 0 && inner[0] == '{' {
				body = inner
				break
			}
		}
	}
	var rec entities.DemolitionRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return entities.DemolitionRecord{}, fmt.Errorf("failed to decode item: %w", err)
	}
	return rec, nil
}

func itemsPath(bidID string) string {
	return "/bids/" + url.PathEscape(bidID) + "/demolition-items"
}

func itemPath(bidID, itemNumber string) string {
	return itemsPath(bidID) + "/" + url.PathEscape(itemNumber)
}
