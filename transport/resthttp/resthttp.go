// Package resthttp implements rescache.Transport over a JSON REST backend
// with the usual verb mapping: GET /resource lists, POST /resource creates,
// PUT /resource/{id} updates, DELETE /resource/{id} deletes.
package resthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/unkn0wn-root/rescache"
	"github.com/unkn0wn-root/rescache/codec"
)

// Error carries the backend's status code and response message, satisfying
// the transport contract that rejections are inspectable by the caller.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("resthttp: backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("resthttp: backend returned %d: %s", e.StatusCode, e.Message)
}

// Config tunes the client. BaseURL and ID are required.
type Config[E any] struct {
	BaseURL string
	ID      func(E) string // entity id, used to build /resource/{id} paths

	Client      *http.Client     // nil => 10s-timeout client
	Codec       codec.Codec[E]   // entity payloads; nil => codec.JSON[E]{}
	ListCodec   codec.Codec[[]E] // collection payloads; nil => codec.JSON[[]E]{}
	ContentType string           // nil-ish => "application/json"
}

type Client[E any] struct {
	base        string
	id          func(E) string
	hc          *http.Client
	codec       codec.Codec[E]
	list        codec.Codec[[]E]
	contentType string
}

var _ rescache.Transport[any] = (*Client[any])(nil)

func New[E any](cfg Config[E]) (*Client[E], error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("resthttp: BaseURL is required")
	}
	if cfg.ID == nil {
		return nil, errors.New("resthttp: ID function is required")
	}
	c := &Client[E]{
		base: strings.TrimSuffix(cfg.BaseURL, "/"),
		id:   cfg.ID,
	}
	if cfg.Client != nil {
		c.hc = cfg.Client
	} else {
		c.hc = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Codec != nil {
		c.codec = cfg.Codec
	} else {
		c.codec = codec.JSON[E]{}
	}
	if cfg.ListCodec != nil {
		c.list = cfg.ListCodec
	} else {
		c.list = codec.JSON[[]E]{}
	}
	c.contentType = cfg.ContentType
	if c.contentType == "" {
		c.contentType = "application/json"
	}
	return c, nil
}

func (c *Client[E]) List(ctx context.Context, resource string) ([]E, error) {
	body, err := c.do(ctx, http.MethodGet, c.collectionURL(resource), nil)
	if err != nil {
		return nil, err
	}
	return c.list.Decode(body)
}

func (c *Client[E]) Create(ctx context.Context, resource string, entity E) (E, error) {
	return c.send(ctx, http.MethodPost, c.collectionURL(resource), entity)
}

func (c *Client[E]) Update(ctx context.Context, resource string, entity E) (E, error) {
	return c.send(ctx, http.MethodPut, c.entityURL(resource, c.id(entity)), entity)
}

func (c *Client[E]) Delete(ctx context.Context, resource string, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.entityURL(resource, id), nil)
	return err
}

// send writes the entity and returns the backend's acknowledged version.
// A backend answering with an empty body (e.g. 204) acknowledges the entity
// as sent.
func (c *Client[E]) send(ctx context.Context, method, u string, entity E) (E, error) {
	var zero E
	payload, err := c.codec.Encode(entity)
	if err != nil {
		return zero, fmt.Errorf("resthttp: encode entity: %w", err)
	}
	body, err := c.do(ctx, method, u, payload)
	if err != nil {
		return zero, err
	}
	if len(body) == 0 {
		return entity, nil
	}
	return c.codec.Decode(body)
}

func (c *Client[E]) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", c.contentType)
	}
	req.Header.Set("Accept", c.contentType)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(body)), 512),
		}
	}
	return body, nil
}

func (c *Client[E]) collectionURL(resource string) string {
	return c.base + "/" + strings.Trim(resource, "/")
}

func (c *Client[E]) entityURL(resource, id string) string {
	return c.collectionURL(resource) + "/" + url.PathEscape(id)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
