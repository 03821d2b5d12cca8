package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"character-builder/internal/config"
	"character-builder/internal/domain"

	"github.com/valyala/fasthttp"
)

var ErrUnauthenticated = errors.New("no access token")

// StatusError is returned for any non 2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %s %s: %d", e.Method, e.Path, e.Code)
}

type CharacterClient struct {
	baseURL string
	auth    *TokenSource
	client  *fasthttp.Client
}

type saveRequest struct {
	JSONData string `json:"jsonData"`
	ID       string `json:"id,omitempty"`
}

func NewCharacterClient(cfg *config.Config, auth *TokenSource) *CharacterClient {
	return &CharacterClient{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		auth:    auth,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// List returns every stored character envelope for the signed in user.
func (c *CharacterClient) List(ctx context.Context) ([]domain.CharacterResult, error) {
	results, err := doRequest[[]domain.CharacterResult](ctx, c, fasthttp.MethodGet, "/character", nil)
	if err != nil {
		return nil, err
	}
	return *results, nil
}

// Save posts the serialized draft. The id is sent when the server already
// knows the record so the write is an idempotent upsert.
func (c *CharacterClient) Save(ctx context.Context, character domain.RawCharacter) (*domain.CharacterResult, error) {
	data, err := json.Marshal(character)
	if err != nil {
		return nil, fmt.Errorf("failed to encode character: %w", err)
	}
	body, err := json.Marshal(saveRequest{JSONData: string(data), ID: character.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return doRequest[domain.CharacterResult](ctx, c, fasthttp.MethodPost, "/character", body)
}

func (c *CharacterClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("character id is required")
	}
	_, err := c.do(ctx, fasthttp.MethodDelete, "/character/"+url.PathEscape(id), nil)
	return err
}

func doRequest[T any](ctx context.Context, client *CharacterClient, method, path string, body []byte) (*T, error) {
	data, err := client.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return &result, nil
}

func (c *CharacterClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrRemoteDisabled
	}
	header, ok := c.auth.Header()
	if !ok {
		return nil, ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, &StatusError{Method: method, Path: path, Code: code}
	}

	// resp is released on return
	return append([]byte(nil), resp.Body()...), nil
}
