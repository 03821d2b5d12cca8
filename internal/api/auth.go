package api

import (
	"errors"
	"sync"

	"character-builder/internal/config"
)

var ErrRemoteDisabled = errors.New("remote character store is not configured")

// TokenSource holds the session's access token. Holding a token is what
// makes the builder online.
type TokenSource struct {
	mu      sync.RWMutex
	token   string
	enabled bool
}

func NewTokenSource(cfg *config.Config) *TokenSource {
	return &TokenSource{token: cfg.APIToken, enabled: cfg.APIURL != ""}
}

func (t *TokenSource) SetToken(token string) error {
	if !t.enabled {
		return ErrRemoteDisabled
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
	return nil
}

func (t *TokenSource) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
}

// Header returns the Authorization header value, if any.
func (t *TokenSource) Header() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.enabled || t.token == "" {
		return "", false
	}
	return "Bearer " + t.token, true
}

func (t *TokenSource) IsAuthenticated() bool {
	_, ok := t.Header()
	return ok
}
