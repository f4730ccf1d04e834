package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/paramstore"
)

// APIKeySource yields the bearer token for requests.
type APIKeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticKey is a key taken from configuration.
type StaticKey string

// APIKey returns the key, or an error when it is empty.
func (k StaticKey) APIKey(context.Context) (string, error) {
	if strings.TrimSpace(string(k)) == "" {
		return "", errors.New("openai: api key is empty")
	}
	return string(k), nil
}

// ParamStoreKey reads the key from Parameter Store on first use and caches
// the result for the life of the process.
type ParamStoreKey struct {
	getter paramstore.Getter
	name   string

	once sync.Once
	key  string
	err  error
}

// NewParamStoreKey creates a lazily resolved key stored under name.
func NewParamStoreKey(getter paramstore.Getter, name string) *ParamStoreKey {
	return &ParamStoreKey{getter: getter, name: strings.TrimSpace(name)}
}

// APIKey resolves the key once.
func (k *ParamStoreKey) APIKey(ctx context.Context) (string, error) {
	k.once.Do(func() {
		k.key, k.err = fetchAPIKey(ctx, k.getter, k.name)
	})
	return k.key, k.err
}

// tokenPayload is the optional JSON shape of the stored value.
type tokenPayload struct {
	Token string `json:"token"`
}

// fetchAPIKey accepts either the bare key or {"token": "..."}.
func fetchAPIKey(ctx context.Context, getter paramstore.Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("openai: paramstore getter is nil")
	}
	if name == "" {
		return "", errors.New("openai: api key parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("openai: fetch api key from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := sonic.UnmarshalString(raw, &tp); err != nil {
			return "", fmt.Errorf("openai: unmarshal paramstore value as JSON: %w", err)
		}
		raw = tp.Token
	}
	if raw == "" {
		return "", errors.New("openai: api key is empty")
	}
	return raw, nil
}
