// Package credentials keeps provider API keys in the state store so they can
// be set with moodctl instead of the environment.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/kv"
)

const (
	ProviderPollinations = "pollinations"
	ProviderGemini       = "gemini"
)

const keyPrefix = "sketch-my-mood-credential-"

var ErrUnknownProvider = errors.New("unknown credential provider")

type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func validProvider(provider string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	switch provider {
	case ProviderPollinations, ProviderGemini:
		return provider, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// Token returns the stored key, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	provider, err := validProvider(provider)
	if err != nil {
		return "", err
	}
	v, ok, err := s.kv.Get(ctx, keyPrefix+provider)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	provider, err := validProvider(provider)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%s api key is required", provider)
	}
	return s.kv.Set(ctx, keyPrefix+provider, token)
}

func (s *Store) DeleteToken(ctx context.Context, provider string) error {
	provider, err := validProvider(provider)
	if err != nil {
		return err
	}
	return s.kv.Delete(ctx, keyPrefix+provider)
}

// Resolve prefers the environment value and falls back to the stored key.
func (s *Store) Resolve(ctx context.Context, provider, fromEnv string) (string, error) {
	if v := strings.TrimSpace(fromEnv); v != "" {
		return v, nil
	}
	if s == nil {
		return "", nil
	}
	return s.Token(ctx, provider)
}
