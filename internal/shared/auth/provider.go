package auth

import (
	"context"
	"strings"
)

// AccessTokenKey is the key the authentication subsystem stores the current access token under.
const AccessTokenKey = "access_token"

// TokenProvider supplies the bearer token for an outbound call. Implementations are read on
// every request and must not cache tokens on behalf of the caller.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a plain function to TokenProvider.
type TokenProviderFunc func(ctx context.Context) (string, error)

func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken always returns the same token. Used for service accounts.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(t)), nil
}

// KeyValueReader is the read side of the shared token store.
type KeyValueReader interface {
	Get(key string) (string, bool)
}

// StoreTokenProvider reads the token from a shared key-value store at call time.
// A missing key yields an empty token rather than an error.
type StoreTokenProvider struct {
	store KeyValueReader
	key   string
}

func NewStoreTokenProvider(store KeyValueReader) *StoreTokenProvider {
	return &StoreTokenProvider{store: store, key: AccessTokenKey}
}

func (p *StoreTokenProvider) Token(context.Context) (string, error) {
	if p == nil || p.store == nil {
		return "", nil
	}
	value, _ := p.store.Get(p.key)
	return strings.TrimSpace(value), nil
}

type tokenContextKey struct{}

// WithToken attaches the caller's token to ctx so it can be forwarded upstream.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, strings.TrimSpace(token))
}

// TokenFromContext returns the token attached with WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok
}

type actorContextKey struct{}

// WithActor attaches the authenticated staff member to ctx for audit records.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, strings.TrimSpace(actor))
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

// ContextTokenProvider forwards the token attached to the request context and falls back
// to another provider when none was attached.
type ContextTokenProvider struct {
	Fallback TokenProvider
}

func (p ContextTokenProvider) Token(ctx context.Context) (string, error) {
	if token, ok := TokenFromContext(ctx); ok {
		return token, nil
	}
	if p.Fallback == nil {
		return "", nil
	}
	return p.Fallback.Token(ctx)
}

var (
	_ TokenProvider = StaticToken("")
	_ TokenProvider = (*StoreTokenProvider)(nil)
	_ TokenProvider = ContextTokenProvider{}
	_ TokenProvider = TokenProviderFunc(nil)
)
