package gcontacts

import (
	"context"

	"golang.org/x/oauth2"
)

// StaticTokenProvider returns a fixed access token. Useful for tests and
// for short-lived tooling that refreshes out of band.
type StaticTokenProvider string

// GetToken implements TokenProvider.
func (p StaticTokenProvider) GetToken(context.Context) (string, error) {
	return string(p), nil
}

// TokenSourceProvider adapts an oauth2.TokenSource to TokenProvider, so a
// refreshing *oauth2.Config token source can drive the client.
type TokenSourceProvider struct {
	ts oauth2.TokenSource
}

// NewTokenSourceProvider wraps an oauth2.TokenSource.
func NewTokenSourceProvider(ts oauth2.TokenSource) *TokenSourceProvider {
	return &TokenSourceProvider{ts: ts}
}

// GetToken implements TokenProvider.
func (p *TokenSourceProvider) GetToken(context.Context) (string, error) {
	token, err := p.ts.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// tokenSourceAdapter adapts a TokenProvider back to oauth2.TokenSource,
// for callers that want an oauth2.NewClient transport around this
// provider.
type tokenSourceAdapter struct {
	provider TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
func NewTokenSource(ctx context.Context, provider TokenProvider) oauth2.TokenSource {
	return &tokenSourceAdapter{provider: provider, ctx: ctx}
}

// Token implements oauth2.TokenSource.
func (t *tokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
