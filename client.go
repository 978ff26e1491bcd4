package gcontacts

import (
	"net/http"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client bundles the contacts and groups services over one authenticated
// transport. It holds no mutable state beyond the token provider, so a
// single Client is safe for concurrent use.
type Client struct {
	Contacts *ContactsService
	Groups   *GroupsService
}

// NewClient creates a client that authenticates every request through the
// given token provider.
func NewClient(tokens TokenProvider) *Client {
	return NewClientWithHTTP(tokens, &http.Client{Timeout: DefaultTimeout})
}

// NewClientWithHTTP creates a client over a caller-supplied HTTP client.
// Timeouts and cancellation are the HTTP client's concern.
func NewClientWithHTTP(tokens TokenProvider, httpClient *http.Client) *Client {
	groups := &GroupsService{
		transport: &transport{
			httpClient: httpClient,
			tokens:     tokens,
			limiter:    newRateLimiter(feedGroups),
		},
		attempts: DefaultRetryAttempts,
		delay:    DefaultRetryDelay,
		baseURL:  groupsFeedURL,
	}
	contacts := &ContactsService{
		transport: &transport{
			httpClient: httpClient,
			tokens:     tokens,
			limiter:    newRateLimiter(feedContacts),
		},
		groups:  groups,
		baseURL: contactsFeedURL,
	}
	return &Client{
		Contacts: contacts,
		Groups:   groups,
	}
}
