package gcontacts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
)

// Fixed provider endpoints. The m8 feeds are not configurable.
const (
	contactsFeedURL = "https://www.google.com/m8/feeds/contacts/default/full"
	groupsFeedURL   = "https://www.google.com/m8/feeds/groups/default/full"

	gdataVersion = "3.0"
)

// TokenProvider supplies a bearer token per request. Implementations
// refresh out of band; the client never inspects token contents.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// transport issues the raw GData round-trips. Reads ask for JSON
// (alt=json) or a raw Atom body; writes send Atom XML with If-Match: * to
// bypass the provider's optimistic-concurrency check.
type transport struct {
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *RateLimiter
}

// getJSON performs an alt=json read and decodes the response body.
func (t *transport) getJSON(ctx context.Context, rawURL string, params url.Values) (map[string]any, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("alt", "json")
	headers := map[string]string{
		"GData-Version": gdataVersion,
		"Content-Type":  "application/json",
	}
	body, err := t.do(ctx, http.MethodGet, rawURL, params, headers, "")
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, ErrMalformedResponse
	}
	return data, nil
}

// getRaw fetches an entry's Atom XML body for later mutation.
func (t *transport) getRaw(ctx context.Context, rawURL string) (string, error) {
	headers := map[string]string{
		"GData-Version": gdataVersion,
		"Content-Type":  "application/atom+xml",
	}
	return t.do(ctx, http.MethodGet, rawURL, nil, headers, "")
}

func (t *transport) post(ctx context.Context, rawURL, body string) (string, error) {
	headers := map[string]string{
		"Content-Type": "application/atom+xml",
	}
	return t.do(ctx, http.MethodPost, rawURL, nil, headers, body)
}

func (t *transport) put(ctx context.Context, rawURL, body string) (string, error) {
	headers := map[string]string{
		"GData-Version": gdataVersion,
		"Content-Type":  "application/atom+xml",
		"If-Match":      "*",
	}
	return t.do(ctx, http.MethodPut, rawURL, nil, headers, body)
}

// delete removes an entry. 200 and 404 both count as success: an entry
// that is already gone is gone.
func (t *transport) delete(ctx context.Context, rawURL string) error {
	headers := map[string]string{
		"If-Match": "*",
	}
	_, err := t.do(ctx, http.MethodDelete, rawURL, nil, headers, "")
	if IsNotFound(err) {
		return nil
	}
	return err
}

func (t *transport) do(ctx context.Context, method, rawURL string, params url.Values, headers map[string]string, body string) (string, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return "", err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	token, err := t.tokens.GetToken(ctx)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		if IsRateLimited(err) {
			t.limiter.RecordRateLimitError(retryAfterSeconds(resp))
		}
		return "", err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// retryAfterSeconds reads a Retry-After header, or 0 when absent.
func retryAfterSeconds(resp *http.Response) int {
	seconds, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	return seconds
}

// normalizeXMLBody undoes the provider's URL escaping and strips embedded
// newlines so the body parses as one line of XML.
func normalizeXMLBody(body string) string {
	if unescaped, err := url.QueryUnescape(body); err == nil {
		body = unescaped
	}
	return strings.ReplaceAll(body, "\n", "")
}
