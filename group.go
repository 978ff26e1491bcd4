package gcontacts

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Group is one contact group. BaseURL is the provider's full entry URL,
// kept because per-group URLs for membership edits are derived from it; ID
// is its trailing path segment.
type Group struct {
	ID      string
	Title   string
	BaseURL string
}

// decodeGroup builds a Group from one provider feed entry.
func decodeGroup(entry map[string]any) Group {
	cleansed := cleanseEntry(entry)
	base := asString(cleansed["id"])
	return Group{
		ID:      parseID(base),
		Title:   asString(cleansed["title"]),
		BaseURL: base,
	}
}

// decodeGroupList maps decodeGroup over a feed's entries.
func decodeGroupList(entries []any) []Group {
	groups := make([]Group, 0, len(entries))
	for _, raw := range entries {
		if entry, ok := raw.(map[string]any); ok {
			groups = append(groups, decodeGroup(entry))
		}
	}
	return groups
}

// groupEntryXML builds a create-group request body. The title text is
// XML-escaped on serialisation.
func groupEntryXML(title string) (string, error) {
	doc := etree.NewDocument()
	entry := doc.CreateElement("atom:entry")
	entry.CreateAttr("xmlns:gd", schemaNS)
	entry.CreateAttr("xmlns:atom", atomNS)
	category := entry.CreateElement("atom:category")
	category.CreateAttr("scheme", schemaNS+"#kind")
	category.CreateAttr("term", groupTerm)
	titleEl := entry.CreateElement("atom:title")
	titleEl.CreateAttr("type", "text")
	titleEl.SetText(title)
	return doc.WriteToString()
}

// renameGroupXML swaps the title text of a previously fetched group
// document, preserving every other element (etag, id, membership counts)
// verbatim.
func renameGroupXML(body, title string) (string, error) {
	doc, err := parseEntryDocument(body)
	if err != nil {
		return "", err
	}
	titleEl := findByTag(doc.Root(), "title")
	if titleEl == nil {
		return "", ErrMalformedResponse
	}
	titleEl.SetText(title)
	return doc.WriteToString()
}

// decodeGroupEntryXML reads the provider's XML response to a group create,
// picking out the entry URL and title.
func decodeGroupEntryXML(body string) (Group, error) {
	doc, err := parseEntryDocument(body)
	if err != nil {
		return Group{}, err
	}
	idEl := findByTag(doc.Root(), "id")
	if idEl == nil {
		return Group{}, ErrMalformedResponse
	}
	base := idEl.Text()
	group := Group{ID: parseID(base), BaseURL: base}
	if titleEl := findByTag(doc.Root(), "title"); titleEl != nil {
		group.Title = titleEl.Text()
	}
	return group, nil
}

// GroupsService reads and writes contact groups. Every operation retries
// transient transport failures before re-raising the original error; see
// withRetry.
type GroupsService struct {
	transport *transport

	attempts int
	delay    time.Duration

	baseURL string
}

// List fetches every contact group on the account.
func (s *GroupsService) List(ctx context.Context) ([]Group, error) {
	var groups []Group
	err := s.retry(ctx, func() error {
		params := url.Values{}
		params.Set("max-results", "100")
		data, err := s.transport.getJSON(ctx, s.baseURL, params)
		if err != nil {
			return err
		}
		feed := asObject(data["feed"])
		if feed == nil {
			return ErrMalformedResponse
		}
		groups = decodeGroupList(asList(feed["entry"]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Create adds a new group with the given title and returns it as decoded
// from the provider's response.
func (s *GroupsService) Create(ctx context.Context, title string) (Group, error) {
	body, err := groupEntryXML(title)
	if err != nil {
		return Group{}, err
	}
	var group Group
	err = s.retry(ctx, func() error {
		response, err := s.transport.post(ctx, s.baseURL, body)
		if err != nil {
			return err
		}
		group, err = decodeGroupEntryXML(response)
		return err
	})
	return group, err
}

// Rename fetches the group entry, replaces its title and writes it back.
func (s *GroupsService) Rename(ctx context.Context, groupID, title string) error {
	return s.retry(ctx, func() error {
		entryURL := s.baseURL + "/" + groupID
		body, err := s.transport.getRaw(ctx, entryURL)
		if err != nil {
			return err
		}
		renamed, err := renameGroupXML(body, title)
		if err != nil {
			return err
		}
		_, err = s.transport.put(ctx, entryURL, renamed)
		return err
	})
}

// Delete removes a group. A 404 means the group is already gone and is
// treated as success.
func (s *GroupsService) Delete(ctx context.Context, groupID string) error {
	return s.retry(ctx, func() error {
		return s.transport.delete(ctx, s.baseURL+"/"+groupID)
	})
}

// URL derives the per-id entry URL for a group by rewriting the trailing
// base/<id> segment of any existing group's BaseURL. An account with zero
// groups has nothing to derive from and fails with ErrNoGroups.
func (s *GroupsService) URL(ctx context.Context, groupID string) (string, error) {
	groups, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "", ErrNoGroups
	}
	base := groups[0].BaseURL
	i := strings.Index(base, "/base/")
	if i < 0 {
		return "", ErrMalformedResponse
	}
	return base[:i] + "/base/" + groupID, nil
}

func (s *GroupsService) retry(ctx context.Context, fn func() error) error {
	return withRetry(ctx, s.attempts, s.delay, fn)
}
