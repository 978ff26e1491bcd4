package gcontacts

import (
	"context"
	"net/url"
	"strconv"
)

// Defaults for contact listing. The far-past updated-min and the large
// max-results cap make an unfiltered List return the whole account.
const (
	defaultUpdatedMin = "1901-01-16T00:00:00"
	defaultMaxResults = 100000
)

// ListOptions narrow a contact listing. The zero value lists everything.
type ListOptions struct {
	// UpdatedMin keeps only entries updated at or after this timestamp.
	UpdatedMin string

	// MaxResults caps the number of returned entries.
	MaxResults int

	// Params are passed through to the feed untouched, e.g. "group" with
	// a group href for per-group listing.
	Params url.Values
}

// ContactsService reads and writes contacts. Unlike GroupsService its
// operations do not retry: transport failures surface immediately.
type ContactsService struct {
	transport *transport
	groups    *GroupsService

	baseURL string
}

// List fetches contacts matching opts. A feed without entries is an
// account with zero contacts, not an error.
func (s *ContactsService) List(ctx context.Context, opts *ListOptions) ([]Contact, error) {
	params := url.Values{}
	params.Set("updated-min", defaultUpdatedMin)
	params.Set("max-results", strconv.Itoa(defaultMaxResults))
	if opts != nil {
		if opts.UpdatedMin != "" {
			params.Set("updated-min", opts.UpdatedMin)
		}
		if opts.MaxResults > 0 {
			params.Set("max-results", strconv.Itoa(opts.MaxResults))
		}
		for key, values := range opts.Params {
			for _, value := range values {
				params.Set(key, value)
			}
		}
	}

	data, err := s.transport.getJSON(ctx, s.baseURL, params)
	if err != nil {
		return nil, err
	}
	feed := asObject(data["feed"])
	return decodeContactList(asList(feed["entry"])), nil
}

// ListByGroup fetches the contacts belonging to one group.
func (s *ContactsService) ListByGroup(ctx context.Context, groupID string) ([]Contact, error) {
	href, err := s.groups.URL(ctx, groupID)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("group", href)
	return s.List(ctx, &ListOptions{Params: params})
}

// Get fetches a single contact. A response without an entry yields a zero
// Contact, not an error.
func (s *ContactsService) Get(ctx context.Context, contactID string) (Contact, error) {
	data, err := s.transport.getJSON(ctx, s.baseURL+"/"+contactID, nil)
	if err != nil {
		return Contact{}, err
	}
	entry := asObject(data["entry"])
	if entry == nil {
		return Contact{}, nil
	}
	return decodeContact(entry), nil
}

// Create builds an entry document from the template, applies the update
// and posts it. The provider cannot set phonetic names at creation time,
// so the same document is put back against the assigned id afterwards.
// Returns the new contact's id.
func (s *ContactsService) Create(ctx context.Context, update ContactUpdate) (string, error) {
	doc, err := newContactDocument()
	if err != nil {
		return "", err
	}
	if err := applyContactUpdate(doc, update, s.groupURL(ctx)); err != nil {
		return "", err
	}
	body, err := doc.WriteToString()
	if err != nil {
		return "", err
	}

	response, err := s.transport.post(ctx, s.baseURL, body)
	if err != nil {
		return "", err
	}
	created, err := parseEntryDocument(response)
	if err != nil {
		return "", err
	}
	idEl := findByTag(created.Root(), "id")
	if idEl == nil {
		return "", ErrMalformedResponse
	}
	contactID := parseID(idEl.Text())
	if contactID == "" {
		return "", ErrMalformedResponse
	}

	if _, err := s.transport.put(ctx, s.baseURL+"/"+contactID, body); err != nil {
		return "", err
	}
	return contactID, nil
}

// Update fetches the contact's current entry document, applies the update
// to it and writes it back with If-Match: *.
func (s *ContactsService) Update(ctx context.Context, contactID string, update ContactUpdate) error {
	entryURL := s.baseURL + "/" + contactID
	body, err := s.transport.getRaw(ctx, entryURL)
	if err != nil {
		return err
	}
	doc, err := parseEntryDocument(body)
	if err != nil {
		return err
	}
	if err := applyContactUpdate(doc, update, s.groupURL(ctx)); err != nil {
		return err
	}
	updated, err := doc.WriteToString()
	if err != nil {
		return err
	}
	_, err = s.transport.put(ctx, entryURL, updated)
	return err
}

// Delete removes a contact. A 404 counts as success.
func (s *ContactsService) Delete(ctx context.Context, contactID string) error {
	return s.transport.delete(ctx, s.baseURL+"/"+contactID)
}

func (s *ContactsService) groupURL(ctx context.Context) groupURLFunc {
	return func(groupID string) (string, error) {
		return s.groups.URL(ctx, groupID)
	}
}
