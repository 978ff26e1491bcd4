package gcontacts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points both services at a local test server with retry
// delays zeroed out.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClientWithHTTP(StaticTokenProvider("test-token"), srv.Client())
	client.Contacts.baseURL = srv.URL + "/contacts"
	client.Groups.baseURL = srv.URL + "/groups"
	client.Groups.delay = 0
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func contactsFeedFixture() map[string]any {
	return map[string]any{
		"feed": map[string]any{
			"entry": []any{sampleContactEntry()},
		},
	}
}

func groupsFeedFixture() map[string]any {
	return map[string]any{
		"feed": map[string]any{
			"entry": []any{
				map[string]any{
					"id":    map[string]any{"$t": "http://www.google.com/m8/feeds/groups/test@gmail.com/base/grp1"},
					"title": map[string]any{"$t": "Friends"},
				},
			},
		},
	}
}

func TestContactsService_List(t *testing.T) {
	t.Run("decodes the feed and sends GData headers", func(t *testing.T) {
		var gotPath, gotVersion, gotAuth string
		var gotQuery map[string][]string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotVersion = r.Header.Get("GData-Version")
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.Query()
			writeJSON(t, w, contactsFeedFixture())
		}))

		contacts, err := client.Contacts.List(context.Background(), nil)
		require.NoError(t, err)

		require.Len(t, contacts, 1)
		assert.Equal(t, "abc123", contacts[0].ID)
		assert.Equal(t, "/contacts", gotPath)
		assert.Equal(t, "3.0", gotVersion)
		assert.Equal(t, "Bearer test-token", gotAuth)
		assert.Equal(t, []string{"json"}, gotQuery["alt"])
		assert.Equal(t, []string{"1901-01-16T00:00:00"}, gotQuery["updated-min"])
		assert.Equal(t, []string{"100000"}, gotQuery["max-results"])
	})

	t.Run("a feed without entries is an empty account", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"feed": map[string]any{}})
		}))

		contacts, err := client.Contacts.List(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, contacts)
	})

	t.Run("options override the defaults", func(t *testing.T) {
		var gotQuery map[string][]string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			writeJSON(t, w, map[string]any{"feed": map[string]any{}})
		}))

		_, err := client.Contacts.List(context.Background(), &ListOptions{
			UpdatedMin: "2020-01-01T00:00:00",
			MaxResults: 25,
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"2020-01-01T00:00:00"}, gotQuery["updated-min"])
		assert.Equal(t, []string{"25"}, gotQuery["max-results"])
	})

	t.Run("transport failures surface immediately without retry", func(t *testing.T) {
		var calls int
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		_, err := client.Contacts.List(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestContactsService_ListByGroup(t *testing.T) {
	var contactsQuery map[string][]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/groups":
			writeJSON(t, w, groupsFeedFixture())
		case "/contacts":
			contactsQuery = r.URL.Query()
			writeJSON(t, w, contactsFeedFixture())
		default:
			http.NotFound(w, r)
		}
	}))

	contacts, err := client.Contacts.ListByGroup(context.Background(), "grp7")
	require.NoError(t, err)

	require.Len(t, contacts, 1)
	require.Len(t, contactsQuery["group"], 1)
	assert.Equal(t, "http://www.google.com/m8/feeds/groups/test@gmail.com/base/grp7", contactsQuery["group"][0])
}

func TestContactsService_Get(t *testing.T) {
	t.Run("decodes a single entry", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/contacts/abc123", r.URL.Path)
			writeJSON(t, w, map[string]any{"entry": sampleContactEntry()})
		}))

		contact, err := client.Contacts.Get(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "Smith Bob", contact.FullName)
	})

	t.Run("a response without an entry yields a zero contact", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{})
		}))

		contact, err := client.Contacts.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.Equal(t, Contact{}, contact)
	})
}

func TestContactsService_Update(t *testing.T) {
	existingEntry := `<entry xmlns:gd="` + schemaNS + `">` + "\n" +
		`<id>http://www.google.com/m8/feeds/contacts/test@gmail.com/base/abc123</id>` + "\n" +
		`<title>Old Name</title>` + "\n" +
		`<gd:name><gd:givenName>Old</gd:givenName><gd:familyName>Name</gd:familyName></gd:name>` + "\n" +
		`<gd:email rel="` + schemaNS + `#work" address="old@x.com" primary="false"/>` + "\n" +
		`</entry>`

	var putBody, ifMatch string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "3.0", r.Header.Get("GData-Version"))
			_, _ = io.WriteString(w, existingEntry)
		case http.MethodPut:
			ifMatch = r.Header.Get("If-Match")
			raw, _ := io.ReadAll(r.Body)
			putBody = string(raw)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	err := client.Contacts.Update(context.Background(), "abc123", ContactUpdate{
		Name:   &Name{GivenName: "Bob", FamilyName: "Smith"},
		Emails: []EmailUpdate{{Type: "home", Address: "new@x.com", Primary: true}},
	})
	require.NoError(t, err)

	assert.Equal(t, "*", ifMatch)
	assert.Contains(t, putBody, "new@x.com")
	assert.NotContains(t, putBody, "old@x.com")
	assert.Contains(t, putBody, "Smith Bob")
	// Untouched elements ride along verbatim.
	assert.Contains(t, putBody, "base/abc123")
}

func TestContactsService_Create(t *testing.T) {
	created := `<entry><id>http://www.google.com/m8/feeds/contacts/test@gmail.com/base/new456</id></entry>`

	var postBody string
	var putPath, putBody string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			raw, _ := io.ReadAll(r.Body)
			postBody = string(raw)
			_, _ = io.WriteString(w, created)
		case http.MethodPut:
			putPath = r.URL.Path
			raw, _ := io.ReadAll(r.Body)
			putBody = string(raw)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	id, err := client.Contacts.Create(context.Background(), ContactUpdate{
		Name:         &Name{GivenName: "Bob", FamilyName: "Smith"},
		PhoneticName: &Name{GivenName: "ボブ", FamilyName: "スミス"},
	})
	require.NoError(t, err)

	assert.Equal(t, "new456", id)
	assert.Contains(t, postBody, "Smith Bob")
	// The provider cannot set phonetic names at creation, so the same
	// document is put back against the assigned id.
	assert.Equal(t, "/contacts/new456", putPath)
	assert.Equal(t, postBody, putBody)
}

func TestContactsService_Delete(t *testing.T) {
	t.Run("sends If-Match and succeeds on 200", func(t *testing.T) {
		var ifMatch string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ifMatch = r.Header.Get("If-Match")
		}))

		require.NoError(t, client.Contacts.Delete(context.Background(), "abc123"))
		assert.Equal(t, "*", ifMatch)
	})

	t.Run("treats 404 as success", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))

		assert.NoError(t, client.Contacts.Delete(context.Background(), "abc123"))
	})

	t.Run("other statuses fail", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "conflict", http.StatusConflict)
		}))

		assert.Error(t, client.Contacts.Delete(context.Background(), "abc123"))
	})
}

func TestGroupsService_List(t *testing.T) {
	t.Run("decodes groups and caps max-results at 100", func(t *testing.T) {
		var gotQuery map[string][]string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			writeJSON(t, w, groupsFeedFixture())
		}))

		groups, err := client.Groups.List(context.Background())
		require.NoError(t, err)

		require.Len(t, groups, 1)
		assert.Equal(t, "grp1", groups[0].ID)
		assert.Equal(t, "Friends", groups[0].Title)
		assert.Equal(t, []string{"100"}, gotQuery["max-results"])
	})

	t.Run("a response without a feed is malformed", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{})
		}))
		client.Groups.attempts = 1

		_, err := client.Groups.List(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("retries transient failures up to the attempt budget", func(t *testing.T) {
		var calls int
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "boom", http.StatusInternalServerError)
		}))

		_, err := client.Groups.List(context.Background())

		require.Error(t, err)
		assert.Equal(t, DefaultRetryAttempts, calls)
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		var calls int
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			writeJSON(t, w, groupsFeedFixture())
		}))

		groups, err := client.Groups.List(context.Background())

		require.NoError(t, err)
		assert.Len(t, groups, 1)
		assert.Equal(t, 3, calls)
	})
}

func TestGroupsService_Create(t *testing.T) {
	var postBody string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/atom+xml", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		postBody = string(raw)
		_, _ = io.WriteString(w, `<entry><id>http://www.google.com/m8/feeds/groups/test@gmail.com/base/newgrp</id><title>Book club</title></entry>`)
	}))

	group, err := client.Groups.Create(context.Background(), "Book club")
	require.NoError(t, err)

	assert.Equal(t, "newgrp", group.ID)
	assert.Equal(t, "Book club", group.Title)
	assert.Contains(t, postBody, "Book club")
	assert.Contains(t, postBody, groupTerm)
}

func TestGroupsService_Rename(t *testing.T) {
	existing := `<entry><id>http://www.google.com/m8/feeds/groups/test@gmail.com/base/grp1</id><title>Old</title></entry>`

	var putBody string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, existing)
		case http.MethodPut:
			assert.Equal(t, "*", r.Header.Get("If-Match"))
			raw, _ := io.ReadAll(r.Body)
			putBody = string(raw)
		}
	}))

	require.NoError(t, client.Groups.Rename(context.Background(), "grp1", "New"))

	assert.Contains(t, putBody, "<title>New</title>")
	assert.Contains(t, putBody, "base/grp1")
}

func TestGroupsService_Delete(t *testing.T) {
	t.Run("treats 404 as success", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))

		assert.NoError(t, client.Groups.Delete(context.Background(), "grp1"))
	})
}

func TestGroupsService_URL(t *testing.T) {
	t.Run("rewrites the trailing base segment of an existing group", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, groupsFeedFixture())
		}))

		href, err := client.Groups.URL(context.Background(), "target")
		require.NoError(t, err)

		assert.Equal(t, "http://www.google.com/m8/feeds/groups/test@gmail.com/base/target", href)
	})

	t.Run("an account with zero groups cannot derive URLs", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"feed": map[string]any{}})
		}))

		_, err := client.Groups.URL(context.Background(), "target")
		assert.ErrorIs(t, err, ErrNoGroups)
	})
}

func TestIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))

	_, err := client.Contacts.List(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}
