// Package gcontacts is a client for the Google Contacts GData API
// (the m8 feeds endpoints).
//
// The package translates between the provider's verbose JSON/XML entity
// format and a flat contact/group model:
//   - Reads request JSON (alt=json) and decode feed entries into Contact
//     and Group values.
//   - Writes synthesise Atom XML request bodies from partial update
//     instructions, merging them into a template or a freshly fetched
//     entry document without touching unrelated fields.
//
// # Usage
//
// Construct a Client from anything that can supply a bearer token:
//
//	ts := cfg.TokenSource(ctx, token) // *oauth2.Config
//	client := gcontacts.NewClient(gcontacts.NewTokenSourceProvider(ts))
//
//	contacts, err := client.Contacts.List(ctx, nil)
//	groups, err := client.Groups.List(ctx)
//
// Updates are partial: only the categories set on a ContactUpdate are
// written, and each category fully replaces its previous elements except
// group membership, which is additive and subtractive by id.
//
// # OAuth2 scope
//
// The m8 feeds require the https://www.google.com/m8/feeds scope. Token
// acquisition and refresh are the caller's concern; the client only asks a
// TokenProvider for the current access token.
package gcontacts
