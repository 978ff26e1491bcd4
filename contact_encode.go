package gcontacts

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	schemaNS     = "http://schemas.google.com/g/2005"
	atomNS       = "http://www.w3.org/2005/Atom"
	contactTerm  = "http://schemas.google.com/contact/2008#contact"
	groupTerm    = "http://schemas.google.com/contact/2008#group"
)

// Recognised rel types. Anything else is written as a free-text label.
var (
	emailRelTypes = map[string]bool{
		"work": true, "home": true, "other": true,
	}
	phoneRelTypes = map[string]bool{
		"work": true, "home": true, "other": true, "mobile": true,
		"main": true, "home_fax": true, "work_fax": true, "pager": true,
	}
)

// Name holds the structured name sub-fields of an update.
type Name struct {
	GivenName  string
	FamilyName string
}

// EmailUpdate replaces one email element.
type EmailUpdate struct {
	Type    string
	Address string
	Primary bool
}

// PhoneUpdate replaces one phone number element.
type PhoneUpdate struct {
	Type    string
	Value   string
	Primary bool
}

// PostalAddress holds the sub-fields of a structured postal address.
// Missing sub-fields render as empty elements, not omitted ones.
type PostalAddress struct {
	Street   string
	City     string
	Region   string
	Postcode string
	Country  string
}

// AddressUpdate replaces one structured postal address element.
type AddressUpdate struct {
	Type    string
	Address PostalAddress
	Primary bool
}

// ContactUpdate is a partial update instruction set. Unset categories are
// left untouched. Each set category fully replaces the previous elements
// of that category in the target document, except group membership which
// is additive and subtractive by id.
type ContactUpdate struct {
	Name           *Name
	PhoneticName   *Name
	Emails         []EmailUpdate
	PhoneNumbers   []PhoneUpdate
	Addresses      []AddressUpdate
	Birthday       string
	AddGroupIDs    []string
	RemoveGroupIDs []string
}

// groupURLFunc resolves a group id to its full feed URL. Membership edits
// need it to write href attributes.
type groupURLFunc func(groupID string) (string, error)

// applyContactUpdate mutates an entry document in place per the update
// instruction set. Categories apply in a fixed order: name, phonetic name,
// emails, phone numbers, addresses, birthday, group additions, group
// removals.
func applyContactUpdate(doc *etree.Document, update ContactUpdate, groupURL groupURLFunc) error {
	root := doc.Root()
	if root == nil {
		return ErrMalformedResponse
	}

	if update.Name != nil {
		applyName(root, *update.Name)
	}
	if update.PhoneticName != nil {
		if err := applyPhoneticName(root, *update.PhoneticName); err != nil {
			return err
		}
	}
	if update.Emails != nil {
		applyEmails(root, update.Emails)
	}
	if update.PhoneNumbers != nil {
		applyPhoneNumbers(root, update.PhoneNumbers)
	}
	if update.Addresses != nil {
		applyAddresses(root, update.Addresses)
	}
	if update.Birthday != "" {
		applyBirthday(root, update.Birthday)
	}
	if len(update.AddGroupIDs) > 0 {
		if err := addGroupMemberships(doc, update.AddGroupIDs, groupURL); err != nil {
			return err
		}
	}
	if len(update.RemoveGroupIDs) > 0 {
		if err := removeGroupMemberships(doc, update.RemoveGroupIDs); err != nil {
			return err
		}
	}
	return nil
}

// applyName sets the name sub-elements and recomputes title and fullName
// as "<familyName> <givenName>", replacing elements that exist and
// inserting missing ones near the top of the entry.
func applyName(root *etree.Element, name Name) {
	if name.GivenName != "" {
		setNameElement(root, "givenName", name.GivenName)
	}
	if name.FamilyName != "" {
		setNameElement(root, "familyName", name.FamilyName)
	}

	full := name.FamilyName + " " + name.GivenName
	if el := findByTag(root, "title"); el != nil {
		el.SetText(full)
	} else {
		el := newElement("", "title")
		el.SetText(full)
		insertNearTop(root, el)
	}
	if el := findByTag(root, "fullName"); el != nil {
		el.SetText(full)
	} else {
		el := newElement("gd", "fullName")
		el.SetText(full)
		insertNearTop(root, el)
	}
}

// setNameElement replaces the text of an existing name element, or inserts
// a fresh one with an empty yomi attribute the way the provider's template
// carries them.
func setNameElement(root *etree.Element, tag, value string) {
	if el := findByTag(root, tag); el != nil {
		el.SetText(value)
		return
	}
	el := newElement("gd", tag)
	el.CreateAttr("yomi", "")
	el.SetText(value)
	insertNearTop(root, el)
}

// applyPhoneticName writes yomi attributes onto the existing name
// elements. A missing target element fails with ErrMissingElement rather
// than silently dropping the phonetic name.
func applyPhoneticName(root *etree.Element, name Name) error {
	set := func(tag, value string) error {
		if value == "" {
			return nil
		}
		el := findByTag(root, tag)
		if el == nil {
			return ErrMissingElement
		}
		el.CreateAttr("yomi", value)
		return nil
	}
	if err := set("givenName", name.GivenName); err != nil {
		return err
	}
	return set("familyName", name.FamilyName)
}

func applyEmails(root *etree.Element, emails []EmailUpdate) {
	removeByTag(root, "email")
	for _, email := range emails {
		el := newElement("gd", "email")
		if emailRelTypes[email.Type] {
			el.CreateAttr("rel", schemaNS+"#"+email.Type)
		} else {
			el.CreateAttr("label", email.Type)
		}
		el.CreateAttr("address", email.Address)
		el.CreateAttr("primary", strconv.FormatBool(email.Primary))
		root.AddChild(el)
	}
}

func applyPhoneNumbers(root *etree.Element, phones []PhoneUpdate) {
	removeByTag(root, "phoneNumber")
	for _, phone := range phones {
		el := newElement("gd", "phoneNumber")
		if phoneRelTypes[phone.Type] {
			el.CreateAttr("rel", schemaNS+"#"+phone.Type)
		} else {
			el.CreateAttr("label", phone.Type)
		}
		el.CreateAttr("primary", strconv.FormatBool(phone.Primary))
		el.SetText(phone.Value)
		root.AddChild(el)
	}
}

func applyAddresses(root *etree.Element, addresses []AddressUpdate) {
	removeByTag(root, "structuredPostalAddress")
	for _, address := range addresses {
		el := newElement("gd", "structuredPostalAddress")
		el.CreateAttr("rel", schemaNS+"#"+address.Type)
		el.CreateAttr("primary", strconv.FormatBool(address.Primary))
		for _, sub := range []struct{ tag, value string }{
			{"street", address.Address.Street},
			{"city", address.Address.City},
			{"region", address.Address.Region},
			{"postcode", address.Address.Postcode},
			{"country", address.Address.Country},
		} {
			child := newElement("gd", sub.tag)
			child.SetText(sub.value)
			el.AddChild(child)
		}
		root.AddChild(el)
	}
}

func applyBirthday(root *etree.Element, when string) {
	removeByTag(root, "birthday")
	el := newElement("gContact", "birthday")
	el.CreateAttr("when", when)
	root.AddChild(el)
}

// addGroupMemberships appends a membership element per id not already
// present in the document. Presence is a raw substring search over the
// serialised document, so an id string occurring anywhere else counts as
// present. The check is an approximation carried over deliberately; see
// DESIGN.md.
func addGroupMemberships(doc *etree.Document, groupIDs []string, groupURL groupURLFunc) error {
	for _, groupID := range groupIDs {
		serialized, err := doc.WriteToString()
		if err != nil {
			return err
		}
		if strings.Contains(serialized, groupID) {
			continue
		}
		href, err := groupURL(groupID)
		if err != nil {
			return err
		}
		el := newElement("gContact", "groupMembershipInfo")
		el.CreateAttr("deleted", "false")
		el.CreateAttr("href", href)
		doc.Root().AddChild(el)
	}
	return nil
}

// removeGroupMemberships removes membership elements whose href contains
// the given id, using the same substring presence check as additions.
func removeGroupMemberships(doc *etree.Document, groupIDs []string) error {
	root := doc.Root()
	for _, groupID := range groupIDs {
		serialized, err := doc.WriteToString()
		if err != nil {
			return err
		}
		if !strings.Contains(serialized, groupID) {
			continue
		}
		for _, el := range collectByTag(root, "groupMembershipInfo") {
			if strings.Contains(el.SelectAttrValue("href", ""), groupID) {
				el.Parent().RemoveChild(el)
			}
		}
	}
	return nil
}

// contactEntryTemplate mirrors the provider's minimal contact entry. New
// contacts start from it; the encoder fills the name elements in.
const contactEntryTemplate = `<atom:entry xmlns:gd="` + schemaNS + `" xmlns:atom="` + atomNS + `">` +
	`<atom:category scheme="` + schemaNS + `#kind" term="` + contactTerm + `"/>` +
	`<title></title>` +
	`<gd:name>` +
	`<gd:fullName></gd:fullName>` +
	`<gd:givenName yomi=""></gd:givenName>` +
	`<gd:familyName yomi=""></gd:familyName>` +
	`</gd:name>` +
	`</atom:entry>`

// newContactDocument parses the entry template into a fresh document.
func newContactDocument() (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(contactEntryTemplate); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseEntryDocument parses a fetched entry body. The provider returns
// URL-escaped bodies with embedded newlines; both are stripped before
// parsing.
func parseEntryDocument(body string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(normalizeXMLBody(body)); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, ErrMalformedResponse
	}
	return doc, nil
}

// newElement builds a namespaced element without attaching it to a parent.
func newElement(space, tag string) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = space
	return el
}

// insertNearTop inserts an element as the next sibling of the root's first
// child. Successive inserts therefore stack in reverse order under the
// top of the entry, matching the provider's accepted layout.
func insertNearTop(root *etree.Element, el *etree.Element) {
	root.InsertChildAt(1, el)
}

// findByTag returns the first descendant element with the given local tag,
// ignoring namespace prefixes.
func findByTag(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := findByTag(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// collectByTag returns every descendant element with the given local tag.
func collectByTag(el *etree.Element, tag string) []*etree.Element {
	var found []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			found = append(found, child)
		}
		found = append(found, collectByTag(child, tag)...)
	}
	return found
}

// removeByTag detaches every descendant element with the given local tag.
func removeByTag(el *etree.Element, tag string) {
	for _, found := range collectByTag(el, tag) {
		found.Parent().RemoveChild(found)
	}
}
