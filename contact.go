package gcontacts

// Contact is the flattened form of one provider contact entry. String
// fields are empty when the entry did not carry them. A Contact is built
// fresh on every decode and never mutated in place: updates go through a
// ContactUpdate applied against a freshly fetched document.
type Contact struct {
	// ID is the trailing path segment of the provider's opaque entry URL.
	ID string

	FullName          string
	FirstName         string
	LastName          string
	PhoneticFirstName string
	PhoneticLastName  string
	Nickname          string

	// PrimaryEmail points at the entry in Emails flagged primary, or is
	// nil when none is. With more than one flagged, the first by feed
	// order wins.
	PrimaryEmail *Field

	Emails        []Field
	PhoneNumbers  []Field
	Handles       []Field
	Addresses     []Field
	Organizations []Field
	Websites      []Field
	Events        []Field

	GroupIDs []string

	// Birthday is the entry's when attribute, e.g. "1990-05-21".
	Birthday string
}

// decodeContact builds a Contact from one provider feed entry. Missing
// optional sub-fields map to zero values, never an error.
func decodeContact(entry map[string]any) Contact {
	c := Contact{
		ID:            parseID(asString(pureScalar(entry["id"]))),
		Emails:        extractFields(asList(entry["gd$email"])),
		PhoneNumbers:  extractFields(asList(entry["gd$phoneNumber"])),
		Handles:       extractFields(asList(entry["gd$im"])),
		Addresses:     extractFields(asList(entry["gd$structuredPostalAddress"])),
		Organizations: extractFields(asList(entry["gd$organization"])),
		Websites:      extractFields(asList(entry["gContact$website"])),
		Events:        extractFields(asList(entry["gContact$event"])),
	}

	name := cleanseEntry(asObject(entry["gd$name"]))
	c.FullName = asString(name["full_name"])
	c.FirstName = asString(name["given_name"])
	c.LastName = asString(name["family_name"])
	c.PhoneticFirstName = asString(name["phonetic_given_name"])
	c.PhoneticLastName = asString(name["phonetic_family_name"])

	c.Nickname = asString(asObject(entry["gContact$nickname"])["$t"])
	c.Birthday = asString(asObject(entry["gContact$birthday"])["when"])

	for _, raw := range asList(entry["gContact$groupMembershipInfo"]) {
		if membership, ok := raw.(map[string]any); ok {
			c.GroupIDs = append(c.GroupIDs, parseID(asString(membership["href"])))
		}
	}

	for i := range c.Emails {
		if c.Emails[i].Primary {
			c.PrimaryEmail = &c.Emails[i]
			break
		}
	}
	return c
}

// decodeContactList maps decodeContact over a feed's entries. A nil or
// absent entry list is an account with zero contacts, not a fault.
func decodeContactList(entries []any) []Contact {
	contacts := make([]Contact, 0, len(entries))
	for _, raw := range entries {
		if entry, ok := raw.(map[string]any); ok {
			contacts = append(contacts, decodeContact(entry))
		}
	}
	return contacts
}
