package gcontacts

import "strings"

// The provider emits heterogeneous JSON: scalars, {"$t": v} text wrappers,
// {"$t": v, "yomi": v} phonetic wrappers, nested objects and arrays. The
// helpers in this file normalise those shapes into flat maps and Field
// values. Each branch below covers one observed shape; there is no
// catch-all.

// Field is one entry of a multi-valued contact attribute (email, phone
// number, address, organisation, website, event or IM handle). Type is
// derived from the provider's label or rel URI. Value is the flattened
// scalar when the source carried only a text or href member, and a map for
// structured records such as postal addresses.
type Field struct {
	Type    string
	Value   any
	Primary bool
}

// Text returns the field value when it was flattened to a plain string.
func (f Field) Text() string {
	s, _ := f.Value.(string)
	return s
}

// cleanseEntry normalises one provider object. Keys lose their namespace
// prefix (gd$, gContact$) and become snake_case. A {"$t": v} wrapper
// collapses to v, and a yomi attribute emits a sibling phonetic_<key>.
// Nested objects without either marker are kept as-is for the caller to
// recurse into. Empty or nil input yields an empty map.
func cleanseEntry(entry map[string]any) map[string]any {
	cleansed := make(map[string]any, len(entry))
	for key, value := range entry {
		key = snakeCase(stripNamespace(key))
		wrapper, ok := value.(map[string]any)
		if !ok {
			cleansed[key] = value
			continue
		}
		if text, hasText := wrapper["$t"]; hasText {
			cleansed[key] = text
		} else {
			cleansed[key] = wrapper
		}
		if yomi, hasYomi := wrapper["yomi"]; hasYomi {
			cleansed["phonetic_"+key] = yomi
		}
	}
	return cleansed
}

// extractFields turns a list of rel/label-keyed provider records into a
// uniform Field slice. Nil or empty input yields an empty slice.
func extractFields(records []any) []Field {
	fields := make([]Field, 0, len(records))
	for _, raw := range records {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		field := Field{Type: fieldType(record)}

		working := make(map[string]any, len(record))
		for k, v := range record {
			if k != "rel" {
				working[k] = v
			}
		}
		value := cleanseEntry(working)

		if value["primary"] == "true" {
			value["primary"] = true
			field.Primary = true
		}
		if protocol, ok := value["protocol"].(string); ok && protocol != "" {
			value["protocol"] = lastSegment(protocol)
		}

		field.Value = flattenValue(value)
		fields = append(fields, field)
	}
	return fields
}

// flattenValue reduces a cleansed record to its $t member when present and
// non-empty, or to its href member when href is the only key left.
// Anything else stays a map.
func flattenValue(value map[string]any) any {
	if text, ok := value["$t"]; ok && text != nil && text != "" {
		return text
	}
	if len(value) == 1 {
		if href, ok := value["href"]; ok {
			return href
		}
	}
	return value
}

// fieldType derives the semantic type of a record: the last #-delimited
// segment of its label if present, else of its rel, else "unknown". The
// contact's custom label wins over the canonical relation.
func fieldType(record map[string]any) string {
	if label, ok := record["label"].(string); ok && label != "" {
		return lastSegment(label)
	}
	if rel, ok := record["rel"].(string); ok && rel != "" {
		return lastSegment(rel)
	}
	return "unknown"
}

// pureScalar descends through nested objects until it reaches a scalar.
// The provider wraps ids and timestamps as {"$t": "..."}; the $t member is
// preferred so the descent is deterministic.
func pureScalar(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if text, ok := m["$t"]; ok {
		return pureScalar(text)
	}
	for _, nested := range m {
		return pureScalar(nested)
	}
	return nil
}

// parseID returns the trailing path segment after "/base/" of an opaque
// entry URL, or "" when the marker is absent.
func parseID(entryURL string) string {
	const marker = "/base/"
	if i := strings.Index(entryURL, marker); i >= 0 {
		return entryURL[i+len(marker):]
	}
	return ""
}

// stripNamespace removes a leading namespace token such as "gd$" or
// "gContact$". A bare "$t" key has no prefix and is left alone.
func stripNamespace(key string) string {
	if i := strings.IndexByte(key, '$'); i > 0 {
		return key[i+1:]
	}
	return key
}

// snakeCase converts the provider's lowerCamelCase keys to snake_case.
func snakeCase(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 2)
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lastSegment returns the part after the final '#' of a namespace URI.
func lastSegment(uri string) string {
	if i := strings.LastIndexByte(uri, '#'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asObject(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}

func asList(value any) []any {
	l, _ := value.([]any)
	return l
}
