package resolve

import (
	"net/url"
	"strings"
)

// ClassifyURL maps an API URL to the envelope collection it addresses.
// Returns "" for URLs that address none of the three entity collections
// (source descriptions, users, unparseable input).
func ClassifyURL(rawURL string) Collection {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := parsed.Path

	switch {
	case strings.Contains(path, "/child-and-parents-relationships"):
		return CollectionChildAndParentsRelationships
	case strings.Contains(path, "/couple-relationships"), strings.Contains(path, "/relationships"):
		return CollectionRelationships
	case strings.Contains(path, "/persons"):
		return CollectionPersons
	}
	return ""
}
