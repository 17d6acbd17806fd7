package services

import (
	"net/url"
	"regexp"
	"strings"
)

// Cloudinary delivery URLs look like
// https://res.cloudinary.com/<cloud>/image/upload/v1690000000/folder/name.jpg
// where the public ID is "folder/name": everything after the upload marker,
// minus the optional version segment and the file extension.
const uploadMarker = "/upload/"

var (
	versionSegment = regexp.MustCompile(`^v\d+/`)
	fileExtension  = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)
)

// PublicIDFromURL derives the Cloudinary public ID from a delivery URL
// without calling the remote service. The second return value is false when
// the input cannot be parsed or nothing usable remains after stripping;
// "unresolvable" is distinct from an error and never panics.
func PublicIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}

	var id string
	if idx := strings.Index(path, uploadMarker); idx >= 0 {
		id = path[idx+len(uploadMarker):]
		id = versionSegment.ReplaceAllString(id, "")
	} else {
		// No upload marker: treat the whole path as the identifier.
		id = path
	}
	id = fileExtension.ReplaceAllString(id, "")
	id = strings.TrimLeft(id, "/")
	if id == "" {
		return "", false
	}
	return id, true
}

// ResolvePublicID maps url back to a public ID, preferring any persisted
// knownIDs entry embedded verbatim in the URL and falling back to path
// parsing. The substring match is a heuristic: IDs that collide as substrings
// can mismatch, which is accepted.
func ResolvePublicID(knownIDs []string, rawURL string) (string, bool) {
	for _, id := range knownIDs {
		if id != "" && strings.Contains(rawURL, id) {
			return id, true
		}
	}
	return PublicIDFromURL(rawURL)
}

// NormalizePublicID accepts either a bare public ID or a full delivery URL
// and returns the bare ID, stripping extension and leading slashes.
func NormalizePublicID(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http") {
		if id, ok := PublicIDFromURL(s); ok {
			return id
		}
	}
	s = fileExtension.ReplaceAllString(s, "")
	return strings.TrimLeft(s, "/")
}
