// Package cache provides the two-tier result cache: a small in-process LRU
// in front of a durable blob store, with confidence-tiered expiry.
package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// keyVersion is bumped whenever the key layout or the cached value schema
// changes, so stale entries from older builds are never deserialized.
const keyVersion = "v1"

// Key derives a deterministic cache key from the analysis inputs. The source
// URL is normalized and image URLs are sorted, so reorderings and trivial URL
// variations of the same post map to the same entry.
func Key(sourceURL, platform, text string, imageURLs []string) string {
	sorted := make([]string, len(imageURLs))
	for i, u := range imageURLs {
		sorted[i] = normalizeURL(u)
	}
	sort.Strings(sorted)

	h := xxhash.New()
	h.WriteString(keyVersion)
	h.WriteString("\x00")
	h.WriteString(normalizeURL(sourceURL))
	h.WriteString("\x00")
	h.WriteString(strings.ToLower(strings.TrimSpace(platform)))
	h.WriteString("\x00")
	h.WriteString(strings.TrimSpace(text))
	for _, u := range sorted {
		h.WriteString("\x00")
		h.WriteString(u)
	}
	return fmt.Sprintf("place:%016x", h.Sum64())
}

// normalizeURL lowercases the scheme and host and strips fragments and a
// trailing slash, leaving query strings intact since they often carry media
// variant identifiers.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
