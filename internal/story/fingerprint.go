package story

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// trackingParams are query parameters stripped during URL canonicalization so
// the same article shared through different campaigns dedupes to one record.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref":          {},
}

// CanonicalURL lowercases the scheme and host, strips tracking query
// parameters, and drops the fragment. Invalid URLs are returned trimmed but
// otherwise unchanged so a bad feed entry still fingerprints deterministically.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		if _, tracked := trackingParams[strings.ToLower(key)]; tracked {
			query.Del(key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rebuilt := url.Values{}
	for _, key := range keys {
		for _, value := range query[key] {
			rebuilt.Add(key, value)
		}
	}
	parsed.RawQuery = rebuilt.Encode()
	return parsed.String()
}

// NormalizeText collapses runs of whitespace and trims the result.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint derives the content identifier used for deduplication. It hashes
// the canonicalized URL and normalized title rather than any source-reported
// ID so the same story surfaced by two sources collides.
func Fingerprint(rawURL, title string) string {
	parts := make([]string, 0, 2)
	if canonical := strings.ToLower(CanonicalURL(rawURL)); canonical != "" {
		parts = append(parts, canonical)
	}
	if normalized := strings.ToLower(NormalizeText(title)); normalized != "" {
		parts = append(parts, normalized)
	}
	joined := strings.Join(parts, "\x01")
	return strconv.FormatUint(xxhash.Sum64String(joined), 16)
}
