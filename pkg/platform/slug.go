package platform

import "strings"

// Slug extracts the platform-native problem identifier from a problem URL:
// the path segment following "/problems/". When the URL has no such segment
// the original URL is returned unchanged, so the resolver never fails the
// pipeline; the degraded identifier simply won't match any solved slug.
func Slug(url string) string {
	const marker = "/problems/"

	idx := strings.Index(url, marker)
	if idx < 0 {
		return url
	}

	rest := url[idx+len(marker):]
	if rest == "" {
		return url
	}

	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return url
	}

	return rest
}
