package fields

import "strings"

// PlaceholderImageURL is shown for items without a picture.
const PlaceholderImageURL = "https://placehold.co/400x400?text=No+Image"

// DefaultImageHost is the public bucket that relative image keys live in.
const DefaultImageHost = "pub-12069eb186dd414482e689701534d8d5.r2.dev"

// ResolveImageURL turns a stored image reference into something a browser can
// load. Absolute URLs and inline data: payloads are returned unchanged;
// anything else is treated as a key in the public bucket on host.
func ResolveImageURL(host, ref string) string {
	if ref == "" {
		return PlaceholderImageURL
	}
	if IsAbsoluteImage(ref) {
		return ref
	}
	return "https://" + host + "/" + strings.TrimPrefix(ref, "/")
}

// IsAbsoluteImage reports whether ref needs no host prefix.
func IsAbsoluteImage(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "data:")
}
