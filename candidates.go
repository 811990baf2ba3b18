package pics2pdf

import "strings"

// imageCandidate tracks one image source through the pipeline.
// ordinal is the element's position in the rendered DOM; final page
// order is ordinal order, never fetch completion order.
type imageCandidate struct {
	sourceRef string
	ordinal   int

	// set by fetch/normalize
	path   string
	width  int
	height int
}

// eligibleSuffixes lists the source formats included in the output.
// Matching is case-sensitive: an uppercase extension is skipped.
var eligibleSuffixes = []string{".jpg", ".jpeg", ".webp"}

// eligible reports whether src passes the inclusion filter: not an
// inline data: URI and carrying a supported raster extension.
func eligible(src string) bool {
	if strings.HasPrefix(src, "data:") {
		return false
	}
	for _, suffix := range eligibleSuffixes {
		if strings.HasSuffix(src, suffix) {
			return true
		}
	}
	return false
}

// isWebP reports whether the source needs JPEG transcoding.
func isWebP(src string) bool {
	return strings.HasSuffix(src, ".webp")
}

// truncateRef shortens long source references (notably data: URIs) for
// log output.
func truncateRef(src string) string {
	const maxLen = 120
	if len(src) <= maxLen {
		return src
	}
	return src[:maxLen] + "..."
}
