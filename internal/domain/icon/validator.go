package icon

import (
	"mime"
	"strings"
)

// Validate applies the structural rules in order; the first failure wins.
func Validate(c Candidate) Validity {
	if !isPNG(c.MediaType) {
		return Reject(ReasonUnsupportedFormat)
	}
	if c.Width != c.Height {
		return Reject(ReasonNotSquare)
	}
	if c.Width < 1 || c.Width > MaxDimension {
		return Reject(ReasonSizeOutOfRange)
	}
	return Accept()
}

// Screen runs the load-time checks (read failure, empty payload, upload
// limit) before Validate. maxSize <= 0 disables the limit.
func Screen(c Candidate, maxSize int64) Validity {
	switch {
	case c.Err != nil:
		return Reject(ReasonUnreadable)
	case len(c.Payload) == 0:
		return Reject(ReasonEmptyPayload)
	case maxSize > 0 && int64(len(c.Payload)) > maxSize:
		return Reject(ReasonTooLarge)
	}
	return Validate(c)
}

func isPNG(mediaType string) bool {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return false
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	} else if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return strings.EqualFold(mediaType, MediaTypePNG)
}
