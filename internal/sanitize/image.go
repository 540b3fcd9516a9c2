package sanitize

import (
	"regexp"
	"strings"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

const defaultImageMime = "image/jpeg"

var (
	dataURLPrefix  = regexp.MustCompile(`^data:([^;,]*);base64,`)
	base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
	imageMime      = regexp.MustCompile(`^image/(jpeg|png|gif|webp)$`)
)

// Image validates a base64 image, optionally wrapped in a data URL.
// This is a size and alphabet gate only; pixel content is never decoded.
func Image(raw string, maxBytes int) (*domain.ImagePayload, error) {
	mime := defaultImageMime
	data := strings.TrimSpace(raw)

	if m := dataURLPrefix.FindStringSubmatch(data); m != nil {
		if m[1] != "" {
			mime = strings.ToLower(m[1])
		}
		if !imageMime.MatchString(mime) {
			return nil, domain.NewValidationError("image", "unsupported type "+mime)
		}
		data = data[len(m[0]):]
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(data)*3/4 > maxBytes {
		return nil, domain.NewValidationError("image", "too large")
	}
	if !base64Alphabet.MatchString(data) {
		return nil, domain.NewValidationError("image", "invalid base64 data")
	}

	return &domain.ImagePayload{MimeType: mime, Data: data}, nil
}
