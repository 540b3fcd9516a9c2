package domain

// ImagePayload is a validated base64 image. Data never carries a data-URL prefix.
type ImagePayload struct {
	MimeType string
	Data     string
}

// SanitizedInput is user input that has passed every sanitizer gate.
// Text is never empty.
type SanitizedInput struct {
	Text    string
	Image   *ImagePayload
	LinkURL string
}

// Caller identifies who submitted a question.
type Caller struct {
	UserID    string
	DeviceID  string
	Anonymous bool
}
