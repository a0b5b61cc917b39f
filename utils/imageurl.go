package utils

import "strings"

const (
	// ResizeToken is the query parameter the image service uses for width
	ResizeToken = "nw="
	// HighResValue is requested in place of whatever width the page asked for
	HighResValue = "800"
)

// NormalizeImageURL truncates imageURL at the resize token and requests the
// high resolution rendition. URLs without the token are returned unchanged.
func NormalizeImageURL(imageURL string) string {
	idx := strings.Index(imageURL, ResizeToken)
	if idx < 0 {
		return imageURL
	}
	return imageURL[:idx] + ResizeToken + HighResValue
}

// ImageExtension picks the file extension for imageURL: .webp, then .png, else .jpg
func ImageExtension(imageURL string) string {
	lower := strings.ToLower(imageURL)
	switch {
	case strings.Contains(lower, ".webp"):
		return ".webp"
	case strings.Contains(lower, ".png"):
		return ".png"
	default:
		return ".jpg"
	}
}
