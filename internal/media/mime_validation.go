package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are inspected to detect the content type.
const sniffLen = 3072

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AllowedImageTypes lists the accepted content types in a stable order.
func AllowedImageTypes() []string {
	return []string{"image/png", "image/jpeg", "image/webp", "image/gif"}
}

// detectImage inspects the file header and returns the content type plus the
// extension used for the stored file.
func detectImage(head []byte) (string, string, error) {
	if len(head) == 0 {
		return "", "", fmt.Errorf("file is empty")
	}
	detected := mimetype.Detect(head)
	mediaType := strings.ToLower(detected.String())
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}
	ext, ok := allowedImageTypes[mediaType]
	if !ok {
		return "", "", fmt.Errorf("unsupported file type %s; allowed: %s", mediaType, strings.Join(AllowedImageTypes(), ", "))
	}
	return mediaType, ext, nil
}
