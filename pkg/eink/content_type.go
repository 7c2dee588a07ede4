package eink

import (
	"mime"
	"net/http"
	"strings"
)

// resolveImageContentType picks the media type sent with image bytes. A
// wildcard default gives way to the file's own type, or to the sniffed type
// when the file has none.
func resolveImageContentType(transportDefault, fileType string, data []byte) string {
	if !isWildcard(transportDefault) {
		return transportDefault
	}

	if fileType != "" && !isWildcard(fileType) {
		return fileType
	}

	if len(data) > 0 {
		sniffed := http.DetectContentType(data)

		mediaType, _, err := mime.ParseMediaType(sniffed)
		if err == nil && strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}

	return transportDefault
}

func isWildcard(contentType string) bool {
	return contentType == "" || strings.HasSuffix(contentType, "/*") || contentType == "*/*"
}
