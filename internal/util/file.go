package util

import (
	"net/http"
)

// decodableImages are the sniffed types the image pipeline can decode.
var decodableImages = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// SniffImage reports the content type of data and whether it is an image
// format the server can re-encode.
func SniffImage(data []byte) (string, bool) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)
	return mimeType, decodableImages[mimeType]
}
