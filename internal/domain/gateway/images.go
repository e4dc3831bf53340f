package gateway

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// decodeImages decodes each entry of images, which may be a raw base64
// string or a "data:<mime>;base64,<payload>" data URI.
func decodeImages(images []string) ([][]byte, error) {
	out := make([][]byte, 0, len(images))
	for i, img := range images {
		payload := img
		if idx := strings.Index(img, ";base64,"); idx != -1 {
			payload = img[idx+len(";base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("image %d: invalid base64 data: %w", i, err)
		}
		out = append(out, data)
	}
	return out, nil
}
