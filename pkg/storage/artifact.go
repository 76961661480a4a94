package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURL splits a base64 data URL into its content type and raw bytes.
// A bare base64 payload is treated as image/png.
func DecodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	contentType = "image/png"
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		rest := strings.TrimPrefix(dataURL, "data:")
		idx := strings.Index(rest, ";base64,")
		if idx < 0 {
			return "", nil, fmt.Errorf("malformed data url")
		}
		if mt := rest[:idx]; mt != "" {
			contentType = mt
		}
		payload = rest[idx+len(";base64,"):]
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode image payload: %w", err)
	}
	return contentType, data, nil
}

// SaveDataURL decodes a base64 image payload and uploads it under key.
func SaveDataURL(ctx context.Context, store ObjectStore, key, dataURL string) error {
	contentType, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

// ArtifactKey builds the object key for a creation image.
func ArtifactKey(email, creationID string) string {
	return fmt.Sprintf("creations/%s/%s.png", email, creationID)
}
