package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"
)

type capturePut struct {
	key         string
	contentType string
	data        []byte
}

func (c *capturePut) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	c.key = key
	c.contentType = contentType
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.data = data
	return nil
}

func (c *capturePut) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "http://example/" + key, nil
}

func (c *capturePut) Delete(ctx context.Context, key string) error { return nil }

func TestDecodeDataURL(t *testing.T) {
	contentType, data, err := DecodeDataURL("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("decode data url: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if !bytes.Equal(data, []byte("hello")) {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestDecodeDataURLBarePayloadDefaultsToPNG(t *testing.T) {
	contentType, data, err := DecodeDataURL("aGVsbG8=")
	if err != nil {
		t.Fatalf("decode bare payload: %v", err)
	}
	if contentType != "image/png" || string(data) != "hello" {
		t.Fatalf("unexpected result %q %q", contentType, data)
	}
}

func TestDecodeDataURLRejectsMalformed(t *testing.T) {
	if _, _, err := DecodeDataURL("data:image/png,not-base64"); err == nil {
		t.Fatalf("expected error for missing base64 marker")
	}
	if _, _, err := DecodeDataURL("data:image/png;base64,@@@"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}

func TestSaveDataURLUploadsDecodedBytes(t *testing.T) {
	var store capturePut
	key := ArtifactKey("alice@example.com", "abc123")
	if err := SaveDataURL(context.Background(), &store, key, "data:image/jpeg;base64,aGVsbG8="); err != nil {
		t.Fatalf("save data url: %v", err)
	}
	if store.key != "creations/alice@example.com/abc123.png" {
		t.Fatalf("unexpected key %q", store.key)
	}
	if store.contentType != "image/jpeg" {
		t.Fatalf("unexpected content type %q", store.contentType)
	}
	if string(store.data) != "hello" {
		t.Fatalf("unexpected payload %q", store.data)
	}
}
