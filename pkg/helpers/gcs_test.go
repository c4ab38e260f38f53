package helpers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/avatars/1/x.png", PublicURL("b", "avatars/1/x.png"))
}

func TestGCSStorageNotConfigured(t *testing.T) {
	var g *GCSStorage
	_, err := g.Upload(context.Background(), "a", "image/png", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = NewGCSStorage(nil, "bucket").Upload(context.Background(), "a", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}
