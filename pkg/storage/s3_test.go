package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageContentType(t *testing.T) {
	tests := []struct {
		name, contentType, filename string
		wantCT, wantExt             string
		ok                          bool
	}{
		{"declared png", "image/png", "x.bin", "image/png", ".png", true},
		{"jpg alias", "image/jpg", "", "image/jpeg", ".jpg", true},
		{"params stripped", "image/webp; charset=binary", "", "image/webp", ".webp", true},
		{"extension fallback", "application/octet-stream", "Photo.JPEG", "image/jpeg", ".jpg", true},
		{"gif by extension", "", "a.gif", "image/gif", ".gif", true},
		{"pdf rejected", "application/pdf", "doc.pdf", "", "", false},
		{"video rejected", "video/mp4", "clip.mp4", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, ext, ok := ImageContentType(tt.contentType, tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantCT, ct)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestUploadKey(t *testing.T) {
	a, b := UploadKey(".png"), UploadKey(".png")
	assert.True(t, strings.HasPrefix(a, "uploads/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestPublicObjectURL(t *testing.T) {
	cfg := S3Config{Region: "us-east-1", Bucket: "shareshine"}
	assert.Equal(t, "https://shareshine.s3.us-east-1.amazonaws.com/uploads/a.png", PublicObjectURL(cfg, "uploads/a.png"))

	cfg.PublicBaseURL = "https://cdn.example.org/"
	assert.Equal(t, "https://cdn.example.org/uploads/a.png", PublicObjectURL(cfg, "uploads/a.png"))
}

func TestS3ConfigConfigured(t *testing.T) {
	assert.False(t, S3Config{Region: "us-east-1"}.Configured())
	assert.True(t, S3Config{Region: "us-east-1", Bucket: "b"}.Configured())
}
