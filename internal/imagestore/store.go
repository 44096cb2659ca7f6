// Package imagestore uploads and deletes listing and avatar images.
package imagestore

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

const (
	FolderProperties = "real-estate/properties"
	FolderAvatars    = "real-estate/avatars"
)

var ErrNotImage = errors.New("content is not an image")

// Asset identifies an uploaded object. ID is what Delete takes.
type Asset struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Store interface {
	Upload(ctx context.Context, data []byte, folder string) (Asset, error)
	Delete(ctx context.Context, id string) error
}

// Transform is the resize policy the CDN applies when serving an asset.
type Transform struct {
	MaxWidth  int
	MaxHeight int
	Quality   string
	Format    string
}

// DefaultTransform is applied to every upload; callers cannot override it.
var DefaultTransform = Transform{
	MaxWidth:  1920,
	MaxHeight: 1080,
	Quality:   "auto:good",
	Format:    "auto",
}

// Metadata renders the policy as object metadata.
func (t Transform) Metadata() map[string]string {
	return map[string]string{
		"transform-crop":    "limit",
		"transform-width":   strconv.Itoa(t.MaxWidth),
		"transform-height":  strconv.Itoa(t.MaxHeight),
		"transform-quality": t.Quality,
		"transform-format":  t.Format,
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// sniff returns the detected content type and a file extension for data.
func sniff(data []byte) (string, string, error) {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return contentType, "", ErrNotImage
	}
	return contentType, imageExtensions[contentType], nil
}
