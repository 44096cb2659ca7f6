package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	name        string
	contentType string
	data        []byte
}

func parseForm(t *testing.T, field string, parts ...part) *multipart.Form {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, p.name))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func pngWith(tail byte) []byte {
	return append(append([]byte(nil), pngHeader...), tail)
}

func TestReadImages_ReturnsFilesInOrder(t *testing.T) {
	form := parseForm(t, "images",
		part{"a.png", "image/png", pngWith('a')},
		part{"b.png", "image/png", pngWith('b')},
	)

	images, err := ReadImages(form, "images")
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, byte('a'), images[0][len(images[0])-1])
	assert.Equal(t, byte('b'), images[1][len(images[1])-1])
}

func TestReadImages_Rejections(t *testing.T) {
	tooMany := make([]part, MaxImages+1)
	for i := range tooMany {
		tooMany[i] = part{fmt.Sprintf("%d.png", i), "image/png", pngHeader}
	}

	tests := []struct {
		name    string
		parts   []part
		kind    error
		message string
	}{
		{"too many files", tooMany, apperr.ErrLimitExceeded, "Too many files. Maximum is 10 images"},
		{"wrong content type", []part{{"notes.txt", "text/plain", []byte("hello")}}, apperr.ErrValidation, "Only image files are allowed!"},
		{"oversized file", []part{{"big.png", "image/png", make([]byte, MaxImageBytes+1)}}, apperr.ErrValidation, "File big.png exceeds the 7MB limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := ReadImages(parseForm(t, "images", tt.parts...), "images")
			assert.Nil(t, images)
			require.ErrorIs(t, err, tt.kind)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestReadImages_NoForm(t *testing.T) {
	images, err := ReadImages(nil, "images")
	require.NoError(t, err)
	assert.Empty(t, images)
}
