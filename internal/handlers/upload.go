package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
)

const (
	MaxImageBytes = 7 * 1024 * 1024
	MaxImages     = 10
)

// ReadImage loads one uploaded file, enforcing the size limit and an image/*
// content type.
func ReadImage(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > MaxImageBytes {
		return nil, apperr.Validation(fmt.Sprintf("File %s exceeds the 7MB limit", fh.Filename))
	}
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, apperr.Validation("Only image files are allowed!")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Validation("Failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, apperr.Validation("Failed to read uploaded file")
	}
	if len(data) > MaxImageBytes {
		return nil, apperr.Validation(fmt.Sprintf("File %s exceeds the 7MB limit", fh.Filename))
	}
	return data, nil
}

// ReadImages loads every file under field. More than MaxImages files is a
// limit error and nothing is read.
func ReadImages(form *multipart.Form, field string) ([][]byte, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[field]
	if len(files) > MaxImages {
		return nil, apperr.Limit(fmt.Sprintf("Too many files. Maximum is %d images", MaxImages))
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := ReadImage(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	return images, nil
}
