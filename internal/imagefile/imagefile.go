// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package imagefile loads user-selected image files for upload and preview.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Decoders for the accepted formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxFileSize caps a single upload. Inline image data in a Gemini request
// is limited to 20MB for the whole request.
const MaxFileSize = 20 * 1024 * 1024

// MaxThumbnailPixels bounds the decoded area Thumbnail accepts. A small,
// highly compressed file can still declare huge dimensions.
var MaxThumbnailPixels = 40_000_000

// Extensions lists the file types offered by the picker.
var Extensions = []string{".png", ".jpg", ".jpeg", ".webp"}

var extMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// Errors returned by Load.
var (
	ErrUnsupported = errors.New("unsupported image type")
	ErrTooLarge    = errors.New("image file too large")
)

// Image is a loaded image file: raw bytes for upload plus what the UI
// needs to describe it.
type Image struct {
	Path   string
	MIME   string
	Data   []byte
	Width  int
	Height int
}

// Name returns the base file name.
func (i Image) Name() string {
	return filepath.Base(i.Path)
}

// IsSupported reports whether path has one of the accepted extensions.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads an image file, detects its MIME type and decodes its size.
// Files that do not decode as an image are rejected.
func Load(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("load %s: %w", path, err)
	}
	if info.IsDir() {
		return Image{}, fmt.Errorf("load %s: %w: is a directory", path, ErrUnsupported)
	}
	if info.Size() > MaxFileSize {
		return Image{}, fmt.Errorf("load %s: %w (%d bytes)", path, ErrTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("load %s: %w", path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("load %s: %w: %v", path, ErrUnsupported, err)
	}

	return Image{
		Path:   path,
		MIME:   detectMIME(path, format, data),
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// LoadAll loads every path, skipping the ones that fail. The failures are
// returned alongside so the caller can report them.
func LoadAll(paths []string) ([]Image, []error) {
	var (
		images []Image
		errs   []error
	)
	for _, p := range paths {
		img, err := Load(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		images = append(images, img)
	}
	return images, errs
}

// detectMIME prefers content sniffing, then the decoder's format name,
// then the extension.
func detectMIME(path, format string, data []byte) string {
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if format != "" {
		return "image/" + format
	}
	if m, ok := extMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "application/octet-stream"
}

// Thumbnail decodes img and scales it to fit within maxW x maxH pixels,
// keeping the aspect ratio. Images already inside the bounds are returned
// at their own size. Images larger than MaxThumbnailPixels are refused with
// ErrTooLarge before any pixel data is decoded.
func Thumbnail(img Image, maxW, maxH int) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w", img.Name(), err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(MaxThumbnailPixels) {
		return nil, fmt.Errorf("thumbnail %s: %w (%dx%d pixels)", img.Name(), ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w", img.Name(), err)
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxW, maxH)
	if w == src.Bounds().Dx() && h == src.Bounds().Dy() {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

// fitWithin scales w x h down to fit maxW x maxH. Never upscales and never
// returns a zero dimension.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}
	// Compare w/maxW against h/maxH without floats.
	if w*maxH >= h*maxW {
		nh := h * maxW / w
		if nh < 1 {
			nh = 1
		}
		return maxW, nh
	}
	nw := w * maxH / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxH
}
