// Package imaging validates uploaded images and re-encodes them for storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxUploadBytes = 5 << 20
	MaxDimension   = 1200
	JPEGQuality    = 80
)

var (
	ErrEmpty           = errors.New("file is empty")
	ErrTooLarge        = fmt.Errorf("file exceeds %d MB", MaxUploadBytes>>20)
	ErrExtension       = errors.New("file extension not allowed")
	ErrContentMismatch = errors.New("file content does not match an allowed image type")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Validate checks size, extension whitelist and sniffed content type.
// It returns the detected MIME type.
func Validate(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrExtension, ext)
	}

	detected := mimetype.Detect(data)
	if !allowedMIME[detected.String()] {
		return "", fmt.Errorf("%w (detected %s)", ErrContentMismatch, detected.String())
	}
	return detected.String(), nil
}

// Result is an encoded image ready to store.
type Result struct {
	Data   []byte
	Width  int
	Height int
	Mime   string
	Ext    string
}

// Compress downsizes the image to fit maxDimension on its longest side and
// encodes it as JPEG.
func Compress(data []byte, maxDimension, quality int) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &Result{
		Data:   buf.Bytes(),
		Width:  width,
		Height: height,
		Mime:   "image/jpeg",
		Ext:    ".jpg",
	}, nil
}

// fitWithin scales (w, h) down so neither exceeds limit, keeping the aspect ratio.
func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// SanitizeFilename keeps ASCII letters, digits, '-' and '_' of the base name.
func SanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ReplaceAll(base, " ", "_")

	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
