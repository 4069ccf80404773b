package ocr

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// MaxImagePixels bounds width*height before a full decode; larger headers are treated as corrupt.
const MaxImagePixels = 178956970

var (
	errEmptyImage    = errors.New("image has zero width or height")
	errImageTooLarge = errors.New("image exceeds pixel limit")
)

// VerifyImage decodes the whole file so truncated or corrupt images are rejected before OCR.
// Returns the detected format ("png" | "jpeg").
func VerifyImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return format, errEmptyImage
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > MaxImagePixels {
		return format, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, errImageTooLarge)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return format, fmt.Errorf("rewind image: %w", err)
	}
	if _, _, err := image.Decode(bufio.NewReader(f)); err != nil {
		return format, fmt.Errorf("decode %s image: %w", format, err)
	}
	return format, nil
}
