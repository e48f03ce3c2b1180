package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	"image/png"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 1_000_000

	// Size is the edge length of the stored square avatar.
	Size = 250

	// ContentType is the media type of every stored avatar.
	ContentType = "image/png"

	// maxSourcePixels bounds the decoded size of an upload.
	maxSourcePixels = 40_000_000
)

var (
	// ErrNotImage is returned for anything that is not a JPEG or PNG image.
	ErrNotImage = domain.NewValidationError("", "Please upload an image.", domain.ErrValidation)

	// ErrTooLarge is returned for uploads over MaxUploadBytes.
	ErrTooLarge = domain.NewValidationError("", "File too large", domain.ErrValidation)
)

var allowedExtension = regexp.MustCompile(`\.(jpg|jpeg|png)$`)

var allowedTypes = []string{"image/jpeg", "image/png"}

// Normalize validates an upload and converts it to the canonical avatar: a
// Size x Size PNG. Both the filename extension and the sniffed content must
// name a JPEG or PNG. The image is scaled to cover the square and
// center-cropped.
func Normalize(filename string, data []byte) ([]byte, error) {
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}
	if !allowedExtension.MatchString(strings.ToLower(filename)) {
		return nil, ErrNotImage
	}
	if !mimetype.EqualsAny(mimetype.Detect(data).String(), allowedTypes...) {
		return nil, ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, ErrNotImage
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// coverRect returns the largest centered square inside b.
func coverRect(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}
