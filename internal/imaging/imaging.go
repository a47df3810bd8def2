// Package imaging decodes photographs, reads their EXIF capture details and
// produces downscaled JPEG renditions for classification and page output.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultThumbnailMaxDimension is the longest edge of classifier thumbnails.
const DefaultThumbnailMaxDimension = 1024

// DefaultJPEGQuality is used for thumbnails and composed pages.
const DefaultJPEGQuality = 90

// Config returns the pixel dimensions and format name from the image header
// without decoding the pixel data.
func Config(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// Decode decodes a JPEG, PNG or WebP image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// MIMEType maps a format name from Config to its MIME type.
func MIMEType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// EncodeJPEG encodes img at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail downscales an encoded image so its longest edge is at most
// maxDimension and re-encodes it as JPEG. Images already within bounds are
// re-encoded without resizing.
func Thumbnail(data []byte, maxDimension int) ([]byte, string, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, "", err
	}

	bounds := img.Bounds()
	origWidth, origHeight := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := ThumbnailDimensions(origWidth, origHeight, maxDimension)

	out := img
	if newWidth != origWidth || newHeight != origHeight {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		out = resized
	}

	encoded, err := EncodeJPEG(out, DefaultJPEGQuality)
	if err != nil {
		return nil, "", err
	}

	log.Debug().
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("output_size", len(encoded)).
		Msg("Thumbnail generated")

	return encoded, "image/jpeg", nil
}

// ThumbnailDimensions scales (width, height) so the longest edge is at most
// maxDimension, preserving the aspect ratio.
func ThumbnailDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}
	if width > height {
		return maxDimension, max(1, int(float64(height)*float64(maxDimension)/float64(width)))
	}
	return max(1, int(float64(width)*float64(maxDimension)/float64(height))), maxDimension
}

// Metadata holds the EXIF details the planner can use for ordering and
// narrative.
type Metadata struct {
	TakenAt time.Time
	Camera  string
}

// ReadMetadata extracts the capture time and camera from EXIF. Priority for
// the time is DateTimeOriginal, then CreateDate, then ModifyDate.
func ReadMetadata(data []byte) (Metadata, error) {
	exif, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	var md Metadata
	switch {
	case !exif.DateTimeOriginal().IsZero():
		md.TakenAt = exif.DateTimeOriginal()
	case !exif.CreateDate().IsZero():
		md.TakenAt = exif.CreateDate()
	case !exif.ModifyDate().IsZero():
		md.TakenAt = exif.ModifyDate()
	}
	md.Camera = strings.TrimSpace(strings.TrimSpace(exif.Make) + " " + strings.TrimSpace(exif.Model))
	return md, nil
}
