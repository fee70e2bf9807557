package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// JPEGQuality is the encoder quality used for every captured image.
const JPEGQuality = 92

const jpegMIME = "image/jpeg"

// FlipHorizontal returns a mirrored copy of img anchored at the origin.
func FlipHorizontal(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	s2d := f64.Aff3{
		-1, 0, float64(b.Max.X),
		0, 1, -float64(b.Min.Y),
	}
	draw.NearestNeighbor.Transform(dst, s2d, img, b, draw.Src, nil)
	return dst
}

// EncodeJPEG encodes img at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps an encoded payload as a base64 data URI.
func DataURI(contentType string, payload []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// EncodeFrame encodes a frame as a JPEG data URI.
func EncodeFrame(img image.Image) (string, error) {
	payload, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}
	return DataURI(jpegMIME, payload), nil
}
