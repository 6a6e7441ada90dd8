package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// maxDimension bounds the longest side of a normalized image.
const maxDimension = 1024

// Normalize decodes an uploaded image, downscales it to fit within
// 1024x1024 (never upscaling), re-encodes it as PNG and returns the result
// base64-encoded. On any decode or encode failure it falls back to
// base64-encoding the original bytes untouched: downstream AI calls need
// some payload, so degradation here is silent.
func Normalize(raw []byte) string {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return base64.StdEncoding.EncodeToString(raw)
	}

	img = fitWithin(img, maxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return base64.StdEncoding.EncodeToString(raw)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// EncodeBase64PNG renders img as a base64-encoded PNG.
func EncodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// fitWithin scales img down so both sides fit in max, preserving aspect
// ratio. Images already within bounds are returned unchanged.
func fitWithin(img image.Image, max int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
