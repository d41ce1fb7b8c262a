package scanning

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DecodeImage decodes upload bytes and flattens the result onto a white
// background, so every engine receives an opaque RGB image.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, newError("decode", ErrImageDecode, nil, "empty image data")
	}

	var img image.Image
	var err error

	// Phones often upload HEIC under a .jpg name, so sniff the bytes instead of
	// trusting the content type
	if isHEICFormat(data) {
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, newError("decode", ErrImageDecode, err, "decoding HEIC/HEIF image")
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				return nil, newError("decode", ErrImageDecode, err, "unsupported image format. Supported formats: PNG, JPEG, WEBP")
			}
			return nil, newError("decode", ErrImageDecode, err, "")
		}
	}

	return flatten(img), nil
}

// flatten composites img over white, dropping the alpha channel.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// Enhance boosts contrast and sharpness of a receipt photo before OCR.
func Enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.5)
	out = imaging.AdjustBrightness(out, 10)
	return imaging.AdjustGamma(out, 1.2)
}

// encodePNG serializes img for engines that take encoded bytes
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files carry an ftyp box at offset 4 with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1"
}
