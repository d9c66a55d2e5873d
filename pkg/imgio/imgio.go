// Package imgio loads, decodes, and saves the image files the posterizer
// works with. Loading tolerates the formats people actually drop into a
// work folder (JPEG, PNG, WebP, BMP) and applies EXIF orientation so
// phone photos come in upright.
package imgio

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Load reads an image from disk and returns it upright in NRGBA.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		raw, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", path, rerr)
		}
		img, err = decodeBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
		}
	}
	return imaging.Clone(applyOrientation(img, readOrientation(path))), nil
}

// Decode decodes in-memory image bytes, such as a background remover
// response, into NRGBA.
func Decode(raw []byte) (*image.NRGBA, error) {
	img, err := decodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imaging.Clone(img), nil
}

func decodeBytes(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err == nil {
		return img, nil
	}
	if wimg, werr := webp.Decode(bytes.NewReader(raw)); werr == nil {
		return wimg, nil
	}
	return nil, err
}

// SavePNG writes the image as PNG, creating the directory if needed.
func SavePNG(img image.Image, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return fmt.Errorf("output path %s must end in .png", path)
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
