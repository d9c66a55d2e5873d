package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"popart/pkg/imgio"
)

// AlphaRemover is the no-server fallback. It keeps whatever alpha the
// input already carries, so pre-cut PNGs posterize correctly, and inputs
// without an alpha channel come back fully opaque (the whole frame is
// treated as subject).
type AlphaRemover struct{}

func (AlphaRemover) Remove(ctx context.Context, raw []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imgio.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("local remover: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("local remover: failed to encode cutout: %w", err)
	}
	return buf.Bytes(), nil
}
