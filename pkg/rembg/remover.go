// Package rembg abstracts background removal. The pipeline hands a remover
// the raw input bytes and gets back image bytes whose alpha channel encodes
// subject confidence; everything downstream only sees that contract.
package rembg

import (
	"context"
	"time"
)

// Remover strips the background from a photograph. Implementations return
// encoded image bytes with alpha marking the subject.
type Remover interface {
	Remove(ctx context.Context, raw []byte) ([]byte, error)
}

// New selects a remover for the given server URL. An empty URL falls back
// to the local alpha passthrough, which lets the tools run on images that
// were cut out beforehand.
func New(serverURL string, timeout time.Duration) Remover {
	if serverURL == "" {
		return AlphaRemover{}
	}
	return NewHTTPRemover(serverURL, timeout)
}
