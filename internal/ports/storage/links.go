package storage

import "context"

// ILinkStore shortener for payment page links. Backed by an S3-compatible
// bucket of redirect objects served from a short domain.
type ILinkStore interface {
	// Shorten stores a redirect for target and returns the short URL.
	Shorten(ctx context.Context, code string, targetURL string) (string, error)
}
