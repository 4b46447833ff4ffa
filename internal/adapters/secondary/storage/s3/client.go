package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/Moxx-Company/Nomadly2/internal/ports/storage"
	"github.com/minio/minio-go/v7"
	"log/slog"
)

// Client link shortener backed by an S3-compatible bucket. Each short code is
// stored as a tiny redirect object; the bucket is served from a short domain
// in website mode, so GET /<code> redirects to the target.
type Client struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	log           *slog.Logger
}

// NewClient creates the S3-backed link store
func NewClient(client *minio.Client, bucket, publicBaseURL string, log *slog.Logger) storage.ILinkStore {
	return &Client{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// Shorten stores a redirect object for target and returns the short URL.
// Writing the same code twice overwrites the previous target.
func (c *Client) Shorten(ctx context.Context, code string, targetURL string) (string, error) {
	body := strings.NewReader(redirectPage(targetURL))

	_, err := c.client.PutObject(ctx, c.bucket, code, body, int64(body.Len()), minio.PutObjectOptions{
		ContentType:             "text/html; charset=utf-8",
		WebsiteRedirectLocation: targetURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store redirect %s: %w", code, err)
	}

	shortURL := c.publicBaseURL + "/" + code
	c.log.Debug("link shortened", "code", code, "target", targetURL)
	return shortURL, nil
}

// redirectPage is the fallback body for hosts that ignore the redirect header
func redirectPage(targetURL string) string {
	return fmt.Sprintf(
		`<!DOCTYPE html><html><head><meta http-equiv="refresh" content="0;url=%s"></head><body><a href="%s">Continue to payment</a></body></html>`,
		targetURL, targetURL,
	)
}
