// Package objstore uploads item photos to an S3-compatible bucket.
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config describes the bucket. Endpoint may carry an http:// or https://
// scheme; without one TLS is used.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// PublicURL is the public prefix objects are served from. When empty,
	// Upload returns the bare object key.
	PublicURL string
}

// Uploader stores photos under images/.
type Uploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
	now       func() time.Time
}

// New creates an uploader for cfg.
func New(cfg Config) (*Uploader, error) {
	host, secure, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}
	return &Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		now:       time.Now,
	}, nil
}

// Upload stores a JPEG for sku and returns the reference to save on the item.
func (u *Uploader) Upload(ctx context.Context, sku string, data []byte) (string, error) {
	key := ObjectKey(sku, u.now())
	_, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	if u.publicURL == "" {
		return key, nil
	}
	return u.publicURL + "/" + key, nil
}

// ObjectKey returns images/{safe sku}-{unix seconds}.jpg.
func ObjectKey(sku string, at time.Time) string {
	return fmt.Sprintf("images/%s-%d.jpg", SafeSKU(sku), at.Unix())
}

// SafeSKU keeps letters, digits, '-' and '_'.
func SafeSKU(sku string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, sku)
}

func splitEndpoint(endpoint string) (host string, secure bool, err error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("object store endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parsing object store endpoint: %w", err)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	}
	return "", false, fmt.Errorf("unsupported object store scheme %q", u.Scheme)
}
