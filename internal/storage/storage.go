// Package storage defines the object storage contract used by the upload
// coordinator and the verification engine.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrObjectNotFound is returned when a download targets a missing object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidURL is returned when a public URL does not point into a bucket.
	ErrInvalidURL = errors.New("url does not reference the storage bucket")
)

// Storage is a put-and-get-url object store.
type Storage interface {
	// Put stores payload under bucket/path.
	Put(ctx context.Context, bucket, path string, payload []byte, contentType string) error
	// PublicURL returns the publicly retrievable URL of bucket/path.
	PublicURL(bucket, path string) string
	// Download fetches the object at bucket/path.
	Download(ctx context.Context, bucket, path string) ([]byte, error)
}

// PathFromURL recovers the object path from a public URL by taking the part
// of the URL path that follows the first "/{bucket}/" segment. Paths that
// would escape the bucket once cleaned are rejected.
func PathFromURL(publicURL, bucket string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	marker := "/" + bucket + "/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, bucket)
	}

	object := u.Path[idx+len(marker):]
	if object == "" {
		return "", fmt.Errorf("%w: empty object path", ErrInvalidURL)
	}
	// the object must stay inside the bucket: no dot segments, no empty segments
	if path.Clean(object) != object || object == ".." || strings.HasPrefix(object, "../") {
		return "", fmt.Errorf("%w: unclean object path %q", ErrInvalidURL, object)
	}
	return object, nil
}
