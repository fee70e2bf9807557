// Package upload stores captured images and hands back their public URLs.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retroconnect/idverify/internal/storage"
)

// Object names inside an owner folder.
const (
	NameSelfie  = "selfie"
	NameIDFront = "id-front"
	NameIDBack  = "id-back"
)

// ErrInvalidDataURI is returned for payloads that are not base64 data URIs.
var ErrInvalidDataURI = errors.New("invalid data uri")

// DecodeDataURI splits a "data:<type>;base64,<payload>" string.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", ErrInvalidDataURI
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(payload) == 0 {
		return nil, "", ErrInvalidDataURI
	}
	return payload, contentType, nil
}

// ObjectPath builds "{owner}/{name}-{unixMillis}.jpg".
func ObjectPath(owner, name string, at time.Time) string {
	return fmt.Sprintf("%s/%s-%d.jpg", owner, name, at.UnixMilli())
}

// Set is the group of images uploaded for one registration.
type Set struct {
	Selfie  *string
	IDFront *string
	IDBack  *string
}

// URLs are the public URLs of an uploaded Set. Missing images stay nil.
type URLs struct {
	Selfie  *string
	IDFront *string
	IDBack  *string
}

// Coordinator writes images to one bucket.
type Coordinator struct {
	store  storage.Storage
	bucket string
	now    func() time.Time
	logger *slog.Logger
}

func NewCoordinator(store storage.Storage, bucket string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		bucket: bucket,
		now:    time.Now,
		logger: logger.With("component", "upload"),
	}
}

// Upload stores a single data URI. A nil image yields a nil URL.
func (c *Coordinator) Upload(ctx context.Context, image *string, name, owner string) (*string, error) {
	if image == nil {
		return nil, nil
	}

	payload, contentType, err := DecodeDataURI(*image)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	path := ObjectPath(owner, name, c.now())
	if err := c.store.Put(ctx, c.bucket, path, payload, contentType); err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	url := c.store.PublicURL(c.bucket, path)
	c.logger.Debug("image uploaded", "path", path, "bytes", len(payload))
	return &url, nil
}

// UploadSet uploads all images concurrently. The first failure fails the set.
func (c *Coordinator) UploadSet(ctx context.Context, owner string, set Set) (URLs, error) {
	var urls URLs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := c.Upload(gctx, set.Selfie, NameSelfie, owner)
		urls.Selfie = u
		return err
	})
	g.Go(func() error {
		u, err := c.Upload(gctx, set.IDFront, NameIDFront, owner)
		urls.IDFront = u
		return err
	})
	g.Go(func() error {
		u, err := c.Upload(gctx, set.IDBack, NameIDBack, owner)
		urls.IDBack = u
		return err
	})

	if err := g.Wait(); err != nil {
		return URLs{}, err
	}
	return urls, nil
}
