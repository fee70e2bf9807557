package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// StillCamera serves a single decoded image file as its only frame.
type StillCamera struct {
	path string

	mu    sync.Mutex
	frame image.Image
}

// NewStillCamera creates a camera backed by an image file.
func NewStillCamera(path string) *StillCamera {
	return &StillCamera{path: path}
}

func (c *StillCamera) Open(_ context.Context) error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.frame = img
	c.mu.Unlock()
	return nil
}

func (c *StillCamera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame != nil && c.frame.Bounds().Dx() > 0
}

func (c *StillCamera) Frame() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame == nil {
		return nil, ErrCameraNotOpen
	}
	return c.frame, nil
}

func (c *StillCamera) Close() error {
	c.mu.Lock()
	c.frame = nil
	c.mu.Unlock()
	return nil
}
