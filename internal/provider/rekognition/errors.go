package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrUnreadableImage indicates the image dimensions could not be decoded
	ErrUnreadableImage = errors.New("unreadable image")
)
