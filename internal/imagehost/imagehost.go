package imagehost

import (
	"context"
	"errors"
	"io"
)

// Uploader stores an avatar image with a third-party host and returns its
// public URL.
type Uploader interface {
	UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error)
}

// Disabled is the fallback when no image host is configured.
type Disabled struct{}

func (Disabled) UploadAvatar(context.Context, int64, io.Reader) (string, error) {
	return "", errors.New("image host is not configured")
}
