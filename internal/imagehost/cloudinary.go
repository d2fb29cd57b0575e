package imagehost

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads avatars to a Cloudinary account. Re-uploading for the
// same user overwrites the previous image.
type Cloudinary struct {
	client *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{client: client}, nil
}

// UploadAvatar stores the image under a per-user public id.
func (c *Cloudinary) UploadAvatar(ctx context.Context, userID int64, file io.Reader) (string, error) {
	result, err := c.client.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  fmt.Sprintf("avatars/user_%d", userID),
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return result.SecureURL, nil
}
