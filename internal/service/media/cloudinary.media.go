package media

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Storage hosts uploaded audio and returns a public URL for it.
type Storage interface {
	UploadAudio(ctx context.Context, file io.Reader, name string) (string, error)
}

type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) UploadAudio(ctx context.Context, file io.Reader, name string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       "twiller_audio",
		PublicID:     name,
		ResourceType: "auto",
		Format:       "mp3",
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}
