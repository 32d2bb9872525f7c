package services

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ycmovement/membership-api/internal/storage"
)

// thumbSize is the square edge of generated passport thumbnails
const thumbSize = 128

// ImageService produces passport-photo thumbnails for member cards and the
// admin review screens.
type ImageService struct{}

func NewImageService() *ImageService {
	return &ImageService{}
}

// CreateThumbnail reads the stored passport photo, renders a square
// thumbnail next to it in destDir and returns the thumbnail's path relative
// to the storage root.
func (s *ImageService) CreateThumbnail(store *storage.LocalStorage, photoPath, destDir string) (string, error) {
	img, err := imaging.Open(store.GetFullPath(photoPath))
	if err != nil {
		return "", fmt.Errorf("failed to decode passport photo: %w", err)
	}

	thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)

	ext := strings.ToLower(filepath.Ext(photoPath))
	var buf bytes.Buffer
	if ext == ".png" {
		err = png.Encode(&buf, thumb)
	} else {
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(photoPath), ext)
	return store.SaveBytes(buf.Bytes(), destDir, base+"_thumb"+ext)
}
