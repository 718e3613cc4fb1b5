package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/storefront/admin-console/internal/domain"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	DisplayWidth   = 800
	JPEGQuality    = 85
)

var (
	ErrImageTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat    = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall    = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData = errors.New("invalid image data")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func isImageError(err error) bool {
	return errors.Is(err, ErrImageTooLarge) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrImageTooSmall) ||
		errors.Is(err, ErrInvalidImageData)
}

// ImagePreparer validates and normalizes a category image before upload
type ImagePreparer interface {
	Prepare(upload *domain.ImageUpload) (*domain.ImageUpload, error)
}

// ImageService checks category images and shrinks oversized ones so the
// backend never receives more than a display-sized JPEG
type ImageService struct{}

var _ ImagePreparer = (*ImageService)(nil)

// NewImageService creates a new ImageService
func NewImageService() *ImageService {
	return &ImageService{}
}

// validateAndDecode validates the image and returns the decoded image
func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// Prepare validates an upload. Images wider than DisplayWidth are resized
// (aspect ratio kept) and re-encoded as JPEG; smaller ones pass through untouched.
// A nil upload yields nil.
func (s *ImageService) Prepare(upload *domain.ImageUpload) (*domain.ImageUpload, error) {
	if upload == nil {
		return nil, nil
	}

	img, err := s.validateAndDecode(upload.Data, upload.Filename)
	if err != nil {
		return nil, err
	}

	if img.Bounds().Dx() <= DisplayWidth {
		return &domain.ImageUpload{
			Filename:    upload.Filename,
			ContentType: GetContentType(upload.Filename),
			Data:        upload.Data,
		}, nil
	}

	resized := imaging.Resize(img, DisplayWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	base := strings.TrimSuffix(upload.Filename, filepath.Ext(upload.Filename))
	return &domain.ImageUpload{
		Filename:    base + ".jpg",
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

// GetContentType returns the content type for a file extension
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ResolveImageURL joins the image host with a backend-relative image path
func ResolveImageURL(host, path string) string {
	if path == "" {
		return ""
	}
	return host + path
}
