package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MediaStore persists uploaded listing images on local disk. Files are laid
// out as listings/{userID}/{timestamp}{ext} under the base path, which the
// router serves back under /media/.
type MediaStore struct {
	basePath string
}

// NewMediaStore creates the base directory if needed.
func NewMediaStore(basePath string) (*MediaStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &MediaStore{basePath: basePath}, nil
}

// Dir returns the base directory served under /media/.
func (s *MediaStore) Dir() string {
	return s.basePath
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// SaveListingImage stores an image for a user's listing and returns the URL
// path it will be served from.
func (s *MediaStore) SaveListingImage(userID string, src io.Reader, ext string) (string, error) {
	ext = strings.ToLower(ext)
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	if strings.ContainsAny(userID, `/\.`) {
		return "", fmt.Errorf("invalid user id in image path")
	}

	dir := filepath.Join(s.basePath, "listings", userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create listing image directory: %w", err)
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return path.Join("/media", "listings", userID, name), nil
}
