package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	maxDimension = 800
	jpegQuality  = 80
	maxFileSize  = 5 << 20
)

// ImageStore downsizes uploaded images to JPEG on local disk.
type ImageStore struct {
	dir       string
	urlPrefix string
}

func NewImageStore(dir, urlPrefix string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &ImageStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save decodes any format imaging understands and returns the public URL of the stored JPEG.
func (s *ImageStore) Save(r io.Reader) (string, error) {
	img, err := imaging.Decode(io.LimitReader(r, maxFileSize), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	name := uuid.New().String() + ".jpg"
	if err := imaging.Save(img, filepath.Join(s.dir, name), imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path.Join(s.urlPrefix, name), nil
}

func (s *ImageStore) SaveFile(fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxFileSize {
		return "", fmt.Errorf("image exceeds %d bytes", maxFileSize)
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.Save(f)
}
