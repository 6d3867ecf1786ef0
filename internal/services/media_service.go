package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"examapp/internal/repos"
	"examapp/internal/validate"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// MediaService writes uploaded product images under Dir and records the
// relative path on the product.
type MediaService struct {
	Dir   string
	Prods *repos.ProductRepo
}

func NewMediaService(dir string, prods *repos.ProductRepo) *MediaService {
	return &MediaService{Dir: dir, Prods: prods}
}

// ReplaceProductImage stores r as products/<id>/<uuid><ext> and points the product at it.
func (s *MediaService) ReplaceProductImage(productID int64, filename string, r io.Reader) (string, error) {
	ext, ok := validate.ImageExt(filename)
	if !ok {
		return "", ErrUnsupportedImage
	}
	if _, err := s.Prods.Get(productID); err != nil {
		return "", err
	}

	rel := filepath.ToSlash(filepath.Join("products", strconv.FormatInt(productID, 10), uuid.NewString()+ext))
	full := filepath.Join(s.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	if err := s.Prods.SetImage(productID, rel); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return rel, nil
}
