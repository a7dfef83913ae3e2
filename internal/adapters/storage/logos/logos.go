package logos

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
)

const (
	// MaxSide is the largest width or height a stored logo keeps.
	MaxSide = 512
	// MaxSourceSide is the largest width or height of an uploaded image that is decoded at all.
	MaxSourceSide = 4096
)

// Storage keeps club logos as PNG files in a local directory served under URLPrefix.
type Storage struct {
	dir       string
	urlPrefix string
}

func NewStorage(dir, urlPrefix string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logos dir: %w", err)
	}
	return &Storage{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Save decodes a PNG, JPEG or GIF image, shrinks it to fit MaxSide and stores it as PNG.
// Images declaring more than MaxSourceSide pixels on a side are rejected before decoding.
// It returns the public URL of the stored file.
func (s *Storage) Save(r io.Reader) (string, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return "", invalidLogo()
	}
	if cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide {
		return "", errorz.NewValidationError(map[string]string{
			"logo": fmt.Sprintf("must be at most %dx%d pixels", MaxSourceSide, MaxSourceSide),
		})
	}

	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return "", invalidLogo()
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxSide || bounds.Dy() > MaxSide {
		img = resize.Thumbnail(MaxSide, MaxSide, img, resize.Lanczos3)
	}

	name := uuid.New().String() + ".png"
	if err = s.write(name, img); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + name, nil
}

// write encodes img into a new file, removing what was written when encoding fails.
func (s *Storage) write(name string, img image.Image) error {
	file := filepath.Join(s.dir, name)
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("create logo file: %w", err)
	}

	if err = png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(file)
		return fmt.Errorf("encode logo: %w", err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(file)
		return fmt.Errorf("close logo file: %w", err)
	}
	return nil
}

func invalidLogo() error {
	return errorz.NewValidationError(map[string]string{"logo": "must be a PNG, JPEG or GIF image"})
}

// file maps a URL returned by Save to the stored file.
func (s *Storage) file(url string) (string, error) {
	name := path.Base(url)
	if !strings.HasPrefix(url, s.urlPrefix+"/") || name == "." || name == "/" {
		return "", fmt.Errorf("logo %q is not stored here", url)
	}
	return filepath.Join(s.dir, name), nil
}

// Open loads a logo previously returned by Save.
func (s *Storage) Open(url string) (image.Image, error) {
	file, err := s.file(url)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("logo %q: %w", url, errorz.ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}

// Remove deletes a logo previously returned by Save. A logo that is already gone is not an error.
func (s *Storage) Remove(url string) error {
	file, err := s.file(url)
	if err != nil {
		return err
	}
	if err = os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove logo: %w", err)
	}
	return nil
}

// Dir is the directory served as static files.
func (s *Storage) Dir() string {
	return s.dir
}
