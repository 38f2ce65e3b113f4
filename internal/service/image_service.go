package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"peymonak_backend/internal/util"
	"peymonak_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const jpegQuality = 75

// MaxImageBytes bounds a single uploaded file before decoding.
const MaxImageBytes = 10 << 20

// MaxImagePixels bounds width*height, checked from the header before decoding.
var MaxImagePixels = 40_000_000

// ImageFile is one uploaded file, already read into memory by the transport layer.
type ImageFile struct {
	Name string
	Data []byte
}

// StoredImage is a normalized image that has been written to storage.
type StoredImage struct {
	Key string
	URL string
}

type ImageService struct {
	Storage *StorageService
}

func NewImageService(storage *StorageService) *ImageService {
	return &ImageService{Storage: storage}
}

// Normalize decodes an uploaded image, flattens any transparency onto a white
// background and re-encodes it as a quality-75 JPEG.
func Normalize(data []byte) ([]byte, error) {
	if len(data) > MaxImageBytes {
		return nil, util.FieldError("images", "image is larger than 10MB")
	}
	if mimeType, ok := util.SniffImage(data); !ok {
		return nil, util.FieldError("images", "unsupported image type "+mimeType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, util.FieldError("images", "image could not be decoded")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(MaxImagePixels) {
		return nil, util.FieldError("images", fmt.Sprintf("image dimensions %dx%d are too large", cfg.Width, cfg.Height))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, util.FieldError("images", "image could not be decoded")
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ImageKey builds the storage key "<scope>/<uuid>_compressed.jpg".
func ImageKey(scope string) string {
	return fmt.Sprintf("%s/%s_compressed.jpg", scope, uuid.NewString())
}

// StoreBatch normalizes every file concurrently, then uploads them under scope.
// Nothing is uploaded unless every file normalizes; if an upload fails the
// files already stored for this batch are removed.
func (s *ImageService) StoreBatch(ctx context.Context, scope string, files []ImageFile) ([]StoredImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	encoded := make([][]byte, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := Normalize(f.Data)
			if err != nil {
				return err
			}
			encoded[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stored := make([]StoredImage, 0, len(files))
	for _, data := range encoded {
		key := ImageKey(scope)
		url, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), util.MimeJPEG)
		if err != nil {
			s.Discard(ctx, stored)
			return nil, fmt.Errorf("upload image: %w", err)
		}
		stored = append(stored, StoredImage{Key: key, URL: url})
	}
	return stored, nil
}

// Store normalizes and uploads a single file.
func (s *ImageService) Store(ctx context.Context, scope string, file ImageFile) (*StoredImage, error) {
	stored, err := s.StoreBatch(ctx, scope, []ImageFile{file})
	if err != nil {
		return nil, err
	}
	return &stored[0], nil
}

// Discard removes stored images; failures are logged, never returned.
func (s *ImageService) Discard(ctx context.Context, images []StoredImage) {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.Key)
	}
	s.RemoveKeys(ctx, keys...)
}

func (s *ImageService) RemoveKeys(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, key); err != nil {
			logger.Log.Warn("Failed to delete stored image", zap.String("key", key), zap.Error(err))
		}
	}
}
