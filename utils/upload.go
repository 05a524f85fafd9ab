package utils

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
)

const (
	MaxImageSize  = 5 << 20
	maxImageWidth = 800
)

var (
	ErrImageTooLarge   = errors.New("file too large (max 5MB)")
	ErrInvalidFileType = errors.New("invalid file type, only JPG/JPEG/PNG allowed")
)

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SaveImage stores an uploaded product photo under dir, downscaling it to
// 800px wide when it is wider, and returns its public URL.
func SaveImage(file *multipart.FileHeader, dir string) (string, error) {
	if file.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExts[ext] {
		return "", ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	var img image.Image
	if ext == ".png" {
		img, err = png.Decode(src)
	} else {
		img, err = jpeg.Decode(src)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	name := fmt.Sprintf("product-%d%s", time.Now().UnixNano(), ext)
	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if ext == ".png" {
		err = png.Encode(out, img)
	} else {
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return "/images/" + name, nil
}
