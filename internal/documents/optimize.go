package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	maxPhotoDimension = 1600
	photoQuality      = 82
)

// Optimize уменьшает фото документа и перекодирует его в JPEG.
// Файлы, не являющиеся изображениями (например, PDF), возвращаются без изменений.
func Optimize(data []byte, fileName, contentType string) ([]byte, string, string, error) {
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return data, fileName, contentType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", "", fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxPhotoDimension || b.Dy() > maxPhotoDimension {
		img = imaging.Fit(img, maxPhotoDimension, maxPhotoDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(photoQuality)); err != nil {
		return nil, "", "", fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), jpegName(fileName), "image/jpeg", nil
}

func jpegName(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i > 0 {
		fileName = fileName[:i]
	}
	if fileName == "" {
		fileName = "document"
	}
	return fileName + ".jpg"
}
