// Package documents сохраняет фото документов клиента и возвращает ссылки на них.
package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ErrUploadFailed - файл не удалось сохранить. Отправку заявки не прерывает.
var ErrUploadFailed = errors.New("document upload failed")

// Uploader сохраняет файл в каталоге folder и возвращает публичную ссылку.
type Uploader interface {
	Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error)
}

// objectName строит уникальное имя объекта: <folder>/<unix-ms>_<имя файла>.
func objectName(folder, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s", folder, now.UnixMilli(), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
	if strings.Trim(name, "._") == "" {
		return "document"
	}
	return name
}
