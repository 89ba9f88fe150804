package utils

import (
	"path/filepath"
	"strings"

	"github.com/ForensightLabs/forensight-console/internal/models"
)

// Классификация файлов улик по расширению.
// Наборы расширений совпадают с теми, что принимает сервис анализа.

var categoryByExt = map[string]models.MimeCategory{
	"png":  models.MimeImage,
	"jpg":  models.MimeImage,
	"jpeg": models.MimeImage,
	"gif":  models.MimeImage,

	"mp3": models.MimeAudio,
	"wav": models.MimeAudio,
	"m4a": models.MimeAudio,

	"mp4": models.MimeVideo,
	"mov": models.MimeVideo,
	"avi": models.MimeVideo,
	"mkv": models.MimeVideo,

	"txt":  models.MimeDocument,
	"pdf":  models.MimeDocument,
	"docx": models.MimeDocument,
	"json": models.MimeDocument,
}

// ClassifyMedia определяет категорию файла по расширению
func ClassifyMedia(filename string) models.MimeCategory {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if cat, ok := categoryByExt[ext]; ok {
		return cat
	}
	return models.MimeOther
}

// ArtifactFilter отсекает файлы, которые сервис анализа не примет
type ArtifactFilter struct {
	maxSizeBytes int64
}

// NewArtifactFilter создает фильтр с лимитом размера файла
func NewArtifactFilter(maxSizeBytes int64) *ArtifactFilter {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 200 << 20 // 200MB, лимит сервиса
	}
	return &ArtifactFilter{maxSizeBytes: maxSizeBytes}
}

// ShouldSkipWithReason определяет, нужно ли отбросить файл, и возвращает причину
func (f *ArtifactFilter) ShouldSkipWithReason(filename string, sizeBytes int64) (bool, string) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return true, "missing file extension"
	}
	if _, ok := categoryByExt[ext]; !ok {
		return true, "unsupported extension: ." + ext
	}
	if sizeBytes > f.maxSizeBytes {
		return true, "file too large"
	}
	return false, ""
}
