package models

import (
	"fmt"
)

// MimeCategory категория медиа-типа артефакта
type MimeCategory string

const (
	MimeImage    MimeCategory = "image"
	MimeAudio    MimeCategory = "audio"
	MimeVideo    MimeCategory = "video"
	MimeDocument MimeCategory = "document"
	MimeOther    MimeCategory = "other"
)

// Artifact один загруженный файл улики с классифицированным типом
type Artifact struct {
	Name      string       `json:"name"`
	SizeBytes int64        `json:"size_bytes"`
	Category  MimeCategory `json:"category"`

	// Содержимое держим в памяти на время одного сканирования
	Content []byte `json:"-"`
}

// Key ключ идентичности артефакта: (имя, размер)
func (a *Artifact) Key() string {
	return fmt.Sprintf("%s:%d", a.Name, a.SizeBytes)
}

// ArtifactBatch упорядоченный набор уникальных артефактов + инструкции.
// После передачи оркестратору батч запечатывается и больше не меняется.
type ArtifactBatch struct {
	artifacts    []*Artifact
	seen         map[string]struct{}
	Instructions string
	sealed       bool
}

// NewArtifactBatch создает пустой батч
func NewArtifactBatch(instructions string) *ArtifactBatch {
	return &ArtifactBatch{
		seen:         make(map[string]struct{}),
		Instructions: instructions,
	}
}

// Add добавляет артефакт в батч.
// Возвращает false для дубликата (тот же ключ идентичности) или запечатанного батча.
func (b *ArtifactBatch) Add(a *Artifact) bool {
	if b.sealed || a == nil {
		return false
	}
	if _, ok := b.seen[a.Key()]; ok {
		return false
	}
	b.seen[a.Key()] = struct{}{}
	b.artifacts = append(b.artifacts, a)
	return true
}

// Seal запечатывает батч перед отправкой
func (b *ArtifactBatch) Seal() {
	b.sealed = true
}

// Sealed сообщает, запечатан ли батч
func (b *ArtifactBatch) Sealed() bool {
	return b.sealed
}

// Len количество артефактов в батче
func (b *ArtifactBatch) Len() int {
	return len(b.artifacts)
}

// Artifacts возвращает артефакты в порядке добавления
func (b *ArtifactBatch) Artifacts() []*Artifact {
	out := make([]*Artifact, len(b.artifacts))
	copy(out, b.artifacts)
	return out
}
