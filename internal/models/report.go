package models

import "time"

// RawReport ненормализованный ответ бэкенда или симуляции.
// Форма нестабильна между версиями сервиса, поэтому работаем через map
// и цепочки кандидатов ключей (см. internal/normalize).
type RawReport map[string]interface{}

// EvidenceKind тип нормализованной улики
type EvidenceKind string

const (
	EvidenceImage    EvidenceKind = "image"
	EvidenceVideo    EvidenceKind = "video"
	EvidenceDocument EvidenceKind = "document"
	EvidenceAudio    EvidenceKind = "audio"
	EvidenceRaw      EvidenceKind = "raw"
)

// ImageEvidence метрики анализа изображения
type ImageEvidence struct {
	TamperScore float64 `json:"tamper_score"`
	Verdict     string  `json:"verdict"`
	Explanation string  `json:"explanation,omitempty"`
}

// VideoEvidence метрики видео-форензики
type VideoEvidence struct {
	FakeRatioPercent float64 `json:"fake_ratio_percent"`
	MaxFakeScore     float64 `json:"max_fake_score"`
	DurationSec      float64 `json:"duration_sec"`
}

// TextEvidence метрики анализа документов и аудио-транскриптов
type TextEvidence struct {
	DangerScore  float64 `json:"danger_score"`
	FlagCount    int     `json:"flag_count"`
	Verification string  `json:"verification,omitempty"`
	Summary      string  `json:"summary,omitempty"`
}

// EvidenceItem нормализованная улика по одному артефакту.
// Заполнен ровно один из вариантов в зависимости от Kind;
// неизвестные типы деградируют в ограниченный дамп исходного JSON.
type EvidenceItem struct {
	File    string         `json:"file"`
	Kind    EvidenceKind   `json:"kind"`
	Flagged bool           `json:"flagged"`
	Summary string         `json:"summary"`
	Image   *ImageEvidence `json:"image,omitempty"`
	Video   *VideoEvidence `json:"video,omitempty"`
	Text    *TextEvidence  `json:"text,omitempty"`
	RawDump string         `json:"raw_dump,omitempty"`
}

// Score основной показатель улики (tamper/fake/danger) для отображения
func (e *EvidenceItem) Score() float64 {
	switch {
	case e.Image != nil:
		return e.Image.TamperScore
	case e.Video != nil:
		return e.Video.FakeRatioPercent
	case e.Text != nil:
		return e.Text.DangerScore
	}
	return 0
}

// Opinion мнение сервиса по конкретному файлу
type Opinion struct {
	File    string `json:"file"`
	Opinion string `json:"opinion"`
}

// Entity извлеченная сущность (люди, объекты, файлы)
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Relation связь между сущностями
type Relation struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

// BlockchainTx результат фиксации отчета в блокчейне: либо хэш, либо ошибка
type BlockchainTx struct {
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

// CaseReport канонический отчет по делу
type CaseReport struct {
	CaseID       string         `json:"case_id"`
	Summary      string         `json:"summary"`
	ProofHash    string         `json:"proof_hash,omitempty"`
	BlockchainTx *BlockchainTx  `json:"blockchain_tx,omitempty"`
	Opinions     []Opinion      `json:"opinions"`
	Entities     []Entity       `json:"entities"`
	Relations    []Relation     `json:"relations"`
	Evidence     []EvidenceItem `json:"evidence"`
	DetailedLog  string         `json:"detailed_log"`

	// Degraded выставляется оркестратором, когда оба endpoint'а недоступны
	// и отчет собран локальной симуляцией
	Degraded  bool      `json:"degraded,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
