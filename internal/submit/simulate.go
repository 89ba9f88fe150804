package submit

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/ForensightLabs/forensight-console/internal/models"
)

// suspiciousThreshold симулированный вердикт: score > 70 считаем подозрительным
const suspiciousThreshold = 70

// Simulate собирает локальный суррогат отчета, когда оба endpoint'а недоступны.
// Форма совпадает с ответом primary endpoint'а, чтобы нормализатор работал
// одним и тем же путем. По одной улике на каждый артефакт батча.
func Simulate(batch *models.ArtifactBatch) models.RawReport {
	results := make([]interface{}, 0, batch.Len())
	for _, a := range batch.Artifacts() {
		results = append(results, simulateResult(a))
	}

	return models.RawReport{
		"session_id": "SIM-" + uuid.NewString()[:8],
		"results":    results,
		"final_summary": "Remote analysis service is unavailable. " +
			"This report was produced by a local simulation and carries no evidentiary weight.",
		"entities":  []interface{}{},
		"relations": []interface{}{},
	}
}

// simulateResult псевдослучайная оценка для одного артефакта в форме,
// которую отдает соответствующий агент сервиса
func simulateResult(a *models.Artifact) map[string]interface{} {
	// score в [0,100) с одним знаком после запятой
	score := math.Round(rand.Float64()*999) / 10

	verdict := "Clear (Simulated)"
	if score > suspiciousThreshold {
		verdict = "Suspicious (Simulated)"
	}

	var report map[string]interface{}
	switch a.Category {
	case models.MimeImage:
		report = map[string]interface{}{
			"verdict":             verdict,
			"tamperingPercentage": score,
			"explanation":         "Local heuristic estimate: remote analysis unavailable.",
		}
	case models.MimeVideo:
		report = map[string]interface{}{
			"verdict": verdict,
			"visual_analysis": map[string]interface{}{
				"fake_ratio_percent": score,
				"max_fake_score":     score,
			},
			"metadata": map[string]interface{}{
				"duration_sec": float64(0),
			},
		}
	case models.MimeAudio, models.MimeDocument:
		report = map[string]interface{}{
			"verdict": verdict,
			"misinformationAnalysis": map[string]interface{}{
				"dangerScore": score,
				"flags":       []interface{}{},
			},
			"summary": "Simulated assessment, the analysis service was unreachable.",
		}
	default:
		report = map[string]interface{}{
			"verdict": verdict,
			"note":    "Unsupported artifact type, simulated placeholder.",
		}
	}

	return map[string]interface{}{
		"file":   a.Name,
		"type":   string(a.Category),
		"report": report,
	}
}
