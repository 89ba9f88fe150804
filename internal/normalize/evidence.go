package normalize

import (
	"fmt"
	"strings"

	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/utils"
)

// normalizeEvidence превращает один элемент results в каноническую улику.
// Диспетчеризация по заявленному type без учета регистра; неизвестные
// и отсутствующие типы деградируют в ограниченный дамп исходного JSON.
func normalizeEvidence(item map[string]interface{}) models.EvidenceItem {
	file, ok := utils.FirstString(item, "file", "filename")
	if !ok {
		file = "(unknown)"
	}

	rep, ok := utils.AsMap(item["report"])
	if !ok {
		// Метрики могут лежать прямо на уровне элемента
		rep = item
	}

	// Ошибка агента на этом файле: структурных метрик не будет
	if errMsg, ok := utils.FirstString(item, "error"); ok {
		return rawEvidence(file, rep, "Analysis failed: "+errMsg)
	}
	if errMsg, ok := utils.FirstString(rep, "error"); ok {
		return rawEvidence(file, rep, "Analysis failed: "+errMsg)
	}

	typeStr, _ := utils.FirstString(item, "type")
	switch strings.ToLower(typeStr) {
	case "image":
		return imageEvidence(file, rep)
	case "video":
		return videoEvidence(file, rep)
	case "document":
		return textEvidence(file, rep, models.EvidenceDocument)
	case "audio":
		return textEvidence(file, rep, models.EvidenceAudio)
	default:
		return rawEvidence(file, rep, "")
	}
}

func imageEvidence(file string, rep map[string]interface{}) models.EvidenceItem {
	score, _ := utils.FirstNumber(rep, "tamperingPercentage", "tampering_percentage")
	verdict, ok := utils.FirstString(rep, "verdict")
	if !ok {
		verdict = "Unknown"
	}
	explanation, _ := utils.FirstString(rep, "explanation")

	return models.EvidenceItem{
		File:    file,
		Kind:    models.EvidenceImage,
		Flagged: score > flagThreshold,
		Summary: fmt.Sprintf("Verdict '%s', tampering %.1f%%", verdict, score),
		Image: &models.ImageEvidence{
			TamperScore: score,
			Verdict:     verdict,
			Explanation: explanation,
		},
	}
}

func videoEvidence(file string, rep map[string]interface{}) models.EvidenceItem {
	ratio, _ := utils.DigNumber(rep, "visual_analysis", "fake_ratio_percent")
	maxScore, _ := utils.DigNumber(rep, "visual_analysis", "max_fake_score")
	duration, _ := utils.DigNumber(rep, "metadata", "duration_sec")
	verdict, ok := utils.FirstString(rep, "verdict")
	if !ok {
		verdict = "Unknown"
	}

	return models.EvidenceItem{
		File:    file,
		Kind:    models.EvidenceVideo,
		Flagged: ratio > 0,
		Summary: fmt.Sprintf("Verdict '%s', fake frames %.1f%%, duration %.0fs", verdict, ratio, duration),
		Video: &models.VideoEvidence{
			FakeRatioPercent: ratio,
			MaxFakeScore:     maxScore,
			DurationSec:      duration,
		},
	}
}

func textEvidence(file string, rep map[string]interface{}, kind models.EvidenceKind) models.EvidenceItem {
	danger, _ := utils.DigNumber(rep, "misinformationAnalysis", "dangerScore")

	flagCount := 0
	if flags, ok := utils.Dig(rep, "misinformationAnalysis", "flags"); ok {
		if list, ok := utils.AsSlice(flags); ok {
			flagCount = len(list)
		}
	}

	verification, _ := utils.DigString(rep, "factCheckAgent", "verification_result")
	verification = utils.TruncateString(verification, verificationMaxLen)

	summary, ok := utils.FirstString(rep, "summary")
	if !ok {
		summary, _ = utils.DigString(rep, "transcript", "text")
	}

	return models.EvidenceItem{
		File:    file,
		Kind:    kind,
		Flagged: danger > flagThreshold,
		Summary: fmt.Sprintf("Danger score %.0f/100 (%d flags)", danger, flagCount),
		Text: &models.TextEvidence{
			DangerScore:  danger,
			FlagCount:    flagCount,
			Verification: verification,
			Summary:      summary,
		},
	}
}

// rawEvidence улика без структурных метрик: вердикт если есть, иначе дамп
func rawEvidence(file string, rep map[string]interface{}, summary string) models.EvidenceItem {
	if summary == "" {
		if verdict, ok := utils.FirstString(rep, "verdict"); ok {
			summary = fmt.Sprintf("Verdict '%s'", verdict)
		} else {
			summary = "Unstructured result"
		}
	}
	return models.EvidenceItem{
		File:    file,
		Kind:    models.EvidenceRaw,
		Summary: summary,
		RawDump: utils.BoundedDump(rep, rawDumpMaxLen),
	}
}
