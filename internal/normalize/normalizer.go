package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/utils"
)

const (
	// sentinelCaseID дело без идентификатора от сервиса
	sentinelCaseID = "global"

	// defaultSummary фиксированная заглушка, когда сервис не дал резюме
	defaultSummary = "Analysis finished. The service did not provide a summary."

	// verificationMaxLen результат фактчека обрезаем до 100 символов
	verificationMaxLen = 100

	// rawDumpMaxLen ограничение дампа улик неизвестного типа
	rawDumpMaxLen = 400

	// flagThreshold порог tamper/danger score для пометки улики
	flagThreshold = 50
)

// Normalize приводит сырой отчет произвольной формы к каноническому CaseReport.
// Чистая и тотальная: не ходит в сеть и никогда не падает -
// отсутствующие поля деградируют к дефолтам.
// Уже канонический отчет проходит насквозь без изменений, поэтому
// Normalize идемпотентна.
func Normalize(raw models.RawReport) *models.CaseReport {
	m := map[string]interface{}(raw)
	if m == nil {
		m = map[string]interface{}{}
	}

	if isCanonical(m) {
		if report, ok := decodeCanonical(m); ok {
			return report
		}
	}

	report := &models.CaseReport{
		Opinions:  []models.Opinion{},
		Entities:  []models.Entity{},
		Relations: []models.Relation{},
		Evidence:  []models.EvidenceItem{},
	}

	report.CaseID = resolveCaseID(m)
	report.Summary = resolveSummary(m)
	report.ProofHash, _ = utils.FirstString(m, "proof_hash", "proofHash")
	report.BlockchainTx = resolveBlockchainTx(m)

	results, _ := utils.FirstSlice(m, "results")
	for _, r := range results {
		item, ok := utils.AsMap(r)
		if !ok {
			continue
		}
		report.Evidence = append(report.Evidence, normalizeEvidence(item))
	}

	// Legacy endpoint отдает один отчет без списка results
	if len(results) == 0 {
		if single, ok := legacyItem(m); ok {
			report.Evidence = append(report.Evidence, normalizeEvidence(single))
		}
	}

	report.Opinions = resolveOpinions(m, results)
	report.Entities = resolveEntities(m)
	report.Relations = resolveRelations(m)
	report.DetailedLog = buildDetailedLog(report)

	return report
}

// isCanonical распознает уже нормализованный отчет: у сырых ответов
// никогда нет пары evidence + detailed_log, у канонических - нет results
func isCanonical(m map[string]interface{}) bool {
	_, hasEvidence := m["evidence"]
	_, hasLog := m["detailed_log"]
	_, hasResults := m["results"]
	return hasEvidence && hasLog && !hasResults
}

// decodeCanonical пытается прочитать канонический отчет как есть
func decodeCanonical(m map[string]interface{}) (*models.CaseReport, bool) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	var report models.CaseReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false
	}
	if report.Opinions == nil {
		report.Opinions = []models.Opinion{}
	}
	if report.Entities == nil {
		report.Entities = []models.Entity{}
	}
	if report.Relations == nil {
		report.Relations = []models.Relation{}
	}
	if report.Evidence == nil {
		report.Evidence = []models.EvidenceItem{}
	}
	return &report, true
}

func resolveCaseID(m map[string]interface{}) string {
	if id, ok := utils.FirstString(m, "session_id", "case_id"); ok {
		return id
	}
	return sentinelCaseID
}

func resolveSummary(m map[string]interface{}) string {
	if s, ok := utils.FirstString(m, "final_summary", "overall_summary"); ok {
		return s
	}
	return defaultSummary
}

func resolveBlockchainTx(m map[string]interface{}) *models.BlockchainTx {
	tx, ok := utils.AsMap(m["blockchain_tx"])
	if !ok {
		return nil
	}
	if hash, ok := utils.FirstString(tx, "hash", "tx_hash", "txHash"); ok {
		return &models.BlockchainTx{Hash: hash}
	}
	if errMsg, ok := utils.FirstString(tx, "error"); ok {
		return &models.BlockchainTx{Error: errMsg}
	}
	return nil
}

// legacyItem оборачивает одиночный legacy-отчет в форму элемента results
func legacyItem(m map[string]interface{}) (map[string]interface{}, bool) {
	_, hasVerdict := utils.FirstString(m, "verdict")
	details, hasDetails := utils.AsMap(m["details"])
	if !hasVerdict && !hasDetails {
		return nil, false
	}

	file := "report"
	typeStr := ""
	if hasDetails {
		if ft, ok := utils.FirstString(details, "file_type"); ok {
			typeStr = strings.ToLower(ft)
			file = ft
		}
	}
	return map[string]interface{}{
		"file":   file,
		"type":   typeStr,
		"report": m,
	}, true
}

// resolveOpinions берет список opinions как есть, иначе синтезирует
// по одному мнению на каждый элемент results
func resolveOpinions(m map[string]interface{}, results []interface{}) []models.Opinion {
	if ops, ok := utils.FirstSlice(m, "opinions"); ok {
		out := make([]models.Opinion, 0, len(ops))
		for _, o := range ops {
			om, ok := utils.AsMap(o)
			if !ok {
				continue
			}
			file, _ := utils.FirstString(om, "file", "filename")
			opinion, _ := utils.FirstString(om, "opinion", "verdict")
			if file == "" && opinion == "" {
				continue
			}
			out = append(out, models.Opinion{File: file, Opinion: opinion})
		}
		return out
	}

	out := make([]models.Opinion, 0, len(results))
	for _, r := range results {
		item, ok := utils.AsMap(r)
		if !ok {
			continue
		}
		file, _ := utils.FirstString(item, "file", "filename")
		opinion := itemVerdict(item)
		if opinion == "" {
			opinion = "No opinion"
		}
		out = append(out, models.Opinion{File: file, Opinion: opinion})
	}
	return out
}

// itemVerdict вердикт элемента results: во вложенном report либо на верхнем уровне
func itemVerdict(item map[string]interface{}) string {
	if v, ok := utils.DigString(item, "report", "verdict"); ok {
		return v
	}
	v, _ := utils.FirstString(item, "verdict")
	return v
}

func resolveEntities(m map[string]interface{}) []models.Entity {
	raw, _ := utils.FirstSlice(m, "entities")
	out := make([]models.Entity, 0, len(raw))
	for _, e := range raw {
		switch v := e.(type) {
		case string:
			if v != "" {
				out = append(out, models.Entity{Name: v})
			}
		case map[string]interface{}:
			name, _ := utils.FirstString(v, "name", "entity")
			typ, _ := utils.FirstString(v, "type", "category")
			if name != "" {
				out = append(out, models.Entity{Name: name, Type: typ})
			}
		}
	}
	return out
}

func resolveRelations(m map[string]interface{}) []models.Relation {
	raw, _ := utils.FirstSlice(m, "relations")
	out := make([]models.Relation, 0, len(raw))
	for _, r := range raw {
		rm, ok := utils.AsMap(r)
		if !ok {
			continue
		}
		source, _ := utils.FirstString(rm, "source", "from")
		relation, _ := utils.FirstString(rm, "relation", "rel")
		target, _ := utils.FirstString(rm, "target", "to")
		if source == "" && target == "" {
			continue
		}
		out = append(out, models.Relation{Source: source, Relation: relation, Target: target})
	}
	return out
}

// buildDetailedLog пересобирает текстовый журнал из нормализованных улик
// в порядке отправки. Это производный артефакт, не текст сервера;
// единственное исключение - пустой список улик, тогда журналом служит резюме.
func buildDetailedLog(report *models.CaseReport) string {
	if len(report.Evidence) == 0 {
		return report.Summary
	}

	var b strings.Builder
	for _, item := range report.Evidence {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", item.File, item.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}
