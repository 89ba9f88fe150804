package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForensightLabs/forensight-console/internal/models"
)

func TestNormalizeFullReport(t *testing.T) {
	raw := models.RawReport{
		"session_id":    "CASE-42",
		"final_summary": "Two artifacts analyzed, one tampered.",
		"proof_hash":    "abc123",
		"blockchain_tx": map[string]interface{}{"hash": "0xdeadbeef"},
		"results": []interface{}{
			map[string]interface{}{
				"file": "photo.png",
				"type": "image",
				"report": map[string]interface{}{
					"verdict":             "Tampered",
					"tamperingPercentage": 87.5,
					"explanation":         "Clone stamp traces near the timestamp.",
				},
			},
			map[string]interface{}{
				"file": "statement.pdf",
				"type": "document",
				"report": map[string]interface{}{
					"verdict": "Clean",
					"misinformationAnalysis": map[string]interface{}{
						"dangerScore": 12.0,
						"flags":       []interface{}{},
					},
					"summary": "Routine statement.",
				},
			},
		},
		"entities": []interface{}{
			"John Doe",
			map[string]interface{}{"name": "Acme Corp", "type": "organization"},
		},
		"relations": []interface{}{
			map[string]interface{}{"source": "John Doe", "relation": "works_at", "target": "Acme Corp"},
		},
	}

	report := Normalize(raw)

	assert.Equal(t, "CASE-42", report.CaseID)
	assert.Equal(t, "Two artifacts analyzed, one tampered.", report.Summary)
	assert.Equal(t, "abc123", report.ProofHash)
	require.NotNil(t, report.BlockchainTx)
	assert.Equal(t, "0xdeadbeef", report.BlockchainTx.Hash)

	require.Len(t, report.Evidence, 2)

	img := report.Evidence[0]
	assert.Equal(t, models.EvidenceImage, img.Kind)
	assert.True(t, img.Flagged, "tampering 87.5 is above the flag threshold")
	require.NotNil(t, img.Image)
	assert.Equal(t, 87.5, img.Image.TamperScore)
	assert.Equal(t, "Tampered", img.Image.Verdict)

	doc := report.Evidence[1]
	assert.Equal(t, models.EvidenceDocument, doc.Kind)
	assert.False(t, doc.Flagged, "danger 12 is below the flag threshold")
	require.NotNil(t, doc.Text)
	assert.Equal(t, "Routine statement.", doc.Text.Summary)

	// Мнений в ответе нет - синтезируем по вердиктам
	require.Len(t, report.Opinions, 2)
	assert.Equal(t, models.Opinion{File: "photo.png", Opinion: "Tampered"}, report.Opinions[0])

	require.Len(t, report.Entities, 2)
	assert.Equal(t, models.Entity{Name: "John Doe"}, report.Entities[0])
	assert.Equal(t, models.Entity{Name: "Acme Corp", Type: "organization"}, report.Entities[1])

	require.Len(t, report.Relations, 1)
	assert.Equal(t, "works_at", report.Relations[0].Relation)

	assert.Contains(t, report.DetailedLog, "--- photo.png ---")
	assert.Contains(t, report.DetailedLog, "--- statement.pdf ---")
	assert.False(t, strings.HasSuffix(report.DetailedLog, "\n"))
}

func TestNormalizeDefaults(t *testing.T) {
	report := Normalize(models.RawReport{})

	assert.Equal(t, "global", report.CaseID)
	assert.Equal(t, "Analysis finished. The service did not provide a summary.", report.Summary)
	assert.Nil(t, report.BlockchainTx)
	assert.Empty(t, report.Evidence)
	assert.Empty(t, report.Opinions)
	// Пустой отчет: журналом служит резюме
	assert.Equal(t, report.Summary, report.DetailedLog)
}

func TestNormalizeNilSafe(t *testing.T) {
	report := Normalize(nil)
	require.NotNil(t, report)
	assert.Equal(t, "global", report.CaseID)
	assert.NotNil(t, report.Evidence)
	assert.NotNil(t, report.Opinions)
}

func TestNormalizeVideoFlaggedOnAnyFakeFrames(t *testing.T) {
	mkRaw := func(ratio float64) models.RawReport {
		return models.RawReport{
			"results": []interface{}{
				map[string]interface{}{
					"file": "clip.mp4",
					"type": "video",
					"report": map[string]interface{}{
						"verdict": "Reviewed",
						"visual_analysis": map[string]interface{}{
							"fake_ratio_percent": ratio,
							"max_fake_score":     ratio,
						},
						"metadata": map[string]interface{}{"duration_sec": 42.0},
					},
				},
			},
		}
	}

	flagged := Normalize(mkRaw(0.3)).Evidence[0]
	assert.True(t, flagged.Flagged, "any fake frames flag the video")
	require.NotNil(t, flagged.Video)
	assert.Equal(t, 42.0, flagged.Video.DurationSec)

	clean := Normalize(mkRaw(0)).Evidence[0]
	assert.False(t, clean.Flagged, "zero fake ratio is clean")
}

func TestNormalizeVerificationTruncated(t *testing.T) {
	long := strings.Repeat("x", 250)
	raw := models.RawReport{
		"results": []interface{}{
			map[string]interface{}{
				"file": "speech.mp3",
				"type": "audio",
				"report": map[string]interface{}{
					"misinformationAnalysis": map[string]interface{}{
						"dangerScore": 77.0,
						"flags":       []interface{}{"claim-1", "claim-2"},
					},
					"factCheckAgent": map[string]interface{}{"verification_result": long},
					"transcript":     map[string]interface{}{"text": "transcribed speech"},
				},
			},
		},
	}

	item := Normalize(raw).Evidence[0]
	require.NotNil(t, item.Text)
	assert.Equal(t, strings.Repeat("x", 100)+"...", item.Text.Verification)
	assert.Equal(t, 2, item.Text.FlagCount)
	assert.True(t, item.Flagged)
	assert.Equal(t, "transcribed speech", item.Text.Summary)
}

func TestNormalizeOpinionsVerbatim(t *testing.T) {
	raw := models.RawReport{
		"opinions": []interface{}{
			map[string]interface{}{"file": "a.png", "opinion": "Likely authentic"},
		},
		"results": []interface{}{
			map[string]interface{}{"file": "a.png", "type": "image", "report": map[string]interface{}{}},
			map[string]interface{}{"file": "b.png", "type": "image", "report": map[string]interface{}{}},
		},
	}

	report := Normalize(raw)
	// Явный список мнений важнее синтеза из results
	require.Len(t, report.Opinions, 1)
	assert.Equal(t, "Likely authentic", report.Opinions[0].Opinion)
}

func TestNormalizeOpinionFallback(t *testing.T) {
	raw := models.RawReport{
		"results": []interface{}{
			map[string]interface{}{"file": "a.png", "type": "image", "report": map[string]interface{}{}},
		},
	}
	report := Normalize(raw)
	require.Len(t, report.Opinions, 1)
	assert.Equal(t, "No opinion", report.Opinions[0].Opinion)
}

func TestNormalizeLegacySingleReport(t *testing.T) {
	raw := models.RawReport{
		"verdict": "clear",
		"details": map[string]interface{}{"file_type": "Image"},
	}

	report := Normalize(raw)
	require.Len(t, report.Evidence, 1)
	assert.Equal(t, models.EvidenceImage, report.Evidence[0].Kind)
	assert.Contains(t, report.Evidence[0].Summary, "clear")
}

func TestNormalizeResultError(t *testing.T) {
	raw := models.RawReport{
		"results": []interface{}{
			map[string]interface{}{
				"file":  "broken.png",
				"type":  "image",
				"error": "agent crashed",
			},
		},
	}

	item := Normalize(raw).Evidence[0]
	assert.Equal(t, models.EvidenceRaw, item.Kind)
	assert.Equal(t, "Analysis failed: agent crashed", item.Summary)
}

func TestNormalizeUnknownTypeBoundedDump(t *testing.T) {
	raw := models.RawReport{
		"results": []interface{}{
			map[string]interface{}{
				"file": "blob.bin",
				"type": "hologram",
				"report": map[string]interface{}{
					"payload": strings.Repeat("z", 1000),
				},
			},
		},
	}

	item := Normalize(raw).Evidence[0]
	assert.Equal(t, models.EvidenceRaw, item.Kind)
	assert.LessOrEqual(t, len(item.RawDump), 403) // 400 + "..."
}

func TestNormalizeBlockchainTxError(t *testing.T) {
	raw := models.RawReport{
		"blockchain_tx": map[string]interface{}{"error": "chain unreachable"},
	}
	report := Normalize(raw)
	require.NotNil(t, report.BlockchainTx)
	assert.Equal(t, "chain unreachable", report.BlockchainTx.Error)
	assert.Empty(t, report.BlockchainTx.Hash)
}

// Normalize(Normalize(x)) == Normalize(x): канонический отчет, прогнанный
// через нормализатор повторно, не меняется.
func TestNormalizeIdempotent(t *testing.T) {
	raw := models.RawReport{
		"session_id":    "CASE-7",
		"final_summary": "done",
		"results": []interface{}{
			map[string]interface{}{
				"file": "photo.png",
				"type": "image",
				"report": map[string]interface{}{
					"verdict":             "Tampered",
					"tamperingPercentage": 60.0,
				},
			},
		},
	}

	first := Normalize(raw)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	var roundTrip map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &roundTrip))

	second := Normalize(models.RawReport(roundTrip))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second normalization changed the report (-first +second):\n%s", diff)
	}
}
