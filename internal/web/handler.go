package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/utils"
)

// handleScan принимает multipart батч улик и запускает полный цикл
// сканирования. Ответ всегда success: отказ обоих endpoint'ов сервиса
// превращается в degraded-отчет, а не в ошибку.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files provided")
		return
	}

	batch := models.NewArtifactBatch(r.FormValue("instructions"))
	skipped := make([]string, 0)

	for _, fh := range files {
		if skip, reason := s.filter.ShouldSkipWithReason(fh.Filename, fh.Size); skip {
			log.Printf("⚠️ Файл %s отброшен: %s", fh.Filename, reason)
			skipped = append(skipped, fh.Filename)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			log.Printf("⚠️ Файл %s не открылся: %v", fh.Filename, err)
			skipped = append(skipped, fh.Filename)
			continue
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Printf("⚠️ Файл %s не прочитался: %v", fh.Filename, err)
			skipped = append(skipped, fh.Filename)
			continue
		}

		added := batch.Add(&models.Artifact{
			Name:      fh.Filename,
			SizeBytes: int64(len(content)),
			Category:  utils.ClassifyMedia(fh.Filename),
			Content:   content,
		})
		if !added {
			// дубликат по (имя, размер)
			skipped = append(skipped, fh.Filename)
		}
	}

	if batch.Len() == 0 {
		writeJSONError(w, http.StatusBadRequest, "no valid files in batch")
		return
	}

	report := s.orch.Submit(r.Context(), batch)

	writeJSON(w, map[string]interface{}{
		"status":  "success",
		"report":  report,
		"skipped": skipped,
	})
}

// handleChat вопрос по активному делу
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}

	exchange := s.sess.Chat().Ask(r.Context(), req.Query)
	writeJSON(w, map[string]interface{}{"exchange": exchange})
}

// handleSession срез состояния сессии
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.sess.Snapshot())
}

// handleGetCases идентификаторы завершенных дел
func (s *Server) handleGetCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]interface{}{"cases": s.sess.Cases().Keys()})
}

// handleGetCase дело по идентификатору: /api/case/{id}
func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/case/")
	report, ok := s.sess.Cases().Get(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "case not found")
		return
	}
	writeJSON(w, report)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
