package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/utils"
)

const maxReplyBytes = 4 << 20

// Session диалог, привязанный к активному делу.
// Идентификатор дела выставляется только после успешного сканирования;
// транскрипт append-only и никогда не переписывается.
type Session struct {
	chatURL    string
	httpClient *http.Client
	publish    func(models.ChatExchange)

	mu         sync.Mutex
	caseID     string
	transcript []models.ChatExchange
}

// NewSession создает чат-сессию для endpoint'а чата сервиса анализа
func NewSession(chatURL string, timeout time.Duration) *Session {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Session{
		chatURL:    chatURL,
		httpClient: &http.Client{Timeout: timeout},
		publish:    func(models.ChatExchange) {},
	}
}

// SetPublisher подключает доставку реплик на дашборд (websocket)
func (s *Session) SetPublisher(fn func(models.ChatExchange)) {
	if fn != nil {
		s.publish = fn
	}
}

// SetCase привязывает сессию к делу; вызывается ровно один раз
// на каждый успешный скан, заменяя предыдущее дело целиком
func (s *Session) SetCase(caseID string) {
	s.mu.Lock()
	s.caseID = caseID
	s.mu.Unlock()
}

// CaseID текущее дело; пустая строка = дела еще нет
func (s *Session) CaseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caseID
}

// Transcript копия транскрипта в порядке отображения
func (s *Session) Transcript() []models.ChatExchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatExchange, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Ask задает вопрос по активному делу.
// Без активного дела - системная реплика с ошибкой и ноль сетевых вызовов.
// Любой исход заканчивается валидной репликой, ошибки наружу не выходят.
func (s *Session) Ask(ctx context.Context, text string) models.ChatExchange {
	s.append(models.SenderUser, text, nil)

	caseID := s.CaseID()
	if caseID == "" {
		return s.append(models.SenderSystem, models.ErrNoActiveCase.Error(), nil)
	}

	body, err := s.query(ctx, caseID, text)
	if err != nil {
		log.Printf("❌ Чат по делу %s: %v", caseID, err)
		return s.append(models.SenderSystem, "Chat service unavailable: "+err.Error(), nil)
	}

	// Поле ответа нестабильно между версиями сервиса
	if reply, ok := utils.FirstString(body, "response", "answer"); ok {
		agent := s.append(models.SenderAgent, reply, nil)
		if sources := stringList(body["sources"]); len(sources) > 0 {
			s.append(models.SenderSystem, "Sources: "+strings.Join(sources, ", "), sources)
		}
		return agent
	}

	if errMsg, ok := utils.FirstString(body, "error"); ok {
		return s.append(models.SenderSystem, "Analysis service error: "+errMsg, nil)
	}

	return s.append(models.SenderSystem, "The service returned no answer.", nil)
}

// query выполняет запрос чата: POST {query, case_id}
func (s *Session) query(ctx context.Context, caseID, text string) (map[string]interface{}, error) {
	payload, err := json.Marshal(map[string]string{
		"query":   text,
		"case_id": caseID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.chatURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Endpoint: s.chatURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, &models.NetworkError{Endpoint: s.chatURL, Err: err}
	}

	// Сервис кладет {"error": ...} и в не-2xx ответы, поэтому тело
	// парсим независимо от статуса
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &models.ServerError{
			Endpoint: s.chatURL,
			Status:   resp.StatusCode,
			Reason:   "unparseable JSON body",
		}
	}
	return body, nil
}

// append добавляет реплику в транскрипт и отдает ее слушателям
func (s *Session) append(sender models.Sender, text string, sources []string) models.ChatExchange {
	ex := models.ChatExchange{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Sources:   sources,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, ex)
	s.mu.Unlock()

	s.publish(ex)
	return ex
}

func stringList(v interface{}) []string {
	list, ok := utils.AsSlice(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
