package session

import (
	"sync"

	"github.com/ForensightLabs/forensight-console/internal/chat"
	"github.com/ForensightLabs/forensight-console/internal/models"
)

// Session состояние одной консольной сессии: ожидающий батч, активное дело
// и чат. Единственный владелец этого состояния; каждое поле заменяется
// целиком на границах сканирования и никогда не мутируется частично.
type Session struct {
	mu      sync.RWMutex
	scanGen uint64
	pending *models.ArtifactBatch
	active  *models.CaseReport

	chat  *chat.Session
	cases *CaseStore
}

// Snapshot срез состояния сессии для дашборда
type Snapshot struct {
	CaseID       string                `json:"case_id,omitempty"`
	ActiveCase   *models.CaseReport    `json:"active_case,omitempty"`
	PendingFiles int                   `json:"pending_files"`
	Transcript   []models.ChatExchange `json:"transcript"`
}

// New создает сессию
func New(chatSession *chat.Session, cases *CaseStore) *Session {
	return &Session{
		chat:  chatSession,
		cases: cases,
	}
}

// BeginScan регистрирует новый скан и возвращает его поколение.
// Предыдущий незавершенный скан этим вытесняется: его поздний результат
// будет отброшен в CompleteScan.
func (s *Session) BeginScan(batch *models.ArtifactBatch) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanGen++
	s.pending = batch
	return s.scanGen
}

// CompleteScan фиксирует результат скана: чистит ожидающий батч,
// заменяет активное дело и перепривязывает чат. Для вытесненного
// поколения - no-op, устаревший ответ отбрасывается.
func (s *Session) CompleteScan(gen uint64, report *models.CaseReport) bool {
	s.mu.Lock()
	if gen != s.scanGen {
		s.mu.Unlock()
		return false
	}
	s.pending = nil
	s.active = report
	s.mu.Unlock()

	s.chat.SetCase(report.CaseID)
	s.cases.Add(report)
	return true
}

// ActiveCase текущее активное дело (nil до первого успешного скана)
func (s *Session) ActiveCase() *models.CaseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Chat чат-сессия
func (s *Session) Chat() *chat.Session {
	return s.chat
}

// Cases хранилище завершенных дел
func (s *Session) Cases() *CaseStore {
	return s.cases
}

// Snapshot собирает срез состояния для API
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	active := s.active
	pending := 0
	if s.pending != nil {
		pending = s.pending.Len()
	}
	s.mu.RUnlock()

	snap := Snapshot{
		ActiveCase:   active,
		PendingFiles: pending,
		Transcript:   s.chat.Transcript(),
	}
	if active != nil {
		snap.CaseID = active.CaseID
	}
	return snap
}
