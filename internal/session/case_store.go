package session

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ForensightLabs/forensight-console/internal/models"
)

// defaultCaseStoreSize сколько завершенных дел держим в памяти
const defaultCaseStoreSize = 128

// CaseStore ограниченное хранилище завершенных дел.
// Дела живут только в памяти на время работы консоли; старые
// вытесняются по LRU.
type CaseStore struct {
	cache *lru.Cache[string, *models.CaseReport]
}

// NewCaseStore создает хранилище на size дел
func NewCaseStore(size int) (*CaseStore, error) {
	if size <= 0 {
		size = defaultCaseStoreSize
	}
	cache, err := lru.New[string, *models.CaseReport](size)
	if err != nil {
		return nil, err
	}
	return &CaseStore{cache: cache}, nil
}

// Add сохраняет завершенное дело
func (s *CaseStore) Add(report *models.CaseReport) {
	if report == nil || report.CaseID == "" {
		return
	}
	s.cache.Add(report.CaseID, report)
}

// Get возвращает дело по идентификатору
func (s *CaseStore) Get(caseID string) (*models.CaseReport, bool) {
	return s.cache.Get(caseID)
}

// Keys идентификаторы дел от старых к новым
func (s *CaseStore) Keys() []string {
	return s.cache.Keys()
}

// Len количество дел в хранилище
func (s *CaseStore) Len() int {
	return s.cache.Len()
}
