package models

import (
	"errors"
	"fmt"
)

// ErrNoActiveCase чат вызван до первого успешного сканирования
var ErrNoActiveCase = errors.New("no active case: run a scan before asking questions")

// NetworkError транспортная ошибка при обращении к сервису анализа
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError сервис ответил, но ответ непригоден:
// не-2xx статус или тело, которое не парсится как JSON
type ServerError struct {
	Endpoint string
	Status   int
	Reason   string
}

func (e *ServerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("server error from %s: status %d: %s", e.Endpoint, e.Status, e.Reason)
	}
	return fmt.Sprintf("server error from %s: %s", e.Endpoint, e.Reason)
}
