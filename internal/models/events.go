package models

// Топики брокера событий для live-обновлений дашборда
const (
	TopicProgress = "progress"
	TopicReport   = "report"
	TopicChat     = "chat"
)

// Event событие для websocket-хаба
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ProgressEvent текущая оценка прогресса сканирования [0,100]
type ProgressEvent struct {
	Percent int `json:"percent"`
}
