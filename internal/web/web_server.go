package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ForensightLabs/forensight-console/internal/broker"
	"github.com/ForensightLabs/forensight-console/internal/config"
	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/session"
	"github.com/ForensightLabs/forensight-console/internal/submit"
	"github.com/ForensightLabs/forensight-console/internal/utils"
	"github.com/ForensightLabs/forensight-console/internal/websocket"
)

// Server HTTP граница для дашборда: принимает батчи улик и вопросы чата,
// отдает только данные (CaseReport, реплики) - никакой разметки
type Server struct {
	config *config.Config
	sess   *session.Session
	orch   *submit.Orchestrator
	filter *utils.ArtifactFilter
	hub    *websocket.Hub
	events *broker.Broker[models.Event]
	server *http.Server
}

func NewServer(
	cfg *config.Config,
	sess *session.Session,
	orch *submit.Orchestrator,
	events *broker.Broker[models.Event],
) *Server {
	hub := websocket.NewHub()
	go hub.Run()

	s := &Server{
		config: cfg,
		sess:   sess,
		orch:   orch,
		filter: utils.NewArtifactFilter(cfg.Service.MaxUploadBytes),
		hub:    hub,
		events: events,
	}
	go s.pumpEvents()
	return s
}

// pumpTopics топики брокера, транслируемые на дашборд
var pumpTopics = []string{models.TopicProgress, models.TopicReport, models.TopicChat}

// pumpEvents прокачивает события ядра из брокера в websocket-хаб.
// Горутины живут до закрытия топиков в Stop.
func (s *Server) pumpEvents() {
	for _, topic := range pumpTopics {
		go func(topic string) {
			for ev := range s.events.Subscribe(topic) {
				s.hub.Broadcast(ev.Type, ev.Data)
			}
		}(topic)
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/cases", s.handleGetCases)
	mux.HandleFunc("/api/case/", s.handleGetCase)

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.hub.ServeWS)

	// Health check
	mux.HandleFunc(
		"/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok","service":"forensight-console"}`))
		},
	)

	s.server = &http.Server{
		Addr:    s.config.Web.ListenAddr,
		Handler: corsMiddleware(mux),
		// Скан ждет удаленный анализ, таймауты щедрые
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Minute,
	}

	log.Printf("📊 Forensight console на %s", s.config.Web.ListenAddr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	for _, topic := range pumpTopics {
		s.events.CloseTopic(topic)
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware разрешает cross-origin запросы с фронтенда
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
