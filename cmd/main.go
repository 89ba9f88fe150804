package main

import (
	"log"

	"github.com/ForensightLabs/forensight-console/internal/archive"
	"github.com/ForensightLabs/forensight-console/internal/broker"
	"github.com/ForensightLabs/forensight-console/internal/chat"
	"github.com/ForensightLabs/forensight-console/internal/config"
	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/progress"
	"github.com/ForensightLabs/forensight-console/internal/session"
	"github.com/ForensightLabs/forensight-console/internal/submit"
	"github.com/ForensightLabs/forensight-console/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	events := broker.New[models.Event](256)

	chatSession := chat.NewSession(cfg.Service.ChatURL, cfg.Service.Timeout)
	chatSession.SetPublisher(func(ex models.ChatExchange) {
		events.Publish(models.TopicChat, models.Event{Type: "chat", Data: ex})
	})

	cases, err := session.NewCaseStore(128)
	if err != nil {
		log.Fatalf("Failed to create case store: %v", err)
	}
	sess := session.New(chatSession, cases)

	estimator := progress.NewEstimator(
		cfg.Progress.Tick, cfg.Progress.Timeout,
		func(percent int) {
			events.Publish(models.TopicProgress, models.Event{
				Type: "progress",
				Data: models.ProgressEvent{Percent: percent},
			})
		},
	)

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		archiver, err = archive.NewArchiver(cfg.Archive)
		if err != nil {
			log.Printf("⚠️ Архив улик недоступен: %v, работаем без него", err)
			archiver = nil
		}
	}

	client := submit.NewClient(cfg.Service)
	orch := submit.NewOrchestrator(client, estimator, sess, archiver, events)

	srv := web.NewServer(cfg, sess, orch, events)
	log.Fatal(srv.Start())
}
