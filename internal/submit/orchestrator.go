package submit

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ForensightLabs/forensight-console/internal/archive"
	"github.com/ForensightLabs/forensight-console/internal/broker"
	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/normalize"
	"github.com/ForensightLabs/forensight-console/internal/progress"
	"github.com/ForensightLabs/forensight-console/internal/session"
)

// Orchestrator проводит один скан от батча до канонического отчета.
// Эскалация primary → fallback → симуляция; за эту границу ошибки
// не выходят - любой исход заканчивается валидным CaseReport.
type Orchestrator struct {
	client    *Client
	estimator *progress.Estimator
	sess      *session.Session
	archiver  *archive.Archiver // может быть nil
	events    *broker.Broker[models.Event]
}

// NewOrchestrator собирает оркестратор
func NewOrchestrator(
	client *Client,
	estimator *progress.Estimator,
	sess *session.Session,
	archiver *archive.Archiver,
	events *broker.Broker[models.Event],
) *Orchestrator {
	return &Orchestrator{
		client:    client,
		estimator: estimator,
		sess:      sess,
		archiver:  archiver,
		events:    events,
	}
}

// Submit выполняет полный цикл сканирования.
// Эстиматор прогресса бежит конкурентно с сетевой эскалацией; отчет
// не уходит в нормализацию, пока не известен сетевой исход И прогресс
// не зафиксирован на ровно 100.
func (o *Orchestrator) Submit(ctx context.Context, batch *models.ArtifactBatch) *models.CaseReport {
	batch.Seal()
	scanGen := o.sess.BeginScan(batch)
	estGen := o.estimator.Begin()

	log.Printf("⏳ Скан #%d: %d файлов", scanGen, batch.Len())

	var raw models.RawReport
	var degraded bool

	estCtx, stopEstimator := context.WithCancel(ctx)
	defer stopEstimator()

	var g errgroup.Group
	g.Go(func() error {
		o.estimator.Run(estCtx, estGen)
		return nil
	})
	g.Go(func() error {
		// Исход известен - эстиматору больше нечего оценивать
		defer stopEstimator()
		raw, degraded = o.escalate(ctx, batch)
		return nil
	})
	_ = g.Wait()

	o.estimator.Finalize(estGen)

	report := normalize.Normalize(raw)
	report.Degraded = degraded
	report.CreatedAt = time.Now()

	if o.archiver != nil && !degraded {
		go o.archiver.ArchiveBatch(context.Background(), report.CaseID, batch)
	}

	if !o.sess.CompleteScan(scanGen, report) {
		log.Printf("⚠️ Скан #%d вытеснен более новым, результат отброшен", scanGen)
		return report
	}

	if o.events != nil {
		o.events.Publish(models.TopicReport, models.Event{Type: "report", Data: report})
	}
	log.Printf("✅ Скан #%d завершен: дело %s, улик %d, degraded=%v",
		scanGen, report.CaseID, len(report.Evidence), report.Degraded)
	return report
}

// escalate пробует primary, затем legacy fallback, затем локальную симуляцию.
// Порядок фиксированный; true во втором значении = отчет симулированный.
func (o *Orchestrator) escalate(ctx context.Context, batch *models.ArtifactBatch) (models.RawReport, bool) {
	raw, err := o.client.SubmitPrimary(ctx, batch)
	if err == nil {
		return raw, false
	}
	log.Printf("⚠️ Primary endpoint недоступен: %v, пробуем fallback", err)

	raw, err = o.client.SubmitFallback(ctx, batch)
	if err == nil {
		return raw, false
	}
	log.Printf("❌ Fallback endpoint тоже недоступен: %v, переходим на симуляцию", err)

	return Simulate(batch), true
}
