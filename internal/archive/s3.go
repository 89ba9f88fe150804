package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ForensightLabs/forensight-console/internal/config"
	"github.com/ForensightLabs/forensight-console/internal/models"
)

// Archiver складывает улики завершенного дела в S3-совместимое хранилище.
// Архивирование best-effort: сбой логируется и никогда не валит скан.
type Archiver struct {
	client *minio.Client
	bucket string
	region string

	initOnce sync.Once
	initErr  error
}

// NewArchiver создает архиватор по конфигурации
func NewArchiver(cfg config.ArchiveConfig) (*Archiver, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Archiver{
		client: client,
		bucket: bucket,
		region: region,
	}, nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

// ArchiveBatch загружает все артефакты батча под префиксом дела
func (a *Archiver) ArchiveBatch(ctx context.Context, caseID string, batch *models.ArtifactBatch) {
	if err := a.ensureBucket(ctx); err != nil {
		log.Printf("⚠️ Архив %s: bucket недоступен: %v", caseID, err)
		return
	}

	for _, art := range batch.Artifacts() {
		key := caseID + "/" + art.Name
		_, err := a.client.PutObject(
			ctx, a.bucket, key,
			bytes.NewReader(art.Content), int64(len(art.Content)),
			minio.PutObjectOptions{},
		)
		if err != nil {
			log.Printf("⚠️ Архив %s: не удалось загрузить %s: %v", caseID, art.Name, err)
			continue
		}
	}
	log.Printf("📦 Улики дела %s заархивированы (%d файлов)", caseID, batch.Len())
}
