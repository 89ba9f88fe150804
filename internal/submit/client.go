package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ForensightLabs/forensight-console/internal/config"
	"github.com/ForensightLabs/forensight-console/internal/models"
	"github.com/ForensightLabs/forensight-console/internal/utils"
)

// maxResponseBytes ограничение на размер читаемого ответа сервиса
const maxResponseBytes = 16 << 20

// Client HTTP клиент сервиса анализа: primary endpoint + legacy fallback
type Client struct {
	httpClient *http.Client
	cfg        config.ServiceConfig
}

// NewClient создает клиент сервиса анализа
func NewClient(cfg config.ServiceConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// SubmitPrimary отправляет батч на основной endpoint (files + instructions).
// Успешный ответ может быть один или два раза завернут в meta_report -
// разворачиваем не больше двух раз.
func (c *Client) SubmitPrimary(ctx context.Context, batch *models.ArtifactBatch) (models.RawReport, error) {
	body, err := c.postMultipart(ctx, c.cfg.PrimaryURL, batch, true)
	if err != nil {
		return nil, err
	}

	// Обертка meta_report может рекурсивно вкладываться сама в себя
	for i := 0; i < 2; i++ {
		inner, ok := utils.AsMap(body["meta_report"])
		if !ok {
			break
		}
		body = inner
	}
	return models.RawReport(body), nil
}

// SubmitFallback отправляет батч на legacy endpoint (только files;
// инструкции этот endpoint игнорирует). Отчет лежит в поле report
// либо прямо в корне тела.
func (c *Client) SubmitFallback(ctx context.Context, batch *models.ArtifactBatch) (models.RawReport, error) {
	body, err := c.postMultipart(ctx, c.cfg.FallbackURL, batch, false)
	if err != nil {
		return nil, err
	}

	if inner, ok := utils.AsMap(body["report"]); ok {
		return models.RawReport(inner), nil
	}
	return models.RawReport(body), nil
}

// postMultipart выполняет multipart POST и возвращает распарсенное JSON тело.
// Успех = 2xx статус И парсящийся JSON; все остальное - ошибка для эскалации.
func (c *Client) postMultipart(
	ctx context.Context, endpoint string, batch *models.ArtifactBatch, withInstructions bool,
) (map[string]interface{}, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, a := range batch.Artifacts() {
		part, err := writer.CreateFormFile("files", a.Name)
		if err != nil {
			return nil, fmt.Errorf("building multipart form: %w", err)
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, fmt.Errorf("writing artifact %s: %w", a.Name, err)
		}
	}
	if withInstructions {
		if err := writer.WriteField("instructions", batch.Instructions); err != nil {
			return nil, fmt.Errorf("writing instructions field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &models.NetworkError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.ServerError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Reason:   utils.TruncateString(string(data), 200),
		}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &models.ServerError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Reason:   "unparseable JSON body: " + err.Error(),
		}
	}
	return body, nil
}
