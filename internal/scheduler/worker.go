package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"receptionist_backend/platform/logger"
)

// Worker processes queued tasks. Delivery failures return errors so asynq
// retries with backoff.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	webhookURL string
	httpc      *http.Client
	log        *logger.Logger
}

// NewWorker creates the asynq worker.
func NewWorker(redisURL, webhookURL string, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
	})

	w := &Worker{
		server:     server,
		mux:        asynq.NewServeMux(),
		webhookURL: webhookURL,
		httpc:      &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
	w.mux.HandleFunc(TaskLeadWebhookForward, w.handleLeadWebhookForward)

	return w, nil
}

// Run blocks processing tasks until Shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleLeadWebhookForward(ctx context.Context, task *asynq.Task) error {
	if w.webhookURL == "" {
		return nil
	}

	payload, err := ParseLeadWebhookForwardPayload(task)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("forward lead webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("lead webhook returned status %d", resp.StatusCode)
	}

	w.log.Info("lead webhook forwarded", "lead_id", payload.LeadID, "status", resp.StatusCode)
	return nil
}
