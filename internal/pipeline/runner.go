package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medvision/internal/aiclient"
	"medvision/internal/domain"
)

// Observer receives a progress snapshot after every batch transition.
type Observer func(domain.ProcessingStatus)

// Runner drives batches sequentially through the AI client: one request in
// flight, a fixed pause between requests, per-batch failures isolated so
// the run always reaches the end of the list.
type Runner struct {
	analyzer aiclient.Analyzer
	delay    time.Duration
	log      *zap.Logger
}

func NewRunner(analyzer aiclient.Analyzer, delay time.Duration, log *zap.Logger) *Runner {
	return &Runner{analyzer: analyzer, delay: delay, log: log}
}

// Run processes batches in place, strictly in order. The delay before each
// batch after the first is unconditional; it exists to stay under upstream
// rate limits, not to back off on errors. A failing batch is recorded and
// skipped over, never fatal. The final snapshot is pinned to 100 percent
// regardless of how many batches failed.
func (r *Runner) Run(ctx context.Context, batches []domain.ImageBatch, systemPrompt string, observer Observer) {
	totalImages := CountImages(batches)
	processed := 0

	for i := range batches {
		if i > 0 {
			r.pause(ctx)
		}

		r.processBatch(ctx, &batches[i], systemPrompt)

		processed += len(batches[i].Images)
		r.emit(observer, domain.NewProcessingStatus(
			totalImages, processed, batches[i].Index, len(batches),
			domain.StateProcessing,
		))
	}

	final := domain.NewProcessingStatus(
		totalImages, processed, len(batches), len(batches),
		Outcome(batches).WireState(),
	)
	final.Progress = 100
	r.emit(observer, final)
}

func (r *Runner) processBatch(ctx context.Context, batch *domain.ImageBatch, systemPrompt string) {
	batch.Status = domain.BatchProcessing

	payloads := analyzablePayloads(batch.Images)
	if len(payloads) == 0 {
		r.fail(batch, "no analyzable images in batch")
		return
	}

	prompt := fmt.Sprintf("Analyze these %d medical images and describe any notable findings.", len(payloads))

	result, err := r.analyzer.AnalyzeBatch(ctx, payloads, prompt, systemPrompt)
	if err != nil {
		r.log.Warn("Batch analysis failed",
			zap.Int("batch", batch.Index),
			zap.Error(err))
		r.fail(batch, err.Error())
		return
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		r.fail(batch, "failed to serialize analysis result: "+err.Error())
		return
	}

	now := time.Now()
	batch.Response = string(serialized)
	batch.Status = domain.BatchCompleted
	batch.CompletedAt = &now

	r.log.Info("Batch completed",
		zap.Int("batch", batch.Index),
		zap.Int("images", len(batch.Images)))
}

func (r *Runner) fail(batch *domain.ImageBatch, msg string) {
	now := time.Now()
	batch.Status = domain.BatchFailed
	batch.Error = msg
	batch.CompletedAt = &now
}

func (r *Runner) pause(ctx context.Context) {
	if r.delay <= 0 {
		return
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (r *Runner) emit(observer Observer, status domain.ProcessingStatus) {
	if observer != nil {
		observer(status)
	}
}

func analyzablePayloads(images []domain.UploadedImage) []string {
	var payloads []string
	for _, img := range images {
		if img.Base64Payload != "" {
			payloads = append(payloads, img.Base64Payload)
		}
	}
	return payloads
}
