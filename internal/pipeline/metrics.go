package pipeline

import (
	"log/slog"
	"time"
)

// BatchMetrics accumulates counters over one inbox run.
type BatchMetrics struct {
	PDFs        int
	FailedPDFs  int
	Pages       int
	FailedPages int
	Items       int
	Products    int
	Started     time.Time
}

func newBatchMetrics() *BatchMetrics {
	return &BatchMetrics{Started: time.Now()}
}

func (m *BatchMetrics) log(logger *slog.Logger) {
	logger.Info("pipeline.batch.done",
		"pdfs", m.PDFs,
		"failed_pdfs", m.FailedPDFs,
		"pages", m.Pages,
		"failed_pages", m.FailedPages,
		"items", m.Items,
		"products", m.Products,
		"elapsed_ms", time.Since(m.Started).Milliseconds(),
	)
}
