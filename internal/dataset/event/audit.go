package event

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gobacktest_dataset_events_total",
	Help: "Dataset registry events handled, by type",
}, []string{"type"})

// AuditHandler records every committed registry change in the log.
type AuditHandler struct{}

func (AuditHandler) Handle(ctx context.Context, event entity.DatasetEvent) error {
	if event.Type == "" {
		return errors.New("missing event type")
	}

	eventsTotal.WithLabelValues(string(event.Type)).Inc()

	slog.InfoContext(ctx, "dataset audit",
		"event_id", event.EventID,
		"type", event.Type,
		"filename", event.Dataset.Filename,
		"symbol", event.Dataset.Symbol,
		"row_count", event.Dataset.RowCount,
		"size_bytes", event.Dataset.SizeBytes,
	)
	return nil
}
