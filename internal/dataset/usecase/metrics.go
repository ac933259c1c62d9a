package usecase

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

var (
	// ingestTotal counts ingestion attempts by outcome.
	// Labels: "ok", "validation", "storage", "registry".
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gobacktest_dataset_ingest_total",
		Help: "Dataset ingestion attempts by result",
	}, []string{"result"})

	ingestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gobacktest_dataset_ingest_duration_seconds",
		Help:    "Dataset ingestion duration",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	ingestRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gobacktest_dataset_ingest_rows",
		Help:    "Data rows per ingested dataset",
		Buckets: prometheus.ExponentialBuckets(10, 10, 7),
	})
)

func observeIngest(start time.Time, ds entity.Dataset, err error) {
	ingestDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		ingestTotal.WithLabelValues("ok").Inc()
		ingestRows.Observe(float64(ds.RowCount))
		return
	}

	result := "unknown"
	var ierr *entity.IngestionError
	if errors.As(err, &ierr) {
		result = string(ierr.Stage)
	}
	ingestTotal.WithLabelValues(result).Inc()
}
