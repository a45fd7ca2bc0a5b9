package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_messages_total",
			Help: "Total number of handled chat messages by dialogue step",
		},
		[]string{"step"},
	)

	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_renders_total",
			Help: "Total number of itinerary renders by outcome",
		},
		[]string{"status"},
	)

	renderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_render_duration_seconds",
			Help:    "Itinerary render and store duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	renderPages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_render_pages",
			Help:    "Number of pages in rendered itineraries",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	artifactsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "itinerary_artifacts_pruned_total",
			Help: "Total number of expired itinerary documents removed",
		},
	)

	initOnce sync.Once
)

// Init регистрирует метрики в реестре по умолчанию
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			messagesTotal,
			rendersTotal,
			renderDuration,
			renderPages,
			artifactsPruned,
		)
	})
}

// Handler HTTP-обработчик для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordMessage учитывает сообщение, обработанное на шаге step
func RecordMessage(step string) {
	messagesTotal.WithLabelValues(step).Inc()
}

// RecordRender учитывает попытку формирования документа
func RecordRender(err error, pages int, duration time.Duration) {
	if err != nil {
		rendersTotal.WithLabelValues("error").Inc()
		return
	}
	rendersTotal.WithLabelValues("ok").Inc()
	renderDuration.Observe(duration.Seconds())
	renderPages.Observe(float64(pages))
}

func RecordPruned(n int) {
	artifactsPruned.Add(float64(n))
}
