package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll outcomes.
const (
	PollIdle     = "idle"
	PollProgress = "progress"
	PollDispatch = "dispatch"
	PollError    = "error"
)

var (
	registerOnce sync.Once

	commandsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synctrack",
			Subsystem: "client",
			Name:      "commands_total",
			Help:      "Commands dispatched from the controller stream.",
		},
		[]string{"command"},
	)
	bytesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "synctrack",
			Subsystem: "client",
			Name:      "bytes_read_total",
			Help:      "Bytes consumed from the controller stream.",
		},
	)
	polls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synctrack",
			Subsystem: "client",
			Name:      "polls_total",
			Help:      "Poll calls by outcome.",
		},
		[]string{"outcome"},
	)
	requestsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synctrack",
			Subsystem: "client",
			Name:      "requests_sent_total",
			Help:      "Requests written to the controller.",
		},
		[]string{"command"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synctrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synctrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandsDispatched, bytesRead, polls, requestsSent, httpRequests, httpDuration)
	})
}

func RecordCommand(command string) {
	RegisterMetrics()
	commandsDispatched.WithLabelValues(command).Inc()
}

func RecordBytesRead(n int) {
	if n <= 0 {
		return
	}
	RegisterMetrics()
	bytesRead.Add(float64(n))
}

func RecordPoll(outcome string) {
	RegisterMetrics()
	polls.WithLabelValues(outcome).Inc()
}

func RecordRequestSent(command string) {
	RegisterMetrics()
	requestsSent.WithLabelValues(command).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
