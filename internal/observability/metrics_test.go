package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(commandsDispatched.WithLabelValues("SET_ROW"))
	RecordCommand("SET_ROW")
	if got := testutil.ToFloat64(commandsDispatched.WithLabelValues("SET_ROW")); got != before+1 {
		t.Fatalf("commands_total not incremented: %v -> %v", before, got)
	}

	readBefore := testutil.ToFloat64(bytesRead)
	RecordBytesRead(14)
	RecordBytesRead(0)
	if got := testutil.ToFloat64(bytesRead); got != readBefore+14 {
		t.Fatalf("bytes_read_total mismatch: %v -> %v", readBefore, got)
	}

	RecordPoll(PollIdle)
	RecordRequestSent("GET_TRACK")
	RecordHTTPRequest("synctrack", "GET", "/state", 200, 3*time.Millisecond)

	log.Debug().Msg("observability/metrics: registration idempotent and recording paths executed")
}
