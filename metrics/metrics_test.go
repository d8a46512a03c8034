package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	r := NewRegistry()
	r.ObserveRun("alcohol", "ok", 12, 3, 0.5)
	r.ObserveRun("alcohol", "empty", 0, 0, 0.1)

	if got := testutil.ToFloat64(r.Runs.WithLabelValues("alcohol", "ok")); got != 1 {
		t.Fatalf("ok runs: want 1, got %v", got)
	}
	if got := testutil.ToFloat64(r.GoodsReconciled); got != 12 {
		t.Fatalf("reconciled: want 12, got %v", got)
	}
	if got := testutil.ToFloat64(r.GoodsUnmatched); got != 0 {
		t.Fatalf("unmatched gauge should hold the last run: got %v", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.FilesExported.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "writeoff_files_exported_total 1") {
		t.Fatalf("metric not exposed:\n%s", body)
	}
}
