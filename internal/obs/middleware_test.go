package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusRecorderDefaultsTo200(t *testing.T) {
	rec := NewStatusRecorder(httptest.NewRecorder())
	if rec.Status() != http.StatusOK {
		t.Fatalf("expected default status 200, got %d", rec.Status())
	}
}

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := NewStatusRecorder(httptest.NewRecorder())
	rec.WriteHeader(http.StatusTeapot)
	if _, err := rec.Write([]byte("short and stout")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Status() != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Status())
	}
	if rec.BytesWritten() != int64(len("short and stout")) {
		t.Fatalf("expected %d bytes, got %d", len("short and stout"), rec.BytesWritten())
	}
}

func TestHTTPObsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics("test", nil, reg)
	obs := HTTPObs{Metrics: metrics}

	handler := obs.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil)
	req = req.WithContext(WithRoutePattern(req.Context(), "/api/v1/invoices"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/invoices", "201"))
	if got != 1 {
		t.Fatalf("expected 1 request counted, got %v", got)
	}
}

func TestParseBucketsCSV(t *testing.T) {
	got := ParseBucketsCSV("5, 25,abc,-1, 100")
	want := []float64{5, 25, 100}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
