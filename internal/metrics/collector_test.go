package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollectorRegistersMetrics(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	if c.Registry() == nil {
		t.Fatal("expected registry")
	}
	if err := c.Registry().Register(c.uploads); err == nil {
		t.Fatal("expected uploads counter to be registered already")
	}
}

func TestObserveCountsOutcomes(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.ObserveUpload("recipe-images", nil)
	c.ObserveUpload("recipe-images", errors.New("boom"))
	c.ObserveUpload("recipe-images", nil)
	c.ObserveSave("batch", 0.02, nil)
	c.ObserveSessionEvent("signed_in")

	if got := testutil.ToFloat64(c.uploads.WithLabelValues("recipe-images", "ok")); got != 2 {
		t.Fatalf("ok uploads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.uploads.WithLabelValues("recipe-images", "error")); got != 1 {
		t.Fatalf("failed uploads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.saves.WithLabelValues("batch", "ok")); got != 1 {
		t.Fatalf("batch saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.sessionEvents.WithLabelValues("signed_in")); got != 1 {
		t.Fatalf("session events = %v, want 1", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	t.Parallel()

	var c *Collector
	c.ObserveUpload("b", nil)
	c.ObserveSave("f", 1, nil)
	c.ObserveSessionEvent("k")
}

func TestHandlerServesExposition(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.ObserveSessionEvent("signed_out")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `batchbook_session_events_total{kind="signed_out"} 1`) {
		t.Fatalf("expected session counter in exposition, got %s", rr.Body.String())
	}
}
