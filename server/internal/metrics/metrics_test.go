package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// scrape fetches the handler output and parses it into metric families.
func scrape(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	m.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(rr.Body)
	if err != nil {
		t.Fatalf("parse exposition: %v", err)
	}
	return mfs
}

// counterWith returns the counter value of the series whose label name=value.
func counterWith(mf *dto.MetricFamily, name, value string) float64 {
	if mf == nil {
		return -1
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func TestMetrics_FreshRegistryExportsZeroDeliveries(t *testing.T) {
	mfs := scrape(t, New())

	d := mfs["ntfy_bridge_deliveries_total"]
	if got := counterWith(d, "result", "ok"); got != 0 {
		t.Errorf("deliveries{ok}: got %v, want 0", got)
	}
	if got := counterWith(d, "result", "failed"); got != 0 {
		t.Errorf("deliveries{failed}: got %v, want 0", got)
	}
}

func TestMetrics_Counts(t *testing.T) {
	m := New()
	m.AlertsReceived(3)
	m.Delivery(true, 10*time.Millisecond)
	m.Delivery(true, 20*time.Millisecond)
	m.Delivery(false, 5*time.Millisecond)
	m.Webhook(http.StatusInternalServerError)
	m.Webhook(http.StatusOK)
	m.Webhook(http.StatusOK)

	mfs := scrape(t, m)

	if got := mfs["ntfy_bridge_alerts_received_total"].GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Errorf("alerts_received_total: got %v, want 3", got)
	}
	d := mfs["ntfy_bridge_deliveries_total"]
	if got := counterWith(d, "result", "ok"); got != 2 {
		t.Errorf("deliveries{ok}: got %v, want 2", got)
	}
	if got := counterWith(d, "result", "failed"); got != 1 {
		t.Errorf("deliveries{failed}: got %v, want 1", got)
	}
	w := mfs["ntfy_bridge_webhooks_total"]
	if got := counterWith(w, "code", "200"); got != 2 {
		t.Errorf("webhooks{200}: got %v, want 2", got)
	}
	if got := counterWith(w, "code", "500"); got != 1 {
		t.Errorf("webhooks{500}: got %v, want 1", got)
	}
	h := mfs["ntfy_bridge_delivery_duration_seconds"]
	if h == nil || h.GetMetric()[0].GetHistogram().GetSampleCount() != 3 {
		t.Errorf("delivery_duration_seconds: want 3 samples, got %v", h)
	}
}
